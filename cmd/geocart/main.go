package main

import (
	"flag"
	"log"
	"os"
	"strconv"

	"github.com/fabiansturman/geocart"
)

func init() {
	log.SetOutput(os.Stdout)
	log.SetFlags(0)
}

func main() {
	a := flag.Float64("a", geocart.Default.A(), "ellipsoid semi-major axis")
	b := flag.Float64("b", geocart.Default.B(), "ellipsoid semi-minor axis")
	method := flag.String("method", "newton", "root-finding algorithm (newton, broyden)")
	trace := flag.Bool("trace", false, "print intermediate values to stderr")
	reverse := flag.Bool("reverse", false, "convert geodetic (lat lon height) to cartesian (x y z)")
	flag.Parse()

	if flag.NArg() != 3 {
		log.Fatalln("expected three coordinates: x y z, or lat lon height with -reverse")
	}
	var vs [3]float64
	for i, arg := range flag.Args() {
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			log.Fatalln(err)
		}
		vs[i] = v
	}

	ell, err := geocart.NewEllipsoid(*a, *b)
	if err != nil {
		log.Fatalln(err)
	}

	if *reverse {
		c := ell.GeodeticToCartesian(geocart.Geodetic{Lat: vs[0], Lon: vs[1], Height: vs[2]})
		log.Printf("%14.6f %14.6f %14.6f", c.X, c.Y, c.Z)
		return
	}

	solver, err := geocart.SolverByName(*method)
	if err != nil {
		log.Fatalln(err)
	}
	opts := geocart.InverseOptions{Solver: solver}
	if *trace {
		opts.Trace = os.Stderr
	}
	g, iters, err := ell.CartesianToGeodetic(geocart.Cartesian{X: vs[0], Y: vs[1], Z: vs[2]}, &opts)
	if err != nil {
		log.Fatalln(err)
	}
	log.Printf("%14.6f %14.6f %14.6f | %d evaluations", g.Lat, g.Lon, g.Height, iters)
}
