package geocart

import (
	"errors"
	"fmt"
	"io"
	"math"
)

// ErrRotationAxis is returned when a conversion would divide by zero because
// the point lies on the rotation axis (x = y = 0), where longitude is
// undefined. The condition is surfaced, never silently defaulted.
var ErrRotationAxis = errors.New("geocart: point on rotation axis")

// InverseOptions configures CartesianToGeodetic. The zero value (or a nil
// pointer) selects the defaults: a Newton solver with the analytic Jacobian
// and no tracing.
type InverseOptions struct {
	// Solver performs the surface-projection root search. Defaults to
	// Newton{}.
	Solver Solver

	// Trace, when non-nil, receives the intermediate values of the
	// conversion: both longitude forms, the candidate geodetic coordinates
	// at each objective evaluation, and the final result. Tracing never
	// alters the returned values.
	Trace io.Writer
}

// CartesianToGeodetic converts a Cartesian point to geodetic coordinates,
// reporting the number of objective-function evaluations the root search
// consumed. The count is a diagnostic only.
//
// The conversion runs in four steps: extract longitude in closed form, reduce
// to the meridian half-plane (the problem is rotationally symmetric about the
// z axis), project the reduced point onto the ellipsoid cross-section by
// solving a two-equation nonlinear system, then recover latitude and signed
// height from the projected point.
//
// Points on the rotation axis fail with ErrRotationAxis. A failed root search
// surfaces as a *NonConvergenceError carrying the last iterate; no retry with
// a different solver is attempted.
func (e *Ellipsoid) CartesianToGeodetic(c Cartesian, opts *InverseOptions) (Geodetic, int, error) {
	var solver Solver = Newton{}
	var trace io.Writer
	if opts != nil {
		if opts.Solver != nil {
			solver = opts.Solver
		}
		trace = opts.Trace
	}

	// Step 1: longitude. The half-angle form 2*atan2(y, x+w) is preferred
	// over atan(y/x) for numerical stability (Claessens, 2019); the two
	// agree analytically.
	w := math.Hypot(c.X, c.Y)
	if w == 0 {
		return Geodetic{}, 0, fmt.Errorf("%w: x = y = 0, longitude undefined", ErrRotationAxis)
	}
	lon := 2 * math.Atan2(c.Y, c.X+w) * rad2deg
	if c.Y == 0 && c.X < 0 {
		// On the 180 meridian x+w cancels to exactly zero and the
		// half-angle form degenerates to atan2(0, 0).
		lon = 180
	}
	if trace != nil {
		fmt.Fprintf(trace, "longitude: direct form = %v deg, half-angle form = %v deg\n",
			math.Atan(c.Y/c.X)*rad2deg, lon)
	}

	// Step 2: reduce to the meridian half-plane.
	pg, zg := w, c.Z

	// Step 3: project (pg, zg) onto the ellipse cross-section. f2 keeps the
	// candidate on the ellipse; f1 keeps the line from (pg, zg) to the
	// candidate normal to it. The evaluation counter is local to this call.
	evals := 0
	fn := func(pe, ze float64) (float64, float64) {
		evals++
		if trace != nil {
			lat, h := e.recoverLatHeight(pe, ze, pg, zg)
			fmt.Fprintf(trace, "eval %d: candidate (lat, lon, height) = (%v, %v, %v)\n",
				evals, lat, lon, h)
		}
		return (pe-pg)*e.h*ze - (ze-zg)*e.g*pe,
			e.g*pe*pe + e.h*ze*ze - e.k
	}
	jac := func(pe, ze float64) (j11, j12, j21, j22 float64) {
		return e.h*ze - (ze-zg)*e.g, (pe-pg)*e.h - e.g*pe,
			2 * e.g * pe, 2 * e.h * ze
	}
	// Initial guess: scale (pg, zg) onto the surface along its direction
	// from the origin.
	r := 1 / math.Hypot(pg, zg)
	pe, ze, _, err := solver.Solve(fn, jac, e.a*pg*r, e.b*zg*r)
	if err != nil {
		return Geodetic{}, evals, err
	}

	// Step 4: latitude and signed height from the projected point.
	if pe == 0 {
		return Geodetic{}, evals, fmt.Errorf("%w: projected point has p = 0", ErrRotationAxis)
	}
	lat, h := e.recoverLatHeight(pe, ze, pg, zg)
	if trace != nil {
		fmt.Fprintf(trace, "result: (lat, lon, height) = (%v, %v, %v), %d evaluations\n",
			lat, lon, h, evals)
	}
	return Geodetic{Lat: lat, Lon: lon, Height: h}, evals, nil
}

// recoverLatHeight computes geodetic latitude (degrees) and signed height
// from a projected surface point (pe, ze) and the original meridian-plane
// point (pg, zg).
//
// The sign rule compares p+|z| magnitudes rather than performing a true
// inside/outside test; this is the rule from the source algorithm and is
// preserved as-is, so the sign can be wrong extremely close to the surface of
// a highly eccentric ellipsoid.
func (e *Ellipsoid) recoverLatHeight(pe, ze, pg, zg float64) (lat, h float64) {
	lat = math.Atan(e.h*e.h*ze/pe) * rad2deg
	h = math.Hypot(pe-pg, ze-zg)
	if pg+math.Abs(zg) < pe+math.Abs(ze) {
		h = -h
	}
	return lat, h
}
