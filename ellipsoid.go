// Package geocart converts points between Cartesian (x, y, z) and geodetic
// (latitude, longitude, height) coordinates on a rotational ellipsoid.
//
// The geodetic-to-Cartesian direction is closed form. The reverse direction
// projects the point onto the ellipsoid surface by solving a two-equation
// nonlinear system, following Ligas & Banasik, "Conversion between Cartesian
// and geodetic coordinates on a rotational ellipsoid by solving a system of
// nonlinear equations", Geodesy and Cartography 60 (2011).
package geocart

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidEllipsoid is returned by the ellipsoid constructors when the axis
// lengths are non-positive or the semi-minor axis exceeds the semi-major axis.
var ErrInvalidEllipsoid = errors.New("geocart: invalid ellipsoid")

// Default is the ellipsoid used by the Ligas & Banasik paper and its test
// fixtures: WGS-84 rounded to whole kilometers.
var Default = mustEllipsoid(6378, 6356)

// WGS84 is the World Geodetic System 1984 reference ellipsoid, axes in
// kilometers.
var WGS84 = mustEllipsoid(6378.137, 6356.752314245)

// GRS80 is the Geodetic Reference System 1980 ellipsoid, axes in kilometers.
var GRS80 = mustEllipsoid(6378.137, 6356.752314140)

// Ellipsoid is a rotational (oblate) ellipsoid defined by its semi-major axis
// a and semi-minor axis b, in any one linear unit. All conversions performed
// against it use that unit for distances and degrees for angles.
//
// An Ellipsoid is immutable once constructed and safe for concurrent use.
type Ellipsoid struct {
	a, b float64
	g    float64 // b/a
	h    float64 // a/b
	k    float64 // a*b
	e2   float64 // first eccentricity squared, 1-(b/a)^2
}

// NewEllipsoid initializes an ellipsoid from its semi-major axis a and
// semi-minor axis b. It fails with an error wrapping ErrInvalidEllipsoid
// unless 0 < b <= a.
func NewEllipsoid(a, b float64) (*Ellipsoid, error) {
	if !(a > 0) || !(b > 0) {
		return nil, fmt.Errorf("%w: axes must be positive, got a=%v b=%v",
			ErrInvalidEllipsoid, a, b)
	}
	if b > a {
		return nil, fmt.Errorf("%w: semi-minor axis b=%v exceeds semi-major axis a=%v",
			ErrInvalidEllipsoid, b, a)
	}
	e := &Ellipsoid{a: a, b: b}
	e.g = b / a
	e.h = a / b
	e.k = a * b
	e.e2 = 1 - e.g*e.g
	return e, nil
}

// NewEllipsoidFlattening initializes an ellipsoid from its semi-major axis a
// and flattening factor f, so that b = a*(1-f). A flattening of zero yields a
// sphere.
func NewEllipsoidFlattening(a, f float64) (*Ellipsoid, error) {
	return NewEllipsoid(a, a*(1-f))
}

func mustEllipsoid(a, b float64) *Ellipsoid {
	e, err := NewEllipsoid(a, b)
	if err != nil {
		panic(err)
	}
	return e
}

// A returns the semi-major axis.
func (e *Ellipsoid) A() float64 { return e.a }

// B returns the semi-minor axis.
func (e *Ellipsoid) B() float64 { return e.b }

// G returns the derived axis ratio b/a, in (0,1].
func (e *Ellipsoid) G() float64 { return e.g }

// H returns the derived axis ratio a/b, in [1,inf).
func (e *Ellipsoid) H() float64 { return e.h }

// K returns the derived product a*b.
func (e *Ellipsoid) K() float64 { return e.k }

// Flattening returns the flattening factor 1 - b/a.
func (e *Ellipsoid) Flattening() float64 { return 1 - e.g }

// Eccentricity2 returns the first eccentricity squared, 1 - (b/a)^2.
func (e *Ellipsoid) Eccentricity2() float64 { return e.e2 }

const (
	rad2deg = 180 / math.Pi
	deg2rad = math.Pi / 180
)

// Cartesian is a point in Earth-centered Cartesian coordinates, in the linear
// unit of the ellipsoid it is used with.
type Cartesian struct {
	X, Y, Z float64
}

// Geodetic is a point in geodetic coordinates: latitude and longitude in
// degrees, height above (negative: below) the ellipsoid surface in the linear
// unit of the ellipsoid it is used with.
type Geodetic struct {
	Lat, Lon, Height float64
}
