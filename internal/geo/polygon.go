package geo

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

var (
	ErrInvalidGeometry = errors.New("invalid polygon geometry")
	ErrVersionNotFound = errors.New("geometry version not found")
	ErrPlotNotFound    = errors.New("plot not found")
	ErrDuplicatePlot   = errors.New("plot already exists")
)

// metersPerDegree is the fixed degree-to-meter scale used to convert planar
// ring area to hectares. This is an equirectangular approximation, not a
// geodesic computation: it is reasonable for small agricultural parcels and
// increasingly biased away from the equator. Kept fixed for compatibility
// with previously stored areas.
const metersPerDegree = 111_000.0

// Plot is a spatial unit whose boundary is tracked as a versioned polygon.
// AreaHectares mirrors the latest geometry version.
type Plot struct {
	ID           string    `json:"id"`
	FieldID      string    `json:"field_id"`
	Name         string    `json:"name"`
	Code         string    `json:"code"`
	AreaHectares float64   `json:"area_hectares"`
	CreatedAt    time.Time `json:"created_at"`
}

// GeometryVersion is one immutable revision of a plot's boundary. Versions
// per plot are 1..N with no gaps; corrections append, never rewrite.
type GeometryVersion struct {
	PlotID       string      `json:"plot_id"`
	Version      int         `json:"version"`
	Geometry     orb.Polygon `json:"-"`
	AreaHectares float64     `json:"area_hectares"`
	ChangedAt    time.Time   `json:"changed_at"`
	ChangedBy    string      `json:"changed_by"`
	Reason       string      `json:"reason,omitempty"`
}

// GeoJSON returns the version's geometry as a GeoJSON geometry object.
func (v *GeometryVersion) GeoJSON() *geojson.Geometry {
	return geojson.NewGeometry(v.Geometry)
}

// DecodePolygon parses GeoJSON geometry bytes into a polygon and validates
// its outer ring. Holes and multi-rings are ignored; only the outer ring is
// kept.
func DecodePolygon(data []byte) (orb.Polygon, error) {
	g, err := geojson.UnmarshalGeometry(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGeometry, err)
	}
	poly, ok := g.Geometry().(orb.Polygon)
	if !ok {
		return nil, fmt.Errorf("%w: expected Polygon, got %s", ErrInvalidGeometry, g.Type)
	}
	if len(poly) == 0 {
		return nil, fmt.Errorf("%w: polygon has no rings", ErrInvalidGeometry)
	}
	ring := poly[0]
	if err := ValidateRing(ring); err != nil {
		return nil, err
	}
	return orb.Polygon{ring}, nil
}

// ValidateRing enforces the mandatory ring checks: at least 4 vertices and
// closure (first vertex equals last). Self-intersection is not checked.
func ValidateRing(ring orb.Ring) error {
	if len(ring) < 4 {
		return fmt.Errorf("%w: ring has %d vertices, need at least 4", ErrInvalidGeometry, len(ring))
	}
	if !ring[0].Equal(ring[len(ring)-1]) {
		return fmt.Errorf("%w: ring is not closed (first vertex != last)", ErrInvalidGeometry)
	}
	return nil
}

// AreaHectares computes the polygon's outer-ring area in hectares: planar
// shoelace area on the raw lon/lat pairs, scaled by the fixed
// degrees-to-meters approximation. Approximate by design; see metersPerDegree.
func AreaHectares(poly orb.Polygon) float64 {
	if len(poly) == 0 {
		return 0
	}
	areaDeg := math.Abs(planar.Area(poly[0]))
	areaM2 := areaDeg * metersPerDegree * metersPerDegree
	return areaM2 / 10_000
}
