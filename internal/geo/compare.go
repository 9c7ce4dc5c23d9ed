package geo

import "math"

// VersionComparison reports the area change between two geometry versions.
type VersionComparison struct {
	FromVersion  int     `json:"from_version"`
	ToVersion    int     `json:"to_version"`
	AreaFromHa   float64 `json:"area_from_ha"`
	AreaToHa     float64 `json:"area_to_ha"`
	DeltaHa      float64 `json:"delta_ha"`
	DeltaPercent float64 `json:"delta_percent"`
}

// Compare computes the area delta between two version snapshots. Pure: it
// works on the recorded areas only. The caller may pass the versions in
// either order; the delta sign follows the requested direction. DeltaPercent
// is rounded to two decimals and reported as 0 when the from-area is zero.
func Compare(from, to *GeometryVersion) VersionComparison {
	c := VersionComparison{
		FromVersion: from.Version,
		ToVersion:   to.Version,
		AreaFromHa:  from.AreaHectares,
		AreaToHa:    to.AreaHectares,
	}
	c.DeltaHa = c.AreaToHa - c.AreaFromHa
	if c.AreaFromHa != 0 {
		c.DeltaPercent = math.Round(c.DeltaHa/c.AreaFromHa*100*100) / 100
	}
	return c
}
