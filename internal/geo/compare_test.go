package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func version(v int, areaHa float64) *GeometryVersion {
	return &GeometryVersion{PlotID: "p1", Version: v, AreaHectares: areaHa}
}

func TestCompare_Shrink(t *testing.T) {
	c := Compare(version(1, 100), version(2, 95))
	assert.Equal(t, 1, c.FromVersion)
	assert.Equal(t, 2, c.ToVersion)
	assert.InDelta(t, -5.0, c.DeltaHa, 1e-9)
	assert.InDelta(t, -5.00, c.DeltaPercent, 1e-9)
}

func TestCompare_Grow(t *testing.T) {
	c := Compare(version(2, 95), version(3, 100))
	assert.InDelta(t, 5.0, c.DeltaHa, 1e-9)
	// 5/95 = 5.263..%, rounded to two decimals.
	assert.InDelta(t, 5.26, c.DeltaPercent, 1e-9)
}

func TestCompare_SameVersionTwice(t *testing.T) {
	c := Compare(version(4, 42.5), version(4, 42.5))
	assert.Zero(t, c.DeltaHa)
	assert.Zero(t, c.DeltaPercent)
}

func TestCompare_ZeroBaseline(t *testing.T) {
	c := Compare(version(1, 0), version(2, 10))
	assert.InDelta(t, 10.0, c.DeltaHa, 1e-9)
	assert.Zero(t, c.DeltaPercent)
}

func TestCompare_Rounding(t *testing.T) {
	// 1/3 of 30 ha: delta -10, -33.333..% rounds to -33.33.
	c := Compare(version(1, 30), version(2, 20))
	assert.InDelta(t, -33.33, c.DeltaPercent, 1e-9)
}
