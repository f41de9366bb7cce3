package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointScanTextEncoding(t *testing.T) {
	var p Point
	require.NoError(t, p.Scan("(7.92,5.03)"))
	assert.InDelta(t, 7.92, p.Lng, 1e-9)
	assert.InDelta(t, 5.03, p.Lat, 1e-9)

	// whitespace and byte-slice variants
	var q Point
	require.NoError(t, q.Scan([]byte(" ( -0.5 , 51.2 ) ")))
	assert.InDelta(t, -0.5, q.Lng, 1e-9)
	assert.InDelta(t, 51.2, q.Lat, 1e-9)
}

func TestPointScanObjectEncoding(t *testing.T) {
	var p Point
	require.NoError(t, p.Scan(`{"lng":7.92,"lat":5.03}`))
	assert.InDelta(t, 7.92, p.Lng, 1e-9)
	assert.InDelta(t, 5.03, p.Lat, 1e-9)

	// legacy x/y key names
	var q Point
	require.NoError(t, q.Scan(`{"x":-0.5,"y":51.2}`))
	assert.InDelta(t, -0.5, q.Lng, 1e-9)
	assert.InDelta(t, 51.2, q.Lat, 1e-9)
}

func TestPointScanRejectsGarbage(t *testing.T) {
	for _, bad := range []string{"(1)", "(a,b)", `{"lat":5}`, "not a point", "(1,2,3)"} {
		var p Point
		assert.Error(t, p.Scan(bad), "input %q", bad)
	}
}

func TestPointScanNilAndEmpty(t *testing.T) {
	var p Point
	require.NoError(t, p.Scan(nil))
	require.NoError(t, p.Scan(""))
	assert.Zero(t, p.Lng)
	assert.Zero(t, p.Lat)
}

func TestPointRoundTrip(t *testing.T) {
	p := Point{Lng: 7.92, Lat: 5.03}
	v, err := p.Value()
	require.NoError(t, err)

	var back Point
	require.NoError(t, back.Scan(v))
	assert.Equal(t, p, back)
}
