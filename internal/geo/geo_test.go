package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OCAP2/objectives/pkg/core"
)

func TestPosition3DFromString(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  core.Position3D
		err   bool
	}{
		{"with elevation", "100.5,200.25,50", core.Position3D{X: 100.5, Y: 200.25, Z: 50}, false},
		{"without elevation", "100,200", core.Position3D{X: 100, Y: 200}, false},
		{"negative", "-1,-2,-3", core.Position3D{X: -1, Y: -2, Z: -3}, false},
		{"bracketed with spaces", "[ 1, 2, 3 ]", core.Position3D{X: 1, Y: 2, Z: 3}, false},
		{"origin", "0,0,0", core.Position3D{}, false},
		{"single value", "100", core.Position3D{}, true},
		{"too many values", "1,2,3,4", core.Position3D{}, true},
		{"not a number", "a,2,3", core.Position3D{}, true},
		{"empty", "", core.Position3D{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Position3DFromString(tt.input)
			if tt.err {
				assert.ErrorIs(t, err, ErrInvalidCoordinates)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseWaypoints_Single(t *testing.T) {
	points, owners, err := ParseWaypoints("10,20,30")
	require.NoError(t, err)
	assert.Equal(t, []core.Position3D{{X: 10, Y: 20, Z: 30}}, points)
	assert.Nil(t, owners)
}

func TestParseWaypoints_JSON(t *testing.T) {
	points, owners, err := ParseWaypoints("[[1,2,3],[4,5]]")
	require.NoError(t, err)
	assert.Equal(t, []core.Position3D{{X: 1, Y: 2, Z: 3}, {X: 4, Y: 5}}, points)
	assert.Nil(t, owners)
}

func TestParseWaypoints_JSONWithOwners(t *testing.T) {
	points, owners, err := ParseWaypoints("[[17,1,2,3],[42,4,5,6]]")
	require.NoError(t, err)
	assert.Equal(t, []int{17, 42}, owners)
	assert.Equal(t, core.Position3D{X: 4, Y: 5, Z: 6}, points[1])

	_, _, err = ParseWaypoints("[[17,1,2,3],[4,5,6]]")
	assert.ErrorIs(t, err, ErrInvalidCoordinates, "owner form must be consistent")
}

func TestParseWaypoints_WKT(t *testing.T) {
	points, _, err := ParseWaypoints("POINT Z (1 2 3)")
	require.NoError(t, err)
	assert.Equal(t, []core.Position3D{{X: 1, Y: 2, Z: 3}}, points)

	points, _, err = ParseWaypoints("MULTIPOINT Z ((1 2 3),(4 5 6))")
	require.NoError(t, err)
	assert.Equal(t, []core.Position3D{{X: 1, Y: 2, Z: 3}, {X: 4, Y: 5, Z: 6}}, points)

	points, _, err = ParseWaypoints("POINT (7 8)")
	require.NoError(t, err)
	assert.Equal(t, []core.Position3D{{X: 7, Y: 8}}, points)
}

func TestParseWaypoints_Invalid(t *testing.T) {
	for _, in := range []string{"", "[[", "[[]]", "POINT EMPTY", "POINT Z (1 2", "LINESTRING (0 0,1 1)"} {
		_, _, err := ParseWaypoints(in)
		assert.Error(t, err, in)
	}
}

func TestToPoint_ParsesBack(t *testing.T) {
	pt, err := ToPoint(core.Position3D{X: 1.5, Y: -2, Z: 3})
	require.NoError(t, err)
	assert.Equal(t, "POINT Z (1.5 -2 3)", pt.AsText())

	out, err := ParseWKT(pt.AsText())
	require.NoError(t, err)
	assert.Equal(t, []core.Position3D{{X: 1.5, Y: -2, Z: 3}}, out)
}

func TestToPoint_NonFinite(t *testing.T) {
	_, err := ToPoint(core.Position3D{X: math.NaN(), Y: 1})
	assert.ErrorIs(t, err, ErrInvalidCoordinates)

	_, err = ToPoint(core.Position3D{X: 1, Y: 1, Z: math.Inf(1)})
	assert.ErrorIs(t, err, ErrInvalidCoordinates)
}

func TestParseWKT_PointAndMultiPoint(t *testing.T) {
	tests := []struct {
		wkt  string
		want []core.Position3D
	}{
		{"POINT Z (10 20 30)", []core.Position3D{{X: 10, Y: 20, Z: 30}}},
		{"MULTIPOINT (1 2,3 4)", []core.Position3D{{X: 1, Y: 2}, {X: 3, Y: 4}}},
		{"MULTIPOINT Z (EMPTY,(5 6 7))", []core.Position3D{{X: 5, Y: 6, Z: 7}}},
	}
	for _, tt := range tests {
		t.Run(tt.wkt, func(t *testing.T) {
			got, err := ParseWKT(tt.wkt)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseWKT("MULTIPOINT EMPTY")
	assert.ErrorIs(t, err, ErrInvalidCoordinates)
}
