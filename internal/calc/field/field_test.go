package field

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumberLenientDecode(t *testing.T) {
	cases := []struct {
		raw  string
		want Number
	}{
		{`12.5`, Number{Value: 12.5, Set: true}},
		{`"7"`, Number{Value: 7, Set: true}},
		{`" 3.25 "`, Number{Value: 3.25, Set: true}},
		{`"abc"`, Number{Value: 0, Set: true}},
		{`"NaN"`, Number{Value: 0, Set: true}},
		{`true`, Number{Value: 1, Set: true}},
		{`false`, Number{Value: 0, Set: true}},
		{`[1,2]`, Number{Value: 0, Set: true}},
		{`{"a":1}`, Number{Value: 0, Set: true}},
		{`null`, Number{}},
	}
	for _, tc := range cases {
		var n Number
		require.NoError(t, json.Unmarshal([]byte(tc.raw), &n), tc.raw)
		assert.Equal(t, tc.want, n, tc.raw)
	}
}

func TestNumberAbsentKeyKeepsZeroValue(t *testing.T) {
	var in struct {
		Span Number `json:"span"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{}`), &in))
	assert.False(t, in.Span.Set)
	assert.Equal(t, 35.0, in.Span.Or(35))
}

func TestTextIgnoresNonStrings(t *testing.T) {
	var in struct {
		Material Text `json:"material"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"material": 42}`), &in))
	assert.Equal(t, Text(""), in.Material)

	require.NoError(t, json.Unmarshal([]byte(`{"material": "Wood"}`), &in))
	assert.Equal(t, Text("Wood"), in.Material)
}

func TestRecordNonObject(t *testing.T) {
	var in map[string]Record
	require.NoError(t, json.Unmarshal([]byte(`{"slab": "thick", "stair": {"riser": "170"}}`), &in))
	assert.Empty(t, in["slab"])
	assert.Equal(t, 170.0, in["stair"].Get("riser").Value)
	assert.False(t, in["stair"].Get("tread").Set)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "100.0", Format(100))
	assert.Equal(t, "0.2", Format(0.2))
	assert.Equal(t, "12.75", Format(12.75))
	assert.Equal(t, "-0.0", Format(math.Copysign(0, -1)))
	assert.Equal(t, "0.0001", Format(1e-4))
	assert.Equal(t, "1e-05", Format(1e-5))
	assert.Equal(t, "1.5e-07", Format(1.5e-7))
	assert.Equal(t, "1000000000000000.0", Format(1e15))
	assert.Equal(t, "1e+16", Format(1e16))
	assert.Equal(t, "-2.5e+20", Format(-2.5e20))
	assert.Equal(t, "1e+300", Format(1e300))
	assert.Equal(t, "inf", Format(math.Inf(1)))
	assert.Equal(t, "nan", Format(math.NaN()))
}
