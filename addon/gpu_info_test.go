package addon

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingEnv struct {
	MapEnv
	allocs int
}

func (e *countingEnv) NewObject() Object {
	e.allocs++
	return e.MapEnv.NewObject()
}

func getRecord(t *testing.T, env Env) *Record {
	t.Helper()

	rec, ok := GetSyclGpuInfo(env).(*Record)
	require.True(t, ok, "default env must hand out *Record")
	return rec
}

func TestGetSyclGpuInfoFields(t *testing.T) {
	rec := getRecord(t, NewEnv())

	assert.Equal(t,
		[]string{"name", "vendor", "totalMemory", "freeMemory", "isIntegrated", "computeUnits"},
		rec.Keys())

	tests := []struct {
		key  string
		want any
	}{
		{"name", "Intel(R) Arc(TM) A770 Graphics"},
		{"vendor", "Intel Corporation"},
		{"totalMemory", uint64(17179869184)},
		{"freeMemory", uint64(0)},
		{"isIntegrated", false},
		{"computeUnits", 32},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := rec.Get(tt.key)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetSyclGpuInfoTotalMemory(t *testing.T) {
	rec := getRecord(t, NewEnv())

	got, _ := rec.Get("totalMemory")
	assert.Equal(t, uint64(16384*1024*1024), got)
}

func TestGetSyclGpuInfoIdempotent(t *testing.T) {
	env := NewEnv()

	first := getRecord(t, env)
	second := getRecord(t, env)

	assert.Equal(t, first, second)
	assert.NotSame(t, first, second)

	// Mutating one result must not leak into the next call.
	first.Set("name", "changed")
	third := getRecord(t, env)
	name, _ := third.Get("name")
	assert.Equal(t, "Intel(R) Arc(TM) A770 Graphics", name)
}

func TestGetSyclGpuInfoAllocatesOnce(t *testing.T) {
	env := &countingEnv{}

	GetSyclGpuInfo(env)
	assert.Equal(t, 1, env.allocs)

	GetSyclGpuInfo(env)
	assert.Equal(t, 2, env.allocs)
}

func TestGetSyclGpuInfoJSON(t *testing.T) {
	data, err := json.Marshal(GetSyclGpuInfo(NewEnv()))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"name": "Intel(R) Arc(TM) A770 Graphics",
		"vendor": "Intel Corporation",
		"totalMemory": 17179869184,
		"freeMemory": 0,
		"isIntegrated": false,
		"computeUnits": 32
	}`, string(data))
}
