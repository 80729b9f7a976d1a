// Package addon exposes the GPU info record through a host object surface.
//
// An Env stands in for the host runtime's execution context: it owns object
// allocation, and anything built through it belongs to the caller.
package addon

import (
	"bytes"
	"encoding/json"
)

// Env is the execution context handle passed in by the host.
type Env interface {
	NewObject() Object
}

// Object is a host object that accepts named properties.
type Object interface {
	Set(key string, value any)
}

// MapEnv is the in-process Env. Its objects are *Record values.
type MapEnv struct{}

// NewEnv returns the default in-process Env.
func NewEnv() *MapEnv {
	return &MapEnv{}
}

// NewObject allocates an empty Record.
func (*MapEnv) NewObject() Object {
	return &Record{values: make(map[string]any)}
}

// Record is an insertion-ordered property bag.
type Record struct {
	keys   []string
	values map[string]any
}

// Set stores value under key. Re-setting a key keeps its original position.
func (r *Record) Set(key string, value any) {
	if r.values == nil {
		r.values = make(map[string]any)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get returns the value stored under key.
func (r *Record) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Keys returns the property names in insertion order.
func (r *Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of properties.
func (r *Record) Len() int { return len(r.keys) }

// MarshalJSON writes the record as a JSON object, keeping key order.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
