// Package model holds the data shapes exchanged between layers:
// the labeled bridge survey record and the request/response payloads.
package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/valyala/fastjson"
)

// ProjectCodeColumn is the lookup key attribute of a bridge record.
// It is not unique; lookups always return a list.
const ProjectCodeColumn = "Project_Code"

// Field is one labeled attribute of a record.
type Field struct {
	Name  string
	Value any
}

// BridgeRecord is a single labeled row of the bridge survey table: an
// ordered mapping from column name to scalar value.
//
// Order follows the schema registry and is preserved when the record is
// encoded to JSON.
type BridgeRecord struct {
	fields []Field
}

// NewBridgeRecord pairs names with values positionally. Callers guarantee
// len(names) == len(values); the schema registry enforces it.
func NewBridgeRecord(names []string, values []any) BridgeRecord {
	fields := make([]Field, len(names))
	for i, name := range names {
		fields[i] = Field{Name: name, Value: values[i]}
	}
	return BridgeRecord{fields: fields}
}

// Len returns the number of attributes.
func (r BridgeRecord) Len() int {
	return len(r.fields)
}

// Fields returns the attributes in column order.
func (r BridgeRecord) Fields() []Field {
	out := make([]Field, len(r.fields))
	copy(out, r.fields)
	return out
}

// Get returns the value of the named attribute.
func (r BridgeRecord) Get(name string) (any, bool) {
	for _, f := range r.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// ProjectCode returns the Project_Code attribute as a string, or "" when
// absent or null.
func (r BridgeRecord) ProjectCode() string {
	v, ok := r.Get(ProjectCodeColumn)
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

var arenaPool fastjson.ArenaPool

// MarshalJSON encodes the record as a JSON object whose keys keep column
// order. encoding/json sorts map keys, so the object is built on a
// fastjson arena instead.
func (r BridgeRecord) MarshalJSON() ([]byte, error) {
	a := arenaPool.Get()
	defer arenaPool.Put(a)

	obj := a.NewObject()
	for _, f := range r.fields {
		obj.Set(f.Name, jsonValue(a, f.Value))
	}
	return obj.MarshalTo(nil), nil
}

// jsonValue converts a normalized scalar into an arena value.
// NaN and infinities have no JSON representation and become null.
func jsonValue(a *fastjson.Arena, v any) *fastjson.Value {
	switch x := v.(type) {
	case nil:
		return a.NewNull()
	case string:
		return a.NewString(x)
	case []byte:
		return a.NewStringBytes(x)
	case json.Number:
		return a.NewNumberString(string(x))
	case bool:
		if x {
			return a.NewTrue()
		}
		return a.NewFalse()
	case int:
		return a.NewNumberInt(x)
	case int16:
		return a.NewNumberInt(int(x))
	case int32:
		return a.NewNumberInt(int(x))
	case int64:
		return a.NewNumberString(strconv.FormatInt(x, 10))
	case float32:
		return floatValue(a, float64(x))
	case float64:
		return floatValue(a, x)
	case time.Time:
		return a.NewString(x.UTC().Format(time.RFC3339Nano))
	case fmt.Stringer:
		return a.NewString(x.String())
	default:
		return a.NewString(fmt.Sprint(x))
	}
}

func floatValue(a *fastjson.Arena, f float64) *fastjson.Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return a.NewNull()
	}
	return a.NewNumberFloat64(f)
}
