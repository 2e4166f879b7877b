package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindInt
	KindFloat
	KindTime
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindTime:
		return "time"
	default:
		return "null"
	}
}

// Value is a single typed cell. The zero Value is null.
type Value struct {
	kind Kind
	s    string
	i    int64
	f    float64
	t    time.Time
}

func Null() Value              { return Value{} }
func Str(s string) Value       { return Value{kind: KindString, s: s} }
func Int(i int64) Value        { return Value{kind: KindInt, i: i} }
func Time(t time.Time) Value   { return Value{kind: KindTime, t: t.UTC().Round(0)} }
func (v Value) Kind() Kind     { return v.kind }
func (v Value) IsNull() bool   { return v.kind == KindNull }
func (v Value) IsNumber() bool { return v.kind == KindInt || v.kind == KindFloat }

// Float builds a float cell; NaN and infinities are stored as null.
func Float(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Null()
	}
	return Value{kind: KindFloat, f: f}
}

func (v Value) Int() (int64, bool) { return v.i, v.kind == KindInt }

func (v Value) Time() (time.Time, bool) { return v.t, v.kind == KindTime }

func (v Value) Str() (string, bool) { return v.s, v.kind == KindString }

// Float returns the numeric value of int and float cells.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	}
	return 0, false
}

// Key is the canonical text of the cell. Filters and group keys match on it.
func (v Value) Key() string {
	switch v.kind {
	case KindString:
		return v.s
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		if math.Abs(v.f) < 1e21 {
			return strconv.FormatFloat(v.f, 'f', -1, 64)
		}
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindTime:
		return v.t.Format(time.RFC3339Nano)
	}
	return ""
}

func (v Value) String() string { return v.Key() }

func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.s == o.s
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f
	case KindTime:
		return v.t.Equal(o.t)
	}
	return true
}

// Compare orders values: null < numbers < times < strings.
func Compare(a, b Value) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return cmpInt(ra, rb)
	}
	switch ra {
	case 1:
		if a.kind == KindInt && b.kind == KindInt {
			switch {
			case a.i < b.i:
				return -1
			case a.i > b.i:
				return 1
			}
			return 0
		}
		fa, _ := a.Float()
		fb, _ := b.Float()
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	case 2:
		return a.t.Compare(b.t)
	case 3:
		return strings.Compare(a.s, b.s)
	}
	return 0
}

func rank(v Value) int {
	switch v.kind {
	case KindInt, KindFloat:
		return 1
	case KindTime:
		return 2
	case KindString:
		return 3
	}
	return 0
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// MarshalJSON writes the cell as a plain JSON scalar; times as RFC 3339.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.s)
	case KindInt:
		return []byte(strconv.FormatInt(v.i, 10)), nil
	case KindFloat:
		return json.Marshal(v.f)
	case KindTime:
		return json.Marshal(v.t.Format(time.RFC3339Nano))
	}
	return []byte("null"), nil
}
