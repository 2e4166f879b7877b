package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/AngelCh415/lead-reports/internal/models"
)

// Column dtypes written into a frame.
const (
	DtypeEmpty    = "empty"
	DtypeInt      = "int64"
	DtypeFloat    = "float64"
	DtypeString   = "string"
	DtypeDatetime = "datetime"
	DtypeObject   = "object"
)

// Frame is the column-oriented "split" layout: column names, one dtype per
// column, the row index and row-major cell values.
type Frame struct {
	Columns []string `json:"columns"`
	Dtypes  []string `json:"dtypes"`
	Index   []int    `json:"index"`
	Data    [][]any  `json:"data"`
}

// Encode serializes a dataset. Times are written as RFC 3339 UTC strings.
func Encode(ds models.Dataset) ([]byte, error) {
	return json.Marshal(NewFrame(ds, 0))
}

// NewFrame builds the frame for ds; offset shifts the index so paginated
// slices keep their original row numbers.
func NewFrame(ds models.Dataset, offset int) Frame {
	f := Frame{
		Columns: append([]string{}, ds.Columns...),
		Dtypes:  make([]string, len(ds.Columns)),
		Index:   make([]int, len(ds.Rows)),
		Data:    make([][]any, len(ds.Rows)),
	}
	for ci, col := range ds.Columns {
		f.Dtypes[ci] = dtypeOf(ds, col)
	}
	for i, row := range ds.Rows {
		f.Index[i] = offset + i
		cells := make([]any, len(ds.Columns))
		for ci, col := range ds.Columns {
			cells[ci] = encodeCell(row[col], f.Dtypes[ci])
		}
		f.Data[i] = cells
	}
	return f
}

func dtypeOf(ds models.Dataset, col string) string {
	seen := map[models.Kind]bool{}
	for _, r := range ds.Rows {
		if v := r[col]; !v.IsNull() {
			seen[v.Kind()] = true
		}
	}
	if len(seen) == 0 {
		return DtypeEmpty
	}
	if len(seen) > 1 {
		return DtypeObject
	}
	switch {
	case seen[models.KindInt]:
		return DtypeInt
	case seen[models.KindFloat]:
		return DtypeFloat
	case seen[models.KindTime]:
		return DtypeDatetime
	}
	return DtypeString
}

func encodeCell(v models.Value, dtype string) any {
	switch v.Kind() {
	case models.KindString:
		s, _ := v.Str()
		return s
	case models.KindInt:
		n, _ := v.Int()
		return json.Number(strconv.FormatInt(n, 10))
	case models.KindFloat:
		f, _ := v.Float()
		s := strconv.FormatFloat(f, 'g', -1, 64)
		if dtype == DtypeObject && !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		return json.Number(s)
	case models.KindTime:
		t, _ := v.Time()
		s := t.UTC().Format(time.RFC3339Nano)
		if dtype == DtypeObject {
			return map[string]string{DtypeDatetime: s}
		}
		return s
	}
	return nil
}

// Decode parses a frame produced by Encode back into a dataset.
func Decode(b []byte) (models.Dataset, error) {
	var f Frame
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&f); err != nil {
		return models.Dataset{}, fmt.Errorf("decode frame: %w", err)
	}
	return f.Dataset()
}

// Dataset converts a frame read back with json.Decoder.UseNumber.
func (f Frame) Dataset() (models.Dataset, error) {
	if len(f.Dtypes) != len(f.Columns) {
		return models.Dataset{}, fmt.Errorf("frame: %d columns but %d dtypes", len(f.Columns), len(f.Dtypes))
	}
	if len(f.Index) != len(f.Data) {
		return models.Dataset{}, fmt.Errorf("frame: %d index entries but %d rows", len(f.Index), len(f.Data))
	}
	ds := models.Dataset{Columns: append([]string{}, f.Columns...), Rows: make([]models.Record, len(f.Data))}
	for i, cells := range f.Data {
		if len(cells) != len(f.Columns) {
			return models.Dataset{}, fmt.Errorf("frame: row %d has %d cells, want %d", i, len(cells), len(f.Columns))
		}
		rec := make(models.Record, len(cells))
		for ci, raw := range cells {
			v, err := decodeCell(raw, f.Dtypes[ci])
			if err != nil {
				return models.Dataset{}, fmt.Errorf("frame: row %d column %q: %w", i, f.Columns[ci], err)
			}
			rec[f.Columns[ci]] = v
		}
		ds.Rows[i] = rec
	}
	return ds, nil
}

func decodeCell(raw any, dtype string) (models.Value, error) {
	if raw == nil {
		return models.Null(), nil
	}
	switch x := raw.(type) {
	case json.Number:
		switch dtype {
		case DtypeInt:
			n, err := x.Int64()
			return models.Int(n), err
		case DtypeFloat:
			f, err := x.Float64()
			return models.Float(f), err
		case DtypeObject:
			if strings.ContainsAny(x.String(), ".eE") {
				f, err := x.Float64()
				return models.Float(f), err
			}
			n, err := x.Int64()
			return models.Int(n), err
		}
	case string:
		switch dtype {
		case DtypeString, DtypeObject:
			return models.Str(x), nil
		case DtypeDatetime:
			return parseStamp(x)
		}
	case map[string]any:
		if s, ok := x[DtypeDatetime].(string); ok && dtype == DtypeObject {
			return parseStamp(s)
		}
	}
	return models.Null(), fmt.Errorf("cell %v does not fit dtype %s", raw, dtype)
}

func parseStamp(s string) (models.Value, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return models.Null(), err
	}
	return models.Time(t), nil
}
