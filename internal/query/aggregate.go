package query

import (
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/AngelCh415/lead-reports/internal/models"
)

// CountRow is one observed combination of group-by values and its count.
type CountRow struct {
	Keys  []models.Value `json:"keys"`
	Count int            `json:"count"`
}

// CountTable lists counts per combination of Columns, sorted by key.
type CountTable struct {
	Columns []string   `json:"columns"`
	Rows    []CountRow `json:"rows"`
}

func (t CountTable) Total() int {
	return lo.SumBy(t.Rows, func(r CountRow) int { return r.Count })
}

// Lookup returns the count for the given key texts, 0 when absent.
func (t CountTable) Lookup(keys ...string) int {
	for _, r := range t.Rows {
		if len(r.Keys) != len(keys) {
			continue
		}
		match := true
		for i, k := range r.Keys {
			if k.Key() != keys[i] {
				match = false
				break
			}
		}
		if match {
			return r.Count
		}
	}
	return 0
}

type SumRow struct {
	Key   models.Value `json:"key"`
	Sum   float64      `json:"sum"`
	Count int          `json:"count"`
}

// SumTable holds the per-group sum of Value, grouped by Column.
type SumTable struct {
	Column string   `json:"column"`
	Value  string   `json:"value"`
	Rows   []SumRow `json:"rows"`
}

// PivotTable is a zero-filled count matrix: Cells[i][j] counts rows with
// RowDim == Rows[i] and ColDim == Cols[j].
type PivotTable struct {
	RowDim string         `json:"row_dimension"`
	ColDim string         `json:"column_dimension"`
	Rows   []models.Value `json:"rows"`
	Cols   []models.Value `json:"columns"`
	Cells  [][]int        `json:"cells"`
}

// Cell returns the count at the given key texts, 0 when either is absent.
func (p PivotTable) Cell(row, col string) int {
	ri := lo.IndexOf(lo.Map(p.Rows, keyOf), row)
	ci := lo.IndexOf(lo.Map(p.Cols, keyOf), col)
	if ri < 0 || ci < 0 {
		return 0
	}
	return p.Cells[ri][ci]
}

type Bucket struct {
	Start time.Time `json:"start"`
	Count int       `json:"count"`
}

// Distinct returns the non-null values of col in order of first appearance.
func Distinct(ds models.Dataset, col string) []models.Value {
	if !ds.HasColumn(col) {
		return []models.Value{}
	}
	vals := lo.FilterMap(ds.Rows, func(r models.Record, _ int) (models.Value, bool) {
		v := r[col]
		return v, !v.IsNull()
	})
	return lo.UniqBy(vals, Identity)
}

// GroupCount counts rows per combination of the by columns. Rows with a null
// in any by column are left out; combinations that never occur are absent.
func GroupCount(ds models.Dataset, by ...string) CountTable {
	return groupCount(ds, "", by)
}

// GroupCountOf is GroupCount counting only rows where of is non-null. Groups
// whose of cells are all null appear with a count of 0.
func GroupCountOf(ds models.Dataset, of string, by ...string) CountTable {
	return groupCount(ds, of, by)
}

func groupCount(ds models.Dataset, of string, by []string) CountTable {
	t := CountTable{Columns: append([]string{}, by...), Rows: []CountRow{}}
	if len(by) == 0 || !hasAll(ds, by) {
		return t
	}
	index := map[string]int{}
	for _, r := range ds.Rows {
		keys, ok := rowKeys(r, by)
		if !ok {
			continue
		}
		id := joinIdentity(keys)
		i, seen := index[id]
		if !seen {
			i = len(t.Rows)
			index[id] = i
			t.Rows = append(t.Rows, CountRow{Keys: keys})
		}
		if of == "" || !r[of].IsNull() {
			t.Rows[i].Count++
		}
	}
	sort.SliceStable(t.Rows, func(i, j int) bool { return lessKeys(t.Rows[i].Keys, t.Rows[j].Keys) })
	return t
}

// GroupSum sums the numeric cells of value per distinct by value. Null and
// non-numeric cells add nothing; Count is the number of rows in the group.
func GroupSum(ds models.Dataset, by, value string) SumTable {
	t := SumTable{Column: by, Value: value, Rows: []SumRow{}}
	if !ds.HasColumn(by) {
		return t
	}
	index := map[string]int{}
	for _, r := range ds.Rows {
		k := r[by]
		if k.IsNull() {
			continue
		}
		id := Identity(k)
		i, seen := index[id]
		if !seen {
			i = len(t.Rows)
			index[id] = i
			t.Rows = append(t.Rows, SumRow{Key: k})
		}
		t.Rows[i].Count++
		if f, ok := r[value].Float(); ok {
			t.Rows[i].Sum += f
		}
	}
	sort.SliceStable(t.Rows, func(i, j int) bool { return models.Compare(t.Rows[i].Key, t.Rows[j].Key) < 0 })
	return t
}

// Sum adds up the numeric cells of col.
func Sum(ds models.Dataset, col string) float64 {
	return lo.SumBy(ds.Rows, func(r models.Record) float64 {
		f, _ := r[col].Float()
		return f
	})
}

// Pivot cross-tabulates rowDim against colDim. Every observed row value is
// paired with every observed column value; missing pairs hold 0. With
// countOf empty every row counts, otherwise only rows where countOf is non-null.
func Pivot(ds models.Dataset, rowDim, colDim, countOf string) PivotTable {
	p := PivotTable{RowDim: rowDim, ColDim: colDim, Rows: []models.Value{}, Cols: []models.Value{}, Cells: [][]int{}}
	if !ds.HasColumn(rowDim) || !ds.HasColumn(colDim) {
		return p
	}
	counts := groupCount(ds, countOf, []string{rowDim, colDim})
	rows := map[string]int{}
	cols := map[string]int{}
	for _, r := range counts.Rows {
		if _, ok := rows[Identity(r.Keys[0])]; !ok {
			rows[Identity(r.Keys[0])] = 0
			p.Rows = append(p.Rows, r.Keys[0])
		}
		if _, ok := cols[Identity(r.Keys[1])]; !ok {
			cols[Identity(r.Keys[1])] = 0
			p.Cols = append(p.Cols, r.Keys[1])
		}
	}
	sort.SliceStable(p.Rows, func(i, j int) bool { return models.Compare(p.Rows[i], p.Rows[j]) < 0 })
	sort.SliceStable(p.Cols, func(i, j int) bool { return models.Compare(p.Cols[i], p.Cols[j]) < 0 })
	for i, v := range p.Rows {
		rows[Identity(v)] = i
	}
	for j, v := range p.Cols {
		cols[Identity(v)] = j
	}
	p.Cells = make([][]int, len(p.Rows))
	for i := range p.Cells {
		p.Cells[i] = make([]int, len(p.Cols))
	}
	for _, r := range counts.Rows {
		p.Cells[rows[Identity(r.Keys[0])]][cols[Identity(r.Keys[1])]] += r.Count
	}
	return p
}

// TimeBuckets counts rows per width-aligned bucket of the timestamp column,
// oldest first. Cells that are not timestamps are skipped. Without fill, a
// bucket with no rows is absent; with fill, every bucket between the first
// and last observed one is present.
func TimeBuckets(ds models.Dataset, col string, width time.Duration, fill bool) []Bucket {
	if !ds.HasColumn(col) || width <= 0 {
		return []Bucket{}
	}
	counts := map[int64]int{}
	for _, r := range ds.Rows {
		t, ok := models.ParseTime(r[col])
		if !ok {
			continue
		}
		counts[t.Truncate(width).UnixNano()]++
	}
	starts := lo.Keys(counts)
	sort.Slice(starts, func(i, j int) bool { return starts[i] < starts[j] })
	out := make([]Bucket, 0, len(starts))
	if !fill || len(starts) == 0 {
		for _, s := range starts {
			out = append(out, Bucket{Start: time.Unix(0, s).UTC(), Count: counts[s]})
		}
		return out
	}
	for s := starts[0]; s <= starts[len(starts)-1]; s += int64(width) {
		out = append(out, Bucket{Start: time.Unix(0, s).UTC(), Count: counts[s]})
	}
	return out
}

func hasAll(ds models.Dataset, cols []string) bool {
	return lo.EveryBy(cols, ds.HasColumn)
}

func rowKeys(r models.Record, by []string) ([]models.Value, bool) {
	keys := make([]models.Value, len(by))
	for i, c := range by {
		v := r[c]
		if v.IsNull() {
			return nil, false
		}
		keys[i] = v
	}
	return keys, true
}

func keyOf(v models.Value, _ int) string { return v.Key() }

// Identity is a grouping key that also tells apart values of different
// kinds sharing a Key text, such as 1 and "1".
func Identity(v models.Value) string { return v.Kind().String() + ":" + v.Key() }

func joinIdentity(vs []models.Value) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = Identity(v)
	}
	return strings.Join(parts, "\x1f")
}

func lessKeys(a, b []models.Value) bool {
	for i := range a {
		if c := models.Compare(a[i], b[i]); c != 0 {
			return c < 0
		}
	}
	return false
}
