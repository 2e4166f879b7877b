package ingest

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/AngelCh415/lead-reports/internal/models"
)

const defaultMaxIssues = 200

// Issue is a diagnostic raised while normalizing. Row is -1 for issues that
// concern a whole column or the whole pass.
type Issue struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Message string `json:"message"`
}

// Result carries the normalized dataset and what went wrong on the way.
// When Normalized is false, Dataset is the input without derived columns.
type Result struct {
	Dataset     models.Dataset
	Issues      []Issue
	TotalIssues int
	Normalized  bool
}

func (r *Result) addIssue(max int, is Issue) {
	r.TotalIssues++
	if len(r.Issues) < max {
		r.Issues = append(r.Issues, is)
	}
}

type Normalizer struct {
	groups    *GroupResolver
	timeCols  []string
	maxIssues int
	hook      func(stage string, row int) // tests inject failures here
}

type Option func(*Normalizer)

// WithTimestampColumns sets the columns coerced to timestamps.
func WithTimestampColumns(cols ...string) Option {
	return func(n *Normalizer) { n.timeCols = append([]string(nil), cols...) }
}

// WithMaxIssues caps the diagnostics kept in a Result; TotalIssues still counts all.
func WithMaxIssues(max int) Option {
	return func(n *Normalizer) {
		if max > 0 {
			n.maxIssues = max
		}
	}
}

func NewNormalizer(groups *GroupResolver, opts ...Option) *Normalizer {
	n := &Normalizer{
		groups:    groups,
		timeCols:  []string{models.ColCreatedOn},
		maxIssues: defaultMaxIssues,
	}
	for _, o := range opts {
		o(n)
	}
	return n
}

// Normalize derives Group and Call Duration Seconds for every row and
// coerces timestamp columns. It never fails and never mutates raw: row
// problems become issues, and an unexpected failure of the whole pass
// returns raw as-is with Normalized=false.
func (n *Normalizer) Normalize(raw models.Dataset) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{Dataset: raw}
			res.addIssue(n.maxIssues, Issue{Row: -1, Message: fmt.Sprintf("normalization aborted: %v", r)})
		}
	}()

	out := models.Dataset{
		Columns: appendMissing(raw.Columns, models.ColGroup, models.ColDurationSeconds),
		Rows:    make([]models.Record, len(raw.Rows)),
	}
	if n.hook != nil {
		n.hook("pass", -1)
	}
	hasOwner := raw.HasColumn(models.ColOwner)
	hasDuration := raw.HasColumn(models.ColCallDuration)
	times := n.coerceTimes(raw, &res)

	for i, row := range raw.Rows {
		rec := row.Clone()
		if err := n.deriveRow(i, rec, hasOwner, hasDuration, &res); err != nil {
			rec[models.ColGroup] = models.Str(models.UnknownGroup)
			rec[models.ColDurationSeconds] = models.Null()
			res.addIssue(n.maxIssues, Issue{Row: i, Message: err.Error()})
		}
		for col, vals := range times {
			rec[col] = vals[i]
		}
		out.Rows[i] = rec
	}
	res.Dataset = out
	res.Normalized = true
	return res
}

func (n *Normalizer) deriveRow(i int, rec models.Record, hasOwner, hasDuration bool, res *Result) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("row %d: %v", i, r)
		}
	}()
	if n.hook != nil {
		n.hook("row", i)
	}

	group := models.UnknownGroup
	if hasOwner {
		group = n.groups.Resolve(rec[models.ColOwner])
	}
	rec[models.ColGroup] = models.Str(group)

	secs := models.Null()
	if cell := rec[models.ColCallDuration]; hasDuration && !cell.IsNull() {
		v, st := ParseDuration(cell.Key())
		switch st {
		case DurationParsed:
			secs = models.Int(v)
		case DurationNoMatch:
			secs = models.Int(0)
			res.addIssue(n.maxIssues, Issue{Row: i, Column: models.ColCallDuration, Message: fmt.Sprintf("unrecognized duration %q, counted as 0s", cell.Key())})
		case DurationInvalid:
			res.addIssue(n.maxIssues, Issue{Row: i, Column: models.ColCallDuration, Message: fmt.Sprintf("duration %q out of range", cell.Key())})
		}
	}
	rec[models.ColDurationSeconds] = secs
	return nil
}

// coerceTimes returns, per timestamp column, the parsed cells for every row.
// A column is converted only when all of its non-null cells parse.
func (n *Normalizer) coerceTimes(raw models.Dataset, res *Result) map[string][]models.Value {
	out := map[string][]models.Value{}
	for _, col := range n.timeCols {
		if !raw.HasColumn(col) {
			continue
		}
		vals := make([]models.Value, len(raw.Rows))
		ok := true
		for i, row := range raw.Rows {
			cell := row[col]
			if cell.IsNull() {
				continue
			}
			t, parsed := models.ParseTime(cell)
			if !parsed {
				res.addIssue(n.maxIssues, Issue{Row: i, Column: col, Message: fmt.Sprintf("unrecognized timestamp %q, column kept as text", cell.Key())})
				ok = false
				break
			}
			vals[i] = models.Time(t)
		}
		if ok {
			out[col] = vals
		}
	}
	return out
}

func appendMissing(cols []string, extra ...string) []string {
	out := append([]string(nil), cols...)
	for _, e := range extra {
		if !lo.Contains(out, e) {
			out = append(out, e)
		}
	}
	return out
}
