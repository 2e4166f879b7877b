package models

// Column names the report views read. None of them is required to be
// present in an upload.
const (
	ColOwner           = "Owner"
	ColLeadSource      = "Lead Source"
	ColCourse          = "Lead | Course"
	ColDistrict        = "Lead | Permanent District"
	ColActivityEvent   = "ActivityEvent"
	ColLeadStage       = "Lead Stage"
	ColStatus          = "Status"
	ColCreatedOn       = "CreatedOn"
	ColPhoneNumber     = "Lead | Phone Number"
	ColCallDuration    = "Call Duration"
	ColGroup           = "Group"
	ColDurationSeconds = "Call Duration Seconds"
)

// UnknownGroup is the group assigned to owners missing from the lookup table.
const UnknownGroup = "Unknown"

// Record is one row keyed by column name. A missing key reads as null.
type Record map[string]Value

// Dataset is an ordered table. Rows share the column set in Columns.
type Dataset struct {
	Columns []string
	Rows    []Record
}

func (d Dataset) Len() int { return len(d.Rows) }

func (d Dataset) HasColumn(name string) bool {
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Value returns the cell at row i, column col, or Null when absent.
func (d Dataset) Value(i int, col string) Value {
	if i < 0 || i >= len(d.Rows) {
		return Null()
	}
	return d.Rows[i][col]
}

// WithRows returns a dataset with the same columns and the given rows.
func (d Dataset) WithRows(rows []Record) Dataset {
	return Dataset{Columns: d.Columns, Rows: rows}
}

// Clone deep-copies columns and records.
func (d Dataset) Clone() Dataset {
	out := Dataset{
		Columns: append([]string(nil), d.Columns...),
		Rows:    make([]Record, len(d.Rows)),
	}
	for i, r := range d.Rows {
		out.Rows[i] = r.Clone()
	}
	return out
}

func (r Record) Clone() Record {
	out := make(Record, len(r)+2)
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Selection maps a dimension (column name) to the value keys a report is
// restricted to. An absent or empty entry places no constraint.
type Selection map[string][]string

// Active reports whether the selection constrains dim.
func (s Selection) Active(dim string) bool { return len(s[dim]) > 0 }
