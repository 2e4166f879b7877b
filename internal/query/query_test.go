package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AngelCh415/lead-reports/internal/models"
)

func ts(h, m int) models.Value {
	return models.Time(time.Date(2024, 5, 6, h, m, 0, 0, time.UTC))
}

// leads has one row per call: owner, group, stage, source, phone, created.
func leads() models.Dataset {
	s := models.Str
	rows := [][]models.Value{
		{s("Telecaller 3"), s("ATL1"), s("New"), s("Web"), models.Int(111), ts(10, 15)},
		{s("Telecaller 5"), s("TL2"), s("Hot"), s("Web"), models.Int(222), ts(10, 40)},
		{s("Admin "), s("Admin"), s("New"), s("Fair"), models.Null(), ts(11, 5)},
		{s("X"), s("Unknown"), s("Cold"), models.Null(), models.Int(444), ts(11, 10)},
		{s("Telecaller 3"), s("ATL1"), s("Hot"), s("Fair"), models.Int(555), ts(13, 0)},
	}
	cols := []string{models.ColOwner, models.ColGroup, models.ColLeadStage, models.ColLeadSource, models.ColPhoneNumber, models.ColCreatedOn}
	ds := models.Dataset{Columns: cols}
	for _, r := range rows {
		rec := models.Record{}
		for i, c := range cols {
			rec[c] = r[i]
		}
		ds.Rows = append(ds.Rows, rec)
	}
	return ds
}

func TestApplyFiltersConjunctively(t *testing.T) {
	ds := leads()
	got := Apply(ds, models.Selection{models.ColGroup: {"ATL1"}})
	assert.Equal(t, 2, got.Len())

	got = Apply(ds, models.Selection{models.ColGroup: {"ATL1", "TL2"}, models.ColLeadStage: {"Hot"}})
	require.Equal(t, 2, got.Len())
	assert.Equal(t, models.Str("Telecaller 5"), got.Value(0, models.ColOwner))
	assert.Equal(t, models.Str("Telecaller 3"), got.Value(1, models.ColOwner))

	got = Apply(ds, models.Selection{models.ColPhoneNumber: {"222"}})
	assert.Equal(t, 1, got.Len(), "numbers match on their key text")
}

func TestApplyNoops(t *testing.T) {
	ds := leads()
	assert.Equal(t, ds.Len(), Apply(ds, nil).Len())
	assert.Equal(t, ds.Len(), Apply(ds, models.Selection{models.ColGroup: {}}).Len())
	assert.Equal(t, ds.Len(), Apply(ds, models.Selection{"No Such Column": {"x"}}).Len())
	assert.Equal(t, 0, Apply(ds, models.Selection{models.ColGroup: {"atl1"}}).Len(), "case sensitive")
	assert.Equal(t, 0, Apply(models.Dataset{}, models.Selection{models.ColGroup: {"ATL1"}}).Len())
}

func TestApplyNullNeverMatches(t *testing.T) {
	got := Apply(leads(), models.Selection{models.ColLeadSource: {"", "Web", "Fair"}})
	assert.Equal(t, 4, got.Len())
}

func TestApplyIdempotent(t *testing.T) {
	ds := leads()
	sel := models.Selection{models.ColLeadSource: {"Web", "Fair"}, models.ColLeadStage: {"New", "Hot"}}
	once := Apply(ds, sel)
	assert.Equal(t, once, Apply(once, sel))
}

func TestApplyOrderIndependent(t *testing.T) {
	ds := leads()
	a := models.Selection{models.ColLeadSource: {"Web", "Fair"}}
	b := models.Selection{models.ColLeadStage: {"Hot"}}
	both := models.Selection{models.ColLeadSource: {"Web", "Fair"}, models.ColLeadStage: {"Hot"}}
	assert.Equal(t, Apply(Apply(ds, a), b), Apply(Apply(ds, b), a))
	assert.Equal(t, Apply(Apply(ds, a), b), Apply(ds, both))
}

func TestApplyDoesNotMutate(t *testing.T) {
	ds := leads()
	before := ds.Clone()
	_ = Apply(ds, models.Selection{models.ColGroup: {"ATL1"}})
	assert.Equal(t, before, ds)
}

func TestRestrict(t *testing.T) {
	sel := models.Selection{"A": {"1"}, "B": {"2"}}
	assert.Equal(t, models.Selection{"A": {"1"}}, Restrict(sel, []string{"A", "C"}))
}

func TestDistinct(t *testing.T) {
	ds := leads()
	assert.Equal(t, []models.Value{models.Str("Web"), models.Str("Fair")}, Distinct(ds, models.ColLeadSource))
	assert.Len(t, Distinct(ds, models.ColOwner), 4)
	assert.Empty(t, Distinct(ds, "missing"))
}

func TestGroupCountByGroup(t *testing.T) {
	got := GroupCount(leads(), models.ColGroup)
	assert.Equal(t, 2, got.Lookup("ATL1"))
	assert.Equal(t, 1, got.Lookup("TL2"))
	assert.Equal(t, 1, got.Lookup("Admin"))
	assert.Equal(t, 1, got.Lookup("Unknown"))
	assert.Equal(t, 5, got.Total())

	keys := []string{}
	for _, r := range got.Rows {
		keys = append(keys, r.Keys[0].Key())
	}
	assert.Equal(t, []string{"ATL1", "Admin", "TL2", "Unknown"}, keys, "sorted by key")
}

func TestGroupCountSkipsNullKeys(t *testing.T) {
	got := GroupCount(leads(), models.ColLeadSource, models.ColLeadStage)
	assert.Equal(t, 4, got.Total())
	assert.Equal(t, 1, got.Lookup("Fair", "Hot"))
	assert.Equal(t, 0, got.Lookup("Web", "Cold"), "combinations that never occur are absent")
	assert.Len(t, got.Rows, 4)
}

func TestGroupCountOf(t *testing.T) {
	got := GroupCountOf(leads(), models.ColPhoneNumber, models.ColLeadSource)
	assert.Equal(t, 2, got.Lookup("Web"))
	assert.Equal(t, 1, got.Lookup("Fair"))
	require.Len(t, got.Rows, 2)

	got = GroupCountOf(leads(), "missing", models.ColGroup)
	assert.Len(t, got.Rows, 4)
	assert.Equal(t, 0, got.Total())
}

func TestGroupSum(t *testing.T) {
	ds := models.Dataset{
		Columns: []string{"Owner", "Secs"},
		Rows: []models.Record{
			{"Owner": models.Str("a"), "Secs": models.Int(60)},
			{"Owner": models.Str("a"), "Secs": models.Null()},
			{"Owner": models.Str("b"), "Secs": models.Float(30.5)},
			{"Owner": models.Null(), "Secs": models.Int(100)},
		},
	}
	got := GroupSum(ds, "Owner", "Secs")
	require.Len(t, got.Rows, 2)
	assert.Equal(t, SumRow{Key: models.Str("a"), Sum: 60, Count: 2}, got.Rows[0])
	assert.Equal(t, SumRow{Key: models.Str("b"), Sum: 30.5, Count: 1}, got.Rows[1])
	assert.Equal(t, 190.5, Sum(ds, "Secs"))
}

func TestPivotZeroFills(t *testing.T) {
	p := Pivot(leads(), models.ColLeadSource, models.ColLeadStage, "")
	assert.Equal(t, []models.Value{models.Str("Fair"), models.Str("Web")}, p.Rows)
	assert.Equal(t, []models.Value{models.Str("Hot"), models.Str("New")}, p.Cols)
	assert.Equal(t, [][]int{{1, 1}, {1, 1}}, p.Cells)

	p = Pivot(leads(), models.ColGroup, models.ColLeadStage, "")
	assert.Equal(t, 0, p.Cell("TL2", "New"))
	assert.Equal(t, 1, p.Cell("TL2", "Hot"))
	assert.Equal(t, 0, p.Cell("nope", "Hot"))
	for _, row := range p.Cells {
		assert.Len(t, row, len(p.Cols))
	}
}

func TestPivotCountOf(t *testing.T) {
	p := Pivot(leads(), models.ColLeadSource, models.ColLeadStage, models.ColPhoneNumber)
	assert.Equal(t, 0, p.Cell("Fair", "New"), "phone is null on that row")
	assert.Equal(t, 1, p.Cell("Fair", "Hot"))
}

func TestTimeBuckets(t *testing.T) {
	got := TimeBuckets(leads(), models.ColCreatedOn, time.Hour, false)
	require.Len(t, got, 3)
	assert.Equal(t, time.Date(2024, 5, 6, 10, 0, 0, 0, time.UTC), got[0].Start)
	assert.Equal(t, 2, got[0].Count)
	assert.Equal(t, 2, got[1].Count)
	assert.Equal(t, 13, got[2].Start.Hour(), "empty 12:00 bucket is left out")

	filled := TimeBuckets(leads(), models.ColCreatedOn, time.Hour, true)
	require.Len(t, filled, 4)
	assert.Equal(t, 12, filled[2].Start.Hour())
	assert.Equal(t, 0, filled[2].Count)
}

func TestTimeBucketsParsesText(t *testing.T) {
	ds := models.Dataset{
		Columns: []string{"At"},
		Rows: []models.Record{
			{"At": models.Str("2024-05-06 10:59:59")},
			{"At": models.Str("junk")},
			{"At": models.Str("2024-05-06 10:00:00")},
		},
	}
	got := TimeBuckets(ds, "At", time.Hour, false)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Count)
}

func TestAggregatesOnEmptyInput(t *testing.T) {
	empty := models.Dataset{}
	assert.Empty(t, GroupCount(empty, "A").Rows)
	assert.Empty(t, GroupCountOf(empty, "B", "A").Rows)
	assert.Empty(t, GroupSum(empty, "A", "B").Rows)
	assert.Empty(t, Pivot(empty, "A", "B", "").Cells)
	assert.Empty(t, TimeBuckets(empty, "A", time.Hour, true))
	assert.Empty(t, Distinct(empty, "A"))
	assert.Zero(t, Sum(empty, "A"))
}
