package metrics

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/samber/lo"

	"github.com/AngelCh415/lead-reports/internal/models"
	"github.com/AngelCh415/lead-reports/internal/query"
)

var ErrUnknownView = errors.New("unknown report view")

// Summary holds the headline figures of the home view.
type Summary struct {
	TotalCalls   int `json:"total_calls"`
	TotalMinutes int `json:"total_duration_minutes"`
	UniqueOwners int `json:"unique_owners"`
}

// CallerStat is one line of the caller summary: calls are non-null Status
// cells, minutes the summed call duration.
type CallerStat struct {
	Owner   models.Value `json:"owner"`
	Calls   int          `json:"total_calls"`
	Minutes float64      `json:"total_duration_minutes"`
}

// Section is one table of a report. Exactly one of the payload fields is set.
type Section struct {
	Name    string            `json:"name"`
	Counts  *query.CountTable `json:"counts,omitempty"`
	Pivot   *query.PivotTable `json:"pivot,omitempty"`
	Buckets []query.Bucket    `json:"buckets,omitempty"`
	Callers []CallerStat      `json:"callers,omitempty"`
}

type Report struct {
	View      string           `json:"view"`
	Rows      int              `json:"rows"`
	Selection models.Selection `json:"selection"`
	Summary   *Summary         `json:"summary,omitempty"`
	Sections  []Section        `json:"sections"`
}

type view struct {
	dims  []string
	build func(ds models.Dataset, r *Report)
}

var views = map[string]view{
	"home": {
		build: buildHome,
	},
	"caller": {
		dims: []string{
			models.ColOwner, models.ColLeadSource, models.ColCourse, models.ColDistrict,
			models.ColActivityEvent, models.ColLeadStage, models.ColGroup,
		},
		build: buildCaller,
	},
	"group": {
		dims:  []string{models.ColGroup, models.ColOwner, models.ColLeadSource},
		build: buildGroup,
	},
	"district": {
		dims:  []string{models.ColGroup, models.ColOwner, models.ColCourse, models.ColLeadSource},
		build: buildDistrict,
	},
	"source": {
		dims:  []string{models.ColLeadSource, models.ColLeadStage},
		build: buildSource,
	},
	"course": {
		dims:  []string{models.ColCourse, models.ColLeadSource, models.ColLeadStage},
		build: buildCourse,
	},
}

// Views lists the report names in a stable order.
func Views() []string {
	return []string{"home", "caller", "group", "district", "source", "course"}
}

// Dimensions returns the filter dimensions a view accepts.
func Dimensions(name string) ([]string, error) {
	v, ok := views[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownView, name)
	}
	return append([]string{}, v.dims...), nil
}

// BuildReport filters ds by the part of sel the view accepts and derives
// the view's tables. ds is not modified.
func BuildReport(name string, ds models.Dataset, sel models.Selection) (Report, error) {
	v, ok := views[name]
	if !ok {
		return Report{}, fmt.Errorf("%w: %q", ErrUnknownView, name)
	}
	sel = query.Restrict(sel, v.dims)
	if sel == nil {
		sel = models.Selection{}
	}
	filtered := query.Apply(ds, sel)
	r := Report{View: name, Rows: filtered.Len(), Selection: sel, Sections: []Section{}}
	v.build(filtered, &r)
	return r, nil
}

func (r *Report) counts(name string, t query.CountTable) {
	r.Sections = append(r.Sections, Section{Name: name, Counts: &t})
}

func (r *Report) pivot(name string, p query.PivotTable) {
	r.Sections = append(r.Sections, Section{Name: name, Pivot: &p})
}

func buildHome(ds models.Dataset, r *Report) {
	r.Summary = &Summary{
		TotalCalls:   ds.Len(),
		TotalMinutes: int(query.Sum(ds, models.ColDurationSeconds) / 60),
		UniqueOwners: len(query.Distinct(ds, models.ColOwner)),
	}
	r.counts("Activity Event Distribution", query.GroupCount(ds, models.ColActivityEvent))
	r.counts("Status Distribution", query.GroupCount(ds, models.ColStatus))
}

func buildCaller(ds models.Dataset, r *Report) {
	r.Sections = append(r.Sections, Section{Name: "Caller Summary", Callers: callerSummary(ds)})
	r.counts("Lead Stage by Caller", query.GroupCount(ds, models.ColOwner, models.ColLeadStage))
	r.Sections = append(r.Sections, Section{
		Name:    "Call Counts Over Time",
		Buckets: query.TimeBuckets(ds, models.ColCreatedOn, time.Hour, false),
	})
	r.counts("Lead Stage Funnel", query.GroupCount(ds, models.ColLeadStage))
}

func callerSummary(ds models.Dataset) []CallerStat {
	calls := query.GroupCountOf(ds, models.ColStatus, models.ColOwner)
	secs := query.GroupSum(ds, models.ColOwner, models.ColDurationSeconds)
	byOwner := lo.Associate(secs.Rows, func(s query.SumRow) (string, float64) {
		return query.Identity(s.Key), s.Sum
	})
	return lo.Map(calls.Rows, func(c query.CountRow, _ int) CallerStat {
		owner := c.Keys[0]
		sum := byOwner[query.Identity(owner)]
		return CallerStat{Owner: owner, Calls: c.Count, Minutes: round2(sum / 60)}
	})
}

func buildGroup(ds models.Dataset, r *Report) {
	r.counts("Lead Stage by Owner and Group", query.GroupCount(ds, models.ColOwner, models.ColLeadStage, models.ColGroup))
	r.counts("Group Hierarchy", query.GroupCount(ds, models.ColGroup, models.ColOwner, models.ColLeadStage))
	r.counts("Calls per Owner by Group", query.GroupCountOf(ds, models.ColLeadStage, models.ColGroup, models.ColOwner))
	r.counts("Leads per Group", query.GroupCount(ds, models.ColGroup))
}

func buildDistrict(ds models.Dataset, r *Report) {
	r.counts("Lead Stage by District and Course", query.GroupCount(ds, models.ColDistrict, models.ColCourse, models.ColLeadStage))
	r.pivot("Courses by District", query.Pivot(ds, models.ColDistrict, models.ColCourse, ""))
}

func buildSource(ds models.Dataset, r *Report) {
	r.pivot("Lead Stage by Source", query.Pivot(ds, models.ColLeadSource, models.ColLeadStage, models.ColPhoneNumber))
	r.counts("Source and Stage Counts", query.GroupCount(ds, models.ColLeadSource, models.ColLeadStage))
}

func buildCourse(ds models.Dataset, r *Report) {
	r.counts("Lead Stage by Course", query.GroupCount(ds, models.ColCourse, models.ColLeadStage))
	r.pivot("Course and Stage Matrix", query.Pivot(ds, models.ColCourse, models.ColLeadStage, ""))
}

func round2(f float64) float64 { return math.Round(f*100) / 100 }
