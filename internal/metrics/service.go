package metrics

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/AngelCh415/lead-reports/internal/models"
	"github.com/AngelCh415/lead-reports/internal/query"
	"github.com/AngelCh415/lead-reports/internal/store"
)

// Service answers report queries against the session cache.
type Service struct{ st *store.MemoryStore }

func NewService(st *store.MemoryStore) *Service { return &Service{st: st} }

// Options are the distinct values a filter dimension can take, in order of
// first appearance. A dimension that is not a column yields no options.
type Options struct {
	Dimension string         `json:"dimension"`
	Values    []models.Value `json:"values"`
}

func (s *Service) Options(sessionID, dimension string) (Options, error) {
	snap, err := s.st.Get(sessionID)
	if err != nil {
		return Options{}, err
	}
	return Options{Dimension: dimension, Values: query.Distinct(snap.Dataset, dimension)}, nil
}

// Report builds a view for the session. Query keys other than the view's
// dimensions are ignored; repeated keys select several values.
func (s *Service) Report(sessionID, view string, v url.Values) (Report, error) {
	if _, err := Dimensions(view); err != nil {
		return Report{}, err
	}
	snap, err := s.st.Get(sessionID)
	if err != nil {
		return Report{}, err
	}
	return BuildReport(view, snap.Dataset, SelectionFromQuery(v))
}

// DatasetPage is a window of the filtered dataset in split layout. Index
// entries are positions within the filtered rows.
type DatasetPage struct {
	Filename string      `json:"filename"`
	Total    int         `json:"total"`
	Limit    int         `json:"limit"`
	Offset   int         `json:"offset"`
	Frame    store.Frame `json:"frame"`
}

func (s *Service) Dataset(sessionID string, v url.Values) (DatasetPage, error) {
	snap, err := s.st.Get(sessionID)
	if err != nil {
		return DatasetPage{}, err
	}
	limit := atoiDef(v.Get("limit"), 100)
	offset := atoiDef(v.Get("offset"), 0)

	filtered := query.Apply(snap.Dataset, SelectionFromQuery(v))
	limit, offset = clampLimitOffset(limit, offset, filtered.Len())
	page := paginate(filtered.Rows, limit, offset)
	return DatasetPage{
		Filename: snap.Filename,
		Total:    filtered.Len(),
		Limit:    limit,
		Offset:   offset,
		Frame:    store.NewFrame(filtered.WithRows(page), offset),
	}, nil
}

var reserved = map[string]struct{}{"limit": {}, "offset": {}}

// SelectionFromQuery reads every non-reserved query key as a dimension.
// Values are taken whole; blank ones are dropped.
func SelectionFromQuery(v url.Values) models.Selection {
	sel := models.Selection{}
	for k, vals := range v {
		if _, ok := reserved[k]; ok {
			continue
		}
		for _, x := range vals {
			if strings.TrimSpace(x) != "" {
				sel[k] = append(sel[k], x)
			}
		}
	}
	return sel
}

func paginate[T any](rows []T, limit, offset int) []T {
	if offset >= len(rows) {
		return []T{}
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end]
}

func atoiDef(s string, d int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return v
}

func clampLimitOffset(limit, offset, n int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = n
	}
	if limit > 1000 {
		limit = 1000
	}
	if offset > n {
		offset = n
	}
	return limit, offset
}
