package query

import (
	"sort"

	"github.com/samber/lo"

	"github.com/AngelCh415/lead-reports/internal/models"
)

type predicate struct {
	dim string
	set map[string]struct{}
}

// Apply keeps the rows whose value in every constrained dimension is one of
// the selected keys. Dimensions with no values, or that are not columns of
// ds, are ignored. Null cells never match. Records are shared with ds.
func Apply(ds models.Dataset, sel models.Selection) models.Dataset {
	preds := predicates(ds, sel)
	if len(preds) == 0 {
		return ds.WithRows(append([]models.Record(nil), ds.Rows...))
	}
	rows := lo.Filter(ds.Rows, func(r models.Record, _ int) bool {
		for _, p := range preds {
			v := r[p.dim]
			if v.IsNull() {
				return false
			}
			if _, ok := p.set[v.Key()]; !ok {
				return false
			}
		}
		return true
	})
	return ds.WithRows(rows)
}

// Restrict drops selection entries for dimensions outside allowed.
func Restrict(sel models.Selection, allowed []string) models.Selection {
	return lo.PickByKeys(sel, allowed)
}

func predicates(ds models.Dataset, sel models.Selection) []predicate {
	var out []predicate
	for dim, vals := range sel {
		if len(vals) == 0 || !ds.HasColumn(dim) {
			continue
		}
		out = append(out, predicate{
			dim: dim,
			set: lo.Associate(vals, func(v string) (string, struct{}) { return v, struct{}{} }),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].dim < out[j].dim })
	return out
}
