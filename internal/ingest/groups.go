package ingest

import "github.com/AngelCh415/lead-reports/internal/models"

// GroupResolver maps an owner to its team. The table is fixed at construction.
type GroupResolver struct {
	table map[string]string
}

func NewGroupResolver(table map[string]string) *GroupResolver {
	t := make(map[string]string, len(table))
	for k, v := range table {
		t[k] = v
	}
	return &GroupResolver{table: t}
}

// Resolve is total: null, non-text and unlisted owners map to "Unknown".
func (g *GroupResolver) Resolve(owner models.Value) string {
	s, ok := owner.Str()
	if !ok {
		return models.UnknownGroup
	}
	return g.ResolveName(s)
}

// ResolveName looks up an owner name exactly as written (case and spaces).
func (g *GroupResolver) ResolveName(owner string) string {
	if grp, ok := g.table[owner]; ok {
		return grp
	}
	return models.UnknownGroup
}
