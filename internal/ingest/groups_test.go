package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AngelCh415/lead-reports/internal/config"
	"github.com/AngelCh415/lead-reports/internal/models"
)

func TestResolve(t *testing.T) {
	g := NewGroupResolver(config.DefaultGroupTable())
	assert.Equal(t, "ATL1", g.Resolve(models.Str("Telecaller 3")))
	assert.Equal(t, "TL2", g.Resolve(models.Str("Telecaller 5")))
	assert.Equal(t, "Admin", g.Resolve(models.Str("Admin ")))
	assert.Equal(t, "Unknown", g.Resolve(models.Str("nonexistent")))
	assert.Equal(t, "Unknown", g.Resolve(models.Str("telecaller 3")))
	assert.Equal(t, "Unknown", g.Resolve(models.Null()))
	assert.Equal(t, "Unknown", g.Resolve(models.Int(3)))
}

func TestResolverCopiesTable(t *testing.T) {
	tbl := map[string]string{"a": "G"}
	g := NewGroupResolver(tbl)
	tbl["a"] = "H"
	tbl["b"] = "H"
	assert.Equal(t, "G", g.ResolveName("a"))
	assert.Equal(t, "Unknown", g.ResolveName("b"))
}
