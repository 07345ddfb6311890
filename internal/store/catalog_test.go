package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/piwi3910/ductcalc/internal/model"
	"github.com/piwi3910/ductcalc/internal/sizing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func sizedProject(name string, flow float64) model.Project {
	p := model.NewProject(name)
	p.InletFlow = flow
	p.Terminals = []model.Terminal{
		model.NewTerminal(model.Inlet, model.Point{X: 0, Y: 0}, flow),
		model.NewTerminal(model.Outlet, model.Point{X: 4, Y: 0}, flow),
	}
	s := model.NewSegment(model.Point{X: 0, Y: 0}, model.Point{X: 4, Y: 0})
	s.Flow = flow
	s.WidthMM, s.HeightMM, s.Label = sizing.PerformSizing(flow, p.Policy)
	p.Segments = []model.Segment{s}
	return p
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))

	for _, table := range []string{"designs", "revisions"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
	}
}

func TestCatalog_SaveAndGet(t *testing.T) {
	c := NewCatalog(openTestDB(t))
	ctx := context.Background()

	p := sizedProject("Office Wing", 1000)
	rev, err := c.SaveRevision(ctx, p, "first cut")
	require.NoError(t, err)
	assert.Equal(t, 1, rev.Seq)
	assert.Equal(t, "350x200", rev.LargestDuct)
	assert.Equal(t, 1, rev.Outlets)
	assert.InDelta(t, 4.4, rev.TotalSurface, 1e-9)

	got, err := c.GetRevision(ctx, "Office Wing", 1)
	require.NoError(t, err)
	assert.Equal(t, rev.ID, got.ID)
	assert.Equal(t, "first cut", got.Note)
	assert.Equal(t, p.Segments, got.Project.Segments)
	assert.Equal(t, p.Terminals, got.Project.Terminals)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestCatalog_RevisionsIncrement(t *testing.T) {
	c := NewCatalog(openTestDB(t))
	ctx := context.Background()

	_, err := c.SaveRevision(ctx, sizedProject("Lab", 1000), "")
	require.NoError(t, err)
	second, err := c.SaveRevision(ctx, sizedProject("lab", 1500), "more air")
	require.NoError(t, err)
	assert.Equal(t, 2, second.Seq)
	assert.Equal(t, "Lab", second.DesignName, "names match case-insensitively")

	revs, err := c.ListRevisions(ctx, "Lab")
	require.NoError(t, err)
	require.Len(t, revs, 2)
	assert.Equal(t, 1, revs[0].Seq)
	assert.Equal(t, 1500.0, revs[1].InletFlow)

	latest, err := c.GetRevision(ctx, "Lab", 0)
	require.NoError(t, err)
	assert.Equal(t, 2, latest.Seq)
	assert.Equal(t, "more air", latest.Note)
}

func TestCatalog_ListDesigns(t *testing.T) {
	c := NewCatalog(openTestDB(t))
	ctx := context.Background()

	for _, name := range []string{"B Wing", "A Wing", "B Wing"} {
		_, err := c.SaveRevision(ctx, sizedProject(name, 800), "")
		require.NoError(t, err)
	}

	designs, err := c.ListDesigns(ctx)
	require.NoError(t, err)
	require.Len(t, designs, 2)

	counts := map[string]int{}
	for _, d := range designs {
		counts[d.Name] = d.Revisions
		assert.Equal(t, d.Revisions, d.LatestSeq)
	}
	assert.Equal(t, map[string]int{"A Wing": 1, "B Wing": 2}, counts)
}

func TestCatalog_NotFound(t *testing.T) {
	c := NewCatalog(openTestDB(t))
	ctx := context.Background()

	_, err := c.ListRevisions(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.GetRevision(ctx, "missing", 0)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.SaveRevision(ctx, sizedProject("Lab", 500), "")
	require.NoError(t, err)
	_, err = c.GetRevision(ctx, "Lab", 7)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, c.DeleteDesign(ctx, "missing"), ErrNotFound)
}

func TestCatalog_DeleteCascades(t *testing.T) {
	db := openTestDB(t)
	c := NewCatalog(db)
	ctx := context.Background()

	_, err := c.SaveRevision(ctx, sizedProject("Lab", 500), "")
	require.NoError(t, err)
	require.NoError(t, c.DeleteDesign(ctx, "Lab"))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM revisions`).Scan(&n))
	assert.Zero(t, n)
}

func TestCatalog_RequiresName(t *testing.T) {
	c := NewCatalog(openTestDB(t))

	_, err := c.SaveRevision(context.Background(), sizedProject("  ", 500), "")
	assert.Error(t, err)
}

func TestOpenDB_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "catalog.db")

	db, err := OpenDB(path)
	require.NoError(t, err)
	c := NewCatalog(db)
	_, err = c.SaveRevision(context.Background(), sizedProject("Lab", 500), "")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = OpenDB(path)
	require.NoError(t, err)
	defer db.Close()
	designs, err := NewCatalog(db).ListDesigns(context.Background())
	require.NoError(t, err)
	assert.Len(t, designs, 1)
}
