package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/piwi3910/ductcalc/internal/export"
	"github.com/piwi3910/ductcalc/internal/model"
)

// ErrNotFound is returned when a design or revision does not exist.
var ErrNotFound = errors.New("not found")

// Design is a named entry in the catalog.
type Design struct {
	ID        string
	Name      string
	Revisions int
	LatestSeq int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Revision is one saved snapshot of a design with its totals.
type Revision struct {
	ID           string
	DesignName   string
	Seq          int
	Note         string
	Outlets      int
	InletFlow    float64
	Segments     int
	Unsized      int
	TotalLength  float64
	TotalSurface float64
	LargestDuct  string
	MaxVelocity  float64
	CreatedAt    time.Time

	// Project is only filled by GetRevision.
	Project model.Project
}

// Catalog stores design revisions in SQLite.
type Catalog struct {
	db *sql.DB
}

// NewCatalog creates a Catalog on an open, migrated database.
func NewCatalog(db *sql.DB) *Catalog {
	return &Catalog{db: db}
}

func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

// SaveRevision stores p as the next revision of the design named p.Name,
// creating the design on first save.
func (c *Catalog) SaveRevision(ctx context.Context, p model.Project, note string) (Revision, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return Revision{}, fmt.Errorf("saving revision: project name is required")
	}
	data, err := json.Marshal(p)
	if err != nil {
		return Revision{}, fmt.Errorf("encoding project: %w", err)
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return Revision{}, fmt.Errorf("starting transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	now := nowUTC()
	var designID string
	err = tx.QueryRowContext(ctx, `SELECT id, name FROM designs WHERE name = ?`, name).Scan(&designID, &name)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		designID = uuid.New().String()[:8]
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO designs (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
			designID, name, now, now); err != nil {
			return Revision{}, fmt.Errorf("inserting design: %w", err)
		}
	case err != nil:
		return Revision{}, fmt.Errorf("looking up design: %w", err)
	default:
		if _, err := tx.ExecContext(ctx, `UPDATE designs SET updated_at = ? WHERE id = ?`, now, designID); err != nil {
			return Revision{}, fmt.Errorf("updating design: %w", err)
		}
	}

	var seq int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), 0) + 1 FROM revisions WHERE design_id = ?`, designID).Scan(&seq); err != nil {
		return Revision{}, fmt.Errorf("allocating revision number: %w", err)
	}

	sum := export.Summarize(p)
	rev := Revision{
		ID:           uuid.New().String()[:8],
		DesignName:   name,
		Seq:          seq,
		Note:         note,
		Outlets:      sum.Outlets,
		InletFlow:    sum.InletFlow,
		Segments:     sum.Segments,
		Unsized:      sum.Unsized,
		TotalLength:  sum.TotalLength,
		TotalSurface: sum.TotalSurface,
		LargestDuct:  sum.LargestDuct,
		MaxVelocity:  sum.MaxVelocity,
		CreatedAt:    parseTime(now),
		Project:      p,
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO revisions
		(id, design_id, seq, note, project_json, outlets, inlet_flow, segments, unsized,
		 total_length, total_surface, largest_duct, max_velocity, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rev.ID, designID, rev.Seq, rev.Note, string(data), rev.Outlets, rev.InletFlow, rev.Segments,
		rev.Unsized, rev.TotalLength, rev.TotalSurface, rev.LargestDuct, rev.MaxVelocity, now)
	if err != nil {
		return Revision{}, fmt.Errorf("inserting revision: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Revision{}, fmt.Errorf("committing revision: %w", err)
	}
	committed = true
	return rev, nil
}

// ListDesigns returns every design, most recently updated first.
func (c *Catalog) ListDesigns(ctx context.Context) ([]Design, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT d.id, d.name, d.created_at, d.updated_at,
			COUNT(r.id), COALESCE(MAX(r.seq), 0)
		FROM designs d LEFT JOIN revisions r ON r.design_id = d.id
		GROUP BY d.id
		ORDER BY d.updated_at DESC, d.name`)
	if err != nil {
		return nil, fmt.Errorf("listing designs: %w", err)
	}
	defer rows.Close()

	var designs []Design
	for rows.Next() {
		var d Design
		var created, updated string
		if err := rows.Scan(&d.ID, &d.Name, &created, &updated, &d.Revisions, &d.LatestSeq); err != nil {
			return nil, fmt.Errorf("scanning design: %w", err)
		}
		d.CreatedAt, d.UpdatedAt = parseTime(created), parseTime(updated)
		designs = append(designs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating designs: %w", err)
	}
	return designs, nil
}

const revisionColumns = `r.id, d.name, r.seq, r.note, r.outlets, r.inlet_flow, r.segments, r.unsized,
	r.total_length, r.total_surface, r.largest_duct, r.max_velocity, r.created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRevision(s scanner, extra ...any) (Revision, error) {
	var r Revision
	var created string
	dest := []any{&r.ID, &r.DesignName, &r.Seq, &r.Note, &r.Outlets, &r.InletFlow, &r.Segments,
		&r.Unsized, &r.TotalLength, &r.TotalSurface, &r.LargestDuct, &r.MaxVelocity, &created}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return Revision{}, err
	}
	r.CreatedAt = parseTime(created)
	return r, nil
}

// ListRevisions returns the revisions of a design, oldest first.
func (c *Catalog) ListRevisions(ctx context.Context, design string) ([]Revision, error) {
	var exists int
	err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM designs WHERE name = ?`, design).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("looking up design: %w", err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("design %q: %w", design, ErrNotFound)
	}

	rows, err := c.db.QueryContext(ctx, `SELECT `+revisionColumns+`
		FROM revisions r JOIN designs d ON d.id = r.design_id
		WHERE d.name = ? ORDER BY r.seq`, design)
	if err != nil {
		return nil, fmt.Errorf("listing revisions: %w", err)
	}
	defer rows.Close()

	var revs []Revision
	for rows.Next() {
		r, err := scanRevision(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning revision: %w", err)
		}
		revs = append(revs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating revisions: %w", err)
	}
	return revs, nil
}

// GetRevision loads one revision including its project. A seq of zero
// selects the latest revision.
func (c *Catalog) GetRevision(ctx context.Context, design string, seq int) (Revision, error) {
	query := `SELECT ` + revisionColumns + `, r.project_json
		FROM revisions r JOIN designs d ON d.id = r.design_id
		WHERE d.name = ?`
	args := []any{design}
	if seq > 0 {
		query += ` AND r.seq = ?`
		args = append(args, seq)
	} else {
		query += ` ORDER BY r.seq DESC LIMIT 1`
	}

	var data string
	r, err := scanRevision(c.db.QueryRowContext(ctx, query, args...), &data)
	if errors.Is(err, sql.ErrNoRows) {
		return Revision{}, fmt.Errorf("design %q revision %d: %w", design, seq, ErrNotFound)
	}
	if err != nil {
		return Revision{}, fmt.Errorf("loading revision: %w", err)
	}
	if err := json.Unmarshal([]byte(data), &r.Project); err != nil {
		return Revision{}, fmt.Errorf("decoding project: %w", err)
	}
	return r, nil
}

// DeleteDesign removes a design and all of its revisions.
func (c *Catalog) DeleteDesign(ctx context.Context, design string) error {
	// Pooled file connections may not carry the foreign_keys pragma.
	if _, err := c.db.ExecContext(ctx,
		`DELETE FROM revisions WHERE design_id IN (SELECT id FROM designs WHERE name = ?)`, design); err != nil {
		return fmt.Errorf("deleting revisions: %w", err)
	}
	res, err := c.db.ExecContext(ctx, `DELETE FROM designs WHERE name = ?`, design)
	if err != nil {
		return fmt.Errorf("deleting design: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting design: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("design %q: %w", design, ErrNotFound)
	}
	return nil
}
