package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/rotimport/internal/importer"
)

var _ importer.Sink = (*AreaRepository)(nil)

// ErrAreaNotFound is returned when an area lookup yields no results.
var ErrAreaNotFound = errors.New("area not found")

// ErrMobileNotFound is returned when a mobile lookup yields no results.
var ErrMobileNotFound = errors.New("mobile not found")

// AreaRepository stores area and mobile documents as JSONB rows.
// It implements importer.Sink.
type AreaRepository struct {
	db *pgxpool.Pool
}

// NewAreaRepository creates an AreaRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool with the areas and
// mobiles tables migrated.
func NewAreaRepository(db *pgxpool.Pool) *AreaRepository {
	return &AreaRepository{db: db}
}

// WriteArea inserts the area document, replacing any previous import of the
// same vnum.
//
// Postcondition: exactly one row exists for area.Vnum holding this document.
func (r *AreaRepository) WriteArea(ctx context.Context, area *importer.Area) error {
	doc, err := json.Marshal(area)
	if err != nil {
		return fmt.Errorf("serialising area %q: %w", area.Vnum, err)
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO areas (vnum, id, name, room_count, document)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (vnum) DO UPDATE
		 SET id = EXCLUDED.id, name = EXCLUDED.name, room_count = EXCLUDED.room_count,
		     document = EXCLUDED.document, imported_at = NOW()`,
		area.Vnum, area.ID, area.Name, len(area.Rooms), doc,
	)
	if err != nil {
		return fmt.Errorf("upserting area %q: %w", area.Vnum, err)
	}
	return nil
}

// WriteMobile inserts the mobile document, replacing any previous import of
// the same vnum.
func (r *AreaRepository) WriteMobile(ctx context.Context, mobile *importer.Mobile) error {
	doc, err := json.Marshal(mobile)
	if err != nil {
		return fmt.Errorf("serialising mobile %d: %w", mobile.Vnum, err)
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO mobiles (vnum, id, area_vnum, name, document)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (vnum) DO UPDATE
		 SET id = EXCLUDED.id, area_vnum = EXCLUDED.area_vnum, name = EXCLUDED.name,
		     document = EXCLUDED.document, imported_at = NOW()`,
		mobile.Vnum, mobile.ID, mobile.AreaVnum, mobile.Name, doc,
	)
	if err != nil {
		return fmt.Errorf("upserting mobile %d: %w", mobile.Vnum, err)
	}
	return nil
}

// GetArea loads and validates the stored document for vnum.
//
// Postcondition: Returns the Area or ErrAreaNotFound.
func (r *AreaRepository) GetArea(ctx context.Context, vnum string) (*importer.Area, error) {
	var doc []byte
	err := r.db.QueryRow(ctx, `SELECT document FROM areas WHERE vnum = $1`, vnum).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAreaNotFound
		}
		return nil, fmt.Errorf("querying area %q: %w", vnum, err)
	}
	return importer.DecodeArea(doc)
}

// GetMobile loads the stored document for vnum.
//
// Postcondition: Returns the Mobile or ErrMobileNotFound.
func (r *AreaRepository) GetMobile(ctx context.Context, vnum int) (*importer.Mobile, error) {
	var doc []byte
	err := r.db.QueryRow(ctx, `SELECT document FROM mobiles WHERE vnum = $1`, vnum).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMobileNotFound
		}
		return nil, fmt.Errorf("querying mobile %d: %w", vnum, err)
	}
	var m importer.Mobile
	if err := json.Unmarshal(doc, &m); err != nil {
		return nil, fmt.Errorf("parsing mobile %d: %w", vnum, err)
	}
	return &m, nil
}

// ListAreaVnums returns every stored area vnum in ascending order.
func (r *AreaRepository) ListAreaVnums(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT vnum FROM areas ORDER BY vnum`)
	if err != nil {
		return nil, fmt.Errorf("listing areas: %w", err)
	}
	vnums, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scanning area vnums: %w", err)
	}
	return vnums, nil
}

// Close is a no-op; the pool belongs to the caller.
func (r *AreaRepository) Close() error { return nil }
