// Package store persists finished searches in an embedded SQLite database.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/eroview/sicar-api/internal/models"
)

//go:embed schema.sql
var schema string

// ErrNotFound is returned when a search record does not exist.
var ErrNotFound = errors.New("search record not found")

// SearchRecord is the flattened row shape for a finished search.
type SearchRecord struct {
	ID           string          `db:"id" json:"id"`
	Status       string          `db:"status" json:"status"`
	Latitude     float64         `db:"latitude" json:"latitude"`
	Longitude    float64         `db:"longitude" json:"longitude"`
	Found        bool            `db:"found" json:"found"`
	PropertyName sql.NullString  `db:"property_name" json:"property_name,omitempty"`
	CARCode      sql.NullString  `db:"car_code" json:"car_code,omitempty"`
	Area         sql.NullFloat64 `db:"area" json:"area,omitempty"`
	State        sql.NullString  `db:"state" json:"state,omitempty"`
	StateName    sql.NullString  `db:"state_name" json:"state_name,omitempty"`
	Municipality sql.NullString  `db:"municipality" json:"municipality,omitempty"`
	MapFile      sql.NullString  `db:"map_file" json:"map_file,omitempty"`
	Simulated    bool            `db:"simulated" json:"simulated"`
	Error        sql.NullString  `db:"error" json:"error,omitempty"`
	StartedAt    *time.Time      `db:"started_at" json:"started_at,omitempty"`
	FinishedAt   *time.Time      `db:"finished_at" json:"finished_at,omitempty"`
}

// Store wraps the searches database.
type Store struct {
	db *sqlx.DB
}

// Open connects to the SQLite database at path and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open search store: %w", err)
	}
	// SQLite handles one writer at a time.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// SaveSearch upserts the record for a finished search.
func (s *Store) SaveSearch(ctx context.Context, status models.SearchStatus) error {
	rec := recordFromStatus(status)
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO searches (
			id, status, latitude, longitude, found, property_name, car_code,
			area, state, state_name, municipality, map_file, simulated, error,
			started_at, finished_at
		) VALUES (
			:id, :status, :latitude, :longitude, :found, :property_name, :car_code,
			:area, :state, :state_name, :municipality, :map_file, :simulated, :error,
			:started_at, :finished_at
		)
		ON CONFLICT (id) DO UPDATE SET
			status = excluded.status,
			found = excluded.found,
			property_name = excluded.property_name,
			car_code = excluded.car_code,
			area = excluded.area,
			state = excluded.state,
			state_name = excluded.state_name,
			municipality = excluded.municipality,
			map_file = excluded.map_file,
			simulated = excluded.simulated,
			error = excluded.error,
			finished_at = excluded.finished_at
	`, rec)
	if err != nil {
		return fmt.Errorf("save search %s: %w", status.SearchID, err)
	}
	return nil
}

// ListSearches returns finished searches newest first.
func (s *Store) ListSearches(ctx context.Context, limit, offset int) ([]SearchRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	var records []SearchRecord
	err := s.db.SelectContext(ctx, &records, `
		SELECT * FROM searches
		ORDER BY started_at DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list searches: %w", err)
	}
	return records, nil
}

// GetSearch returns the record for a single search.
func (s *Store) GetSearch(ctx context.Context, id string) (*SearchRecord, error) {
	var rec SearchRecord
	err := s.db.GetContext(ctx, &rec, `SELECT * FROM searches WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get search %s: %w", id, err)
	}
	return &rec, nil
}

func recordFromStatus(status models.SearchStatus) SearchRecord {
	rec := SearchRecord{
		ID:         status.SearchID,
		Status:     status.Status,
		StartedAt:  status.StartedAt,
		FinishedAt: status.FinishedAt,
	}
	if status.Error != "" {
		rec.Error = sql.NullString{String: status.Error, Valid: true}
	}
	if result := status.Result; result != nil {
		rec.Found = result.Found
		rec.Latitude = result.Coordinates.Lat
		rec.Longitude = result.Coordinates.Lon
		rec.Simulated = result.Simulated
		rec.PropertyName = nullString(result.Name)
		rec.CARCode = nullString(result.CARCode)
		rec.State = nullString(result.State)
		rec.StateName = nullString(result.StateName)
		rec.Municipality = nullString(result.Municipality)
		rec.MapFile = nullString(result.MapFile)
		if result.AreaHectares > 0 {
			rec.Area = sql.NullFloat64{Float64: result.AreaHectares, Valid: true}
		}
	}
	return rec
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
