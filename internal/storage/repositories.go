package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Common errors
var (
	ErrNotFound = errors.New("record not found")
)

// DB represents a database connection interface.
type DB interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

const phoneColumns = `model_name, release_date, display, battery, camera, ram, storage, price`

// PhoneRepository reads and writes the phones table.
type PhoneRepository struct {
	db DB
}

// NewPhoneRepository creates a new phone repository.
func NewPhoneRepository(db DB) *PhoneRepository {
	return &PhoneRepository{db: db}
}

// ListModelNames returns every model name in insertion order.
func (r *PhoneRepository) ListModelNames(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT model_name FROM phones ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list model names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan model name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// GetByModelName retrieves a phone by its exact model name.
func (r *PhoneRepository) GetByModelName(ctx context.Context, modelName string) (*Phone, error) {
	query := `SELECT ` + phoneColumns + ` FROM phones WHERE model_name = $1`

	phone, err := scanPhone(r.db.QueryRowContext(ctx, query, modelName))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get phone %q: %w", modelName, err)
	}
	return phone, nil
}

// ListAll returns every phone in insertion order.
func (r *PhoneRepository) ListAll(ctx context.Context) ([]*Phone, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+phoneColumns+` FROM phones ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list phones: %w", err)
	}
	defer rows.Close()

	var phones []*Phone
	for rows.Next() {
		phone, err := scanPhone(rows)
		if err != nil {
			return nil, fmt.Errorf("scan phone: %w", err)
		}
		phones = append(phones, phone)
	}
	return phones, rows.Err()
}

// Upsert inserts a phone or updates the existing row with the same model name.
func (r *PhoneRepository) Upsert(ctx context.Context, p *Phone) error {
	if p.ModelName == "" {
		return errors.New("model name is required")
	}

	query := `
		INSERT INTO phones (` + phoneColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (model_name) DO UPDATE SET
			release_date = EXCLUDED.release_date,
			display = EXCLUDED.display,
			battery = EXCLUDED.battery,
			camera = EXCLUDED.camera,
			ram = EXCLUDED.ram,
			storage = EXCLUDED.storage,
			price = EXCLUDED.price,
			updated_at = CURRENT_TIMESTAMP
	`
	_, err := r.db.ExecContext(ctx, query,
		p.ModelName, p.ReleaseDate, p.Display, p.Battery,
		p.Camera, p.RAM, p.Storage, p.Price,
	)
	if err != nil {
		return fmt.Errorf("upsert phone %q: %w", p.ModelName, err)
	}
	return nil
}

// Count returns the number of phones in the catalog.
func (r *PhoneRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM phones`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count phones: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPhone(row rowScanner) (*Phone, error) {
	var (
		p                                                 Phone
		release, display, battery, camera, ram, stg, price sql.NullString
	)
	if err := row.Scan(&p.ModelName, &release, &display, &battery, &camera, &ram, &stg, &price); err != nil {
		return nil, err
	}
	p.ReleaseDate = nullable(release)
	p.Display = nullable(display)
	p.Battery = nullable(battery)
	p.Camera = nullable(camera)
	p.RAM = nullable(ram)
	p.Storage = nullable(stg)
	p.Price = nullable(price)
	return &p, nil
}

func nullable(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
