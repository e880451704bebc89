package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nvr-ai/go-anpr/registry"
)

// VehicleStore is a registry.Registry backed by the vehicle_info table.
type VehicleStore struct {
	db *sql.DB
}

// NewVehicleStore creates a store over db.
func NewVehicleStore(db *sql.DB) *VehicleStore {
	return &VehicleStore{db: db}
}

// Lookup implements registry.Registry.
func (s *VehicleStore) Lookup(ctx context.Context, plate string) (registry.VehicleRecord, error) {
	query := `SELECT id, plate, COALESCE(name, ''), COALESCE(phone, ''), created_at FROM vehicle_info WHERE plate = $1`

	var rec registry.VehicleRecord
	err := s.db.QueryRowContext(ctx, query, plate).Scan(&rec.ID, &rec.Plate, &rec.OwnerName, &rec.Phone, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return registry.VehicleRecord{}, registry.ErrNotFound
		}
		return registry.VehicleRecord{}, fmt.Errorf("VehicleStore.Lookup: %w", err)
	}
	rec.CreatedAt = rec.CreatedAt.In(time.UTC)
	return rec, nil
}

// Register implements registry.Registry. The unique constraint on plate
// decides concurrent registrations.
func (s *VehicleStore) Register(ctx context.Context, plate, ownerName, phone string) (registry.VehicleRecord, error) {
	query := `INSERT INTO vehicle_info (plate, name, phone) VALUES ($1, $2, $3) RETURNING id, created_at`

	rec := registry.VehicleRecord{Plate: plate, OwnerName: ownerName, Phone: phone}
	err := s.db.QueryRowContext(ctx, query, plate, ownerName, phone).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return registry.VehicleRecord{}, fmt.Errorf("%w: %s", registry.ErrDuplicateKey, plate)
		}
		return registry.VehicleRecord{}, fmt.Errorf("VehicleStore.Register: %w", err)
	}
	rec.CreatedAt = rec.CreatedAt.In(time.UTC)
	return rec, nil
}

// ListAll implements registry.Registry.
func (s *VehicleStore) ListAll(ctx context.Context) ([]registry.VehicleRecord, error) {
	query := `SELECT id, plate, COALESCE(name, ''), COALESCE(phone, ''), created_at FROM vehicle_info ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("VehicleStore.ListAll: %w", err)
	}
	defer rows.Close()

	var records []registry.VehicleRecord
	for rows.Next() {
		var rec registry.VehicleRecord
		if err := rows.Scan(&rec.ID, &rec.Plate, &rec.OwnerName, &rec.Phone, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("VehicleStore.ListAll scan: %w", err)
		}
		rec.CreatedAt = rec.CreatedAt.In(time.UTC)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("VehicleStore.ListAll rows: %w", err)
	}
	return records, nil
}
