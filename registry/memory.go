package registry

import (
	"context"
	"sync"
	"time"
)

// MemoryRegistry is an in-process Registry used for offline runs and tests.
type MemoryRegistry struct {
	mu      sync.RWMutex
	records []VehicleRecord
	byPlate map[string]int
	now     func() time.Time
}

// NewMemoryRegistry returns an empty registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		byPlate: make(map[string]int),
		now:     time.Now,
	}
}

// Lookup implements Registry.
func (m *MemoryRegistry) Lookup(ctx context.Context, plate string) (VehicleRecord, error) {
	if err := ctx.Err(); err != nil {
		return VehicleRecord{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	idx, ok := m.byPlate[plate]
	if !ok {
		return VehicleRecord{}, ErrNotFound
	}
	return m.records[idx], nil
}

// Register implements Registry.
func (m *MemoryRegistry) Register(ctx context.Context, plate, ownerName, phone string) (VehicleRecord, error) {
	if err := ctx.Err(); err != nil {
		return VehicleRecord{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byPlate[plate]; ok {
		return VehicleRecord{}, ErrDuplicateKey
	}

	rec := VehicleRecord{
		ID:        int64(len(m.records) + 1),
		Plate:     plate,
		OwnerName: ownerName,
		Phone:     phone,
		CreatedAt: m.now().UTC(),
	}
	m.byPlate[plate] = len(m.records)
	m.records = append(m.records, rec)
	return rec, nil
}

// ListAll implements Registry.
func (m *MemoryRegistry) ListAll(ctx context.Context) ([]VehicleRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]VehicleRecord, len(m.records))
	copy(out, m.records)
	return out, nil
}
