package registry

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePlate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "ABC123", want: "ABC123"},
		{in: "  abc 123\n", want: "ABC123"},
		{in: "mh 12\tab 1234", want: "MH12AB1234"},
		{in: "KA-01", want: "KA-01"},
		{in: "   ", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePlate(tt.in))
		})
	}
}

func TestMemoryRegistry_LookupAndRegister(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRegistry()

	_, err := r.Lookup(ctx, "ABC123")
	assert.ErrorIs(t, err, ErrNotFound)

	rec, err := r.Register(ctx, "ABC123", "Jane", "555-1111")
	require.NoError(t, err)
	assert.Equal(t, int64(1), rec.ID)
	assert.False(t, rec.CreatedAt.IsZero())

	got, err := r.Lookup(ctx, "ABC123")
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestMemoryRegistry_DuplicatePlate(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRegistry()

	_, err := r.Register(ctx, "XYZ999", "John", "555-2222")
	require.NoError(t, err)

	_, err = r.Register(ctx, "XYZ999", "Other", "555-0000")
	assert.ErrorIs(t, err, ErrDuplicateKey)

	all, err := r.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "John", all[0].OwnerName)
}

func TestMemoryRegistry_ConcurrentRegisterKeepsPlatesUnique(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRegistry()

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := r.Register(ctx, fmt.Sprintf("PLATE%d", i%5), "owner", "")
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, ErrDuplicateKey)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 5, succeeded)
	all, err := r.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestMemoryRegistry_ListAllOrderAndCopy(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRegistry()

	empty, err := r.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	for _, p := range []string{"C3", "A1", "B2"} {
		_, err := r.Register(ctx, p, "o", "p")
		require.NoError(t, err)
	}

	all, err := r.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{all[0].ID, all[1].ID, all[2].ID})
	assert.Equal(t, "C3", all[0].Plate)

	all[0].OwnerName = "mutated"
	again, _ := r.ListAll(ctx)
	assert.Equal(t, "o", again[0].OwnerName)
}

func TestMemoryRegistry_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewMemoryRegistry()
	_, err := r.Register(ctx, "A", "b", "c")
	assert.ErrorIs(t, err, context.Canceled)
	_, err = r.Lookup(ctx, "A")
	assert.ErrorIs(t, err, context.Canceled)
}
