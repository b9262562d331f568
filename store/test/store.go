// Package teststore spins up throwaway SQLite-backed stores for tests.
package teststore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stan0424/calendar-app/internal/profile"
	"github.com/stan0424/calendar-app/store"
	"github.com/stan0424/calendar-app/store/db"
)

// NewTestingStore creates a migrated store over a temporary SQLite file.
// The store is closed automatically when the test finishes.
func NewTestingStore(ctx context.Context, t *testing.T) *store.Store {
	t.Helper()

	p := &profile.Profile{
		Mode:   "dev",
		Driver: "sqlite",
		Data:   t.TempDir(),
	}
	p.DSN = filepath.Join(p.Data, "calendar_test.db")

	driver, err := db.NewDBDriver(p)
	require.NoError(t, err)

	s := store.New(driver, p)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Migrate(ctx))
	return s
}
