package store

import (
	"time"

	"github.com/stan0424/calendar-app/internal/profile"
	"github.com/stan0424/calendar-app/store/cache"
)

// RowStatus is the status of a row.
type RowStatus string

const (
	// Normal is the status for a normal row.
	Normal RowStatus = "NORMAL"
	// Archived is the status for an archived row.
	Archived RowStatus = "ARCHIVED"
)

func (s RowStatus) String() string {
	return string(s)
}

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver

	// eventCache caches events by uid.
	eventCache *cache.Cache
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	cacheConfig := cache.Config{
		DefaultTTL:      10 * time.Minute,
		CleanupInterval: 5 * time.Minute,
		MaxItems:        1000,
	}

	return &Store{
		driver:     driver,
		profile:    profile,
		eventCache: cache.New(cacheConfig),
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	s.eventCache.Close()
	return s.driver.Close()
}
