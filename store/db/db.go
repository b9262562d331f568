package db

import (
	"github.com/pkg/errors"

	"github.com/stan0424/calendar-app/internal/profile"
	"github.com/stan0424/calendar-app/store"
	"github.com/stan0424/calendar-app/store/db/postgres"
	"github.com/stan0424/calendar-app/store/db/sqlite"
)

// NewDBDriver creates new db driver based on profile.
// SQLite is the default for single-box deployments; PostgreSQL is available
// for shared installs.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	var driver store.Driver
	var err error

	switch profile.Driver {
	case "sqlite":
		driver, err = sqlite.NewDB(profile)
	case "postgres":
		driver, err = postgres.NewDB(profile)
	default:
		return nil, errors.Errorf("unknown db driver: %s (only 'sqlite' and 'postgres' are supported)", profile.Driver)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create db driver")
	}
	return driver, nil
}
