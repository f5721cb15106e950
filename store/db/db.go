package db

import (
	"github.com/pkg/errors"

	"github.com/curiocodex/curiocodex/internal/profile"
	"github.com/curiocodex/curiocodex/store"
	"github.com/curiocodex/curiocodex/store/db/postgres"
	"github.com/curiocodex/curiocodex/store/db/sqlite"
)

// NewDBDriver creates new db driver based on profile.
//
// SQLite is the default for development and demo installs; PostgreSQL is
// the production driver and the only one that can host the pgvector index.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	var driver store.Driver
	var err error

	switch profile.Driver {
	case "sqlite":
		driver, err = sqlite.NewDB(profile)
	case "postgres":
		driver, err = postgres.NewDB(profile)
	default:
		return nil, errors.Errorf("unknown db driver %q: only 'postgres' and 'sqlite' are supported", profile.Driver)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create db driver")
	}
	return driver, nil
}
