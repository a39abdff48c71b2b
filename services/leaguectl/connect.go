package leaguectl

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/Patrick687/Survivor-Fantasy-Game-sub000/pkg/db"
	"github.com/Patrick687/Survivor-Fantasy-Game-sub000/services/audit"
	"github.com/Patrick687/Survivor-Fantasy-Game-sub000/services/league"
)

// PostgresConnector opens the league services directly on the database.
// Events are not published from the CLI.
func PostgresConnector(log zerolog.Logger) Connector {
	return func(ctx context.Context, dsn string) (*Backend, error) {
		pool, err := db.Open(ctx, dsn)
		if err != nil {
			return nil, err
		}

		orm, err := db.OpenORM(pool)
		if err != nil {
			pool.Close()
			return nil, err
		}

		services, err := league.New(league.NewORMStores(orm), league.WithLogger(log))
		if err != nil {
			pool.Close()
			return nil, err
		}

		auditStore, err := audit.NewStore(pool)
		if err != nil {
			pool.Close()
			return nil, err
		}

		return &Backend{
			Leagues: services.Leagues,
			Invites: services.Invites,
			Audit:   auditStore,
			Migrate: func(ctx context.Context) error { return db.Migrate(ctx, pool) },
			Close:   pool.Close,
		}, nil
	}
}
