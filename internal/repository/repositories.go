// Package repository selects the storage backend named by STORE_DRIVER.
package repository

import (
	"context"
	"fmt"

	"github.com/meetinghours/attendance-backend/internal/config"
	"github.com/meetinghours/attendance-backend/internal/domain/attendance"
	"github.com/meetinghours/attendance-backend/internal/domain/excuse"
	"github.com/meetinghours/attendance-backend/internal/domain/period"
	"github.com/meetinghours/attendance-backend/internal/domain/user"
	"github.com/meetinghours/attendance-backend/internal/domain/window"
	"github.com/meetinghours/attendance-backend/internal/pkg/database"
	"github.com/meetinghours/attendance-backend/internal/repository/memory"
	"github.com/meetinghours/attendance-backend/internal/repository/postgresql"
)

type Repositories struct {
	Tx       database.Transactor
	Users    user.UserRepository
	Windows  window.WindowRepository
	Periods  period.PeriodRepository
	Records  attendance.RecordRepository
	Excuses  excuse.ExcuseRepository
	Requests excuse.RequestRepository

	// DB is nil for the memory driver.
	DB *database.DB
}

func (r *Repositories) Close() {
	if r.DB != nil {
		r.DB.Close()
	}
}

// Open connects the configured backend. With migrate set the PostgreSQL
// schema is applied before the repositories are returned.
func Open(ctx context.Context, cfg config.DatabaseConfig, dsn string, migrate bool) (*Repositories, error) {
	switch cfg.Driver {
	case config.StoreDriverMemory:
		return NewMemory(), nil
	case config.StoreDriverPostgres:
		db, err := database.NewPostgreSQLDB(dsn, database.PoolConfig{MaxConns: cfg.MaxConns, MinConns: cfg.MinConns})
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		if migrate {
			if err := postgresql.Migrate(ctx, db); err != nil {
				db.Close()
				return nil, err
			}
		}
		return NewPostgreSQL(db), nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
	}
}

func NewMemory() *Repositories {
	store := memory.NewStore()
	return &Repositories{
		Tx:       memory.NewTransactor(store),
		Users:    memory.NewUserRepository(store),
		Windows:  memory.NewWindowRepository(store),
		Periods:  memory.NewPeriodRepository(store),
		Records:  memory.NewRecordRepository(store),
		Excuses:  memory.NewExcuseRepository(store),
		Requests: memory.NewRequestRepository(store),
	}
}

func NewPostgreSQL(db *database.DB) *Repositories {
	return &Repositories{
		Tx:       postgresql.NewTransactor(db),
		Users:    postgresql.NewUserRepository(db),
		Windows:  postgresql.NewWindowRepository(db),
		Periods:  postgresql.NewPeriodRepository(db),
		Records:  postgresql.NewRecordRepository(db),
		Excuses:  postgresql.NewExcuseRepository(db),
		Requests: postgresql.NewRequestRepository(db),
		DB:       db,
	}
}
