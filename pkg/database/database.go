/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package database

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"

	"github.com/Juice-Labs/borrow/pkg/errors"
	"github.com/Juice-Labs/borrow/pkg/slot"
)

const (
	DriverSqlite   = "sqlite"
	DriverPostgres = "postgres"
	// DriverPq is postgres through github.com/lib/pq instead of pgx.
	DriverPq    = "pq"
	DriverMysql = "mysql"
)

var (
	ErrUnknownDriver = errors.New("database: unknown driver")
	ErrOpen          = errors.New("database: failed to open")
)

type Config struct {
	Driver string
	Dsn    string

	MaxOpenConns    int
	ConnMaxIdleTime time.Duration
	SlowThreshold   time.Duration
}

// Database is a gorm connection pool that can be held by a slot.
type Database struct {
	id string
	db *gorm.DB
}

func dialector(config Config) (gorm.Dialector, error) {
	switch strings.ToLower(config.Driver) {
	case DriverSqlite, "":
		return sqlite.Open(config.Dsn), nil
	case DriverPostgres:
		return postgres.Open(config.Dsn), nil
	case DriverPq:
		return postgres.New(postgres.Config{
			DriverName: "postgres",
			DSN:        config.Dsn,
		}), nil
	case DriverMysql:
		return mysql.Open(config.Dsn), nil
	}

	return nil, ErrUnknownDriver.Wrapf("driver %q", config.Driver)
}

func Open(ctx context.Context, config Config) (*Database, error) {
	dialector, err := dialector(config)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: NewLogger(glogger.Config{
			LogLevel:      glogger.Warn,
			SlowThreshold: config.SlowThreshold,
		}),
	})
	if err != nil {
		return nil, ErrOpen.Wrap(err)
	}

	sqlDB, err := db.DB()
	if err == nil {
		if config.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(config.MaxOpenConns)
		}
		if config.ConnMaxIdleTime > 0 {
			sqlDB.SetConnMaxIdleTime(config.ConnMaxIdleTime)
		}

		err = sqlDB.PingContext(ctx)
		if err != nil {
			sqlDB.Close()
		}
	}

	if err != nil {
		return nil, ErrOpen.Wrap(err)
	}

	return &Database{
		id: uuid.NewString(),
		db: db,
	}, nil
}

// Factory opens a new Database per slot era.
func Factory(config Config) slot.Factory[*Database] {
	return func() (*Database, error) {
		return Open(context.Background(), config)
	}
}

// Id identifies this pool, a new pool gets a new id.
func (database *Database) Id() string {
	return database.id
}

func (database *Database) Gorm() *gorm.DB {
	return database.db
}

func (database *Database) Close() error {
	sqlDB, err := database.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}
