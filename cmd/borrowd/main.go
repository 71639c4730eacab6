/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package main

import (
	"flag"
	"os"
	"time"

	"github.com/Juice-Labs/borrow/cmd/borrowd/app"
	"github.com/Juice-Labs/borrow/cmd/internal/build"
	"github.com/Juice-Labs/borrow/pkg/appmain"
	"github.com/Juice-Labs/borrow/pkg/crypto"
	"github.com/Juice-Labs/borrow/pkg/database"
	"github.com/Juice-Labs/borrow/pkg/logger"
	"github.com/Juice-Labs/borrow/pkg/middleware"
	"github.com/Juice-Labs/borrow/pkg/sentry"
	"github.com/Juice-Labs/borrow/pkg/task"
)

var (
	address = flag.String("address", "0.0.0.0:43220", "The IP address and port to listen on")

	certFile     = flag.String("cert-file", "", "")
	keyFile      = flag.String("key-file", "", "")
	generateCert = flag.Bool("generate-cert", false, "Generates a certificate for https")

	idleTimeoutMs = flag.Int64("idle-timeout-ms", 30000, "Milliseconds an idle database is kept open, 0 keeps it open until the last release")
	ledgerLimit   = flag.Int("ledger-limit", 64, "Number of ended eras kept in the ledger")
	queryRate     = flag.Float64("query-rate", 0, "Queries per second accepted on /v1/query, 0 is unlimited")
	queryBurst    = flag.Int("query-burst", 10, "Queries accepted in a burst above -query-rate")

	databaseDriver  = flag.String("database-driver", database.DriverSqlite, "Database driver, one of sqlite, postgres, pq or mysql")
	dsn             = flag.String("dsn", "", "Database connection string, defaults to $BORROW_DSN")
	maxOpenConns    = flag.Int("max-open-conns", 0, "Maximum number of open connections per database, 0 is unlimited")
	connMaxIdleTime = flag.Duration("conn-max-idle-time", 0, "Maximum time a pooled connection may stay idle")
	slowThreshold   = flag.Duration("slow-query-threshold", 200*time.Millisecond, "Queries slower than this are logged")
)

func main() {
	appmain.Run(appmain.Config{
		Name:    "Borrow Daemon",
		Version: build.Version,
		SentryConfig: sentry.ClientOptions{
			Dsn:     os.Getenv("SENTRY_DSN"),
			Release: build.Version,
		},
	}, func(group task.Group) error {
		tlsConfig, err := crypto.TLSConfig(*certFile, *keyFile, *generateCert)
		if err != nil {
			return err
		}

		guard, err := middleware.EnsureValidToken()
		if err != nil {
			return err
		}

		connection := *dsn
		if connection == "" {
			connection = os.Getenv("BORROW_DSN")
		}
		if connection == "" && *databaseDriver == database.DriverSqlite {
			connection = "file::memory:?cache=shared"
		}

		service, err := app.NewService(app.Config{
			Address:     *address,
			TLSConfig:   tlsConfig,
			IdleTimeout: time.Duration(*idleTimeoutMs) * time.Millisecond,
			LedgerLimit: *ledgerLimit,
			Guard:       guard,
			QueryRate:   *queryRate,
			QueryBurst:  *queryBurst,
			Database: database.Config{
				Driver:          *databaseDriver,
				Dsn:             connection,
				MaxOpenConns:    *maxOpenConns,
				ConnMaxIdleTime: *connMaxIdleTime,
				SlowThreshold:   *slowThreshold,
			},
		})
		if err != nil {
			return err
		}

		if tlsConfig == nil {
			logger.Warning("TLS is disabled, data will be unencrypted")
		}

		group.Go("Borrow Service", service)
		return nil
	})
}
