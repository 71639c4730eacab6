/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package app

import (
	"crypto/tls"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Juice-Labs/borrow/pkg/database"
	"github.com/Juice-Labs/borrow/pkg/ledger"
	"github.com/Juice-Labs/borrow/pkg/logger"
	"github.com/Juice-Labs/borrow/pkg/middleware"
	"github.com/Juice-Labs/borrow/pkg/server"
	"github.com/Juice-Labs/borrow/pkg/slot"
	slotprometheus "github.com/Juice-Labs/borrow/pkg/slot/prometheus"
	"github.com/Juice-Labs/borrow/pkg/task"
)

const (
	SlotName = "database"

	// AdminScope is required on the token for endpoints that change the slot.
	AdminScope = "admin:slot"
)

type Config struct {
	Address   string
	TLSConfig *tls.Config

	Database    database.Config
	IdleTimeout time.Duration
	LedgerLimit int

	// Guard wraps the administrative endpoints. Nil leaves them open.
	Guard middleware.Middleware

	// QueryRate limits /v1/query, in requests per second. Zero disables it.
	QueryRate  float64
	QueryBurst int
}

// Service serves a single shared database through a slot.
type Service struct {
	Slot     *slot.Slot[*database.Database]
	Ledger   *ledger.Ledger
	Metrics  *slotprometheus.Collector
	Registry *prometheus.Registry
	Server   *server.Server

	guard      middleware.Middleware
	queryLimit middleware.Middleware
}

func NewService(config Config) (*Service, error) {
	server, err := server.NewServer(config.Address, config.TLSConfig)
	if err != nil {
		return nil, err
	}

	ledger, err := ledger.New(config.LedgerLimit)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	metrics, err := slotprometheus.Register(registry)
	if err != nil {
		return nil, err
	}

	guard := config.Guard
	if guard == nil {
		guard = func(next http.Handler) http.Handler { return next }
	}

	service := &Service{
		Slot: slot.New(
			slot.WithName[*database.Database](SlotName),
			slot.WithFactory(database.Factory(config.Database)),
			slot.WithTimeout[*database.Database](config.IdleTimeout),
			slot.WithObserver[*database.Database](metrics),
			slot.WithObserver[*database.Database](ledger),
		),
		Ledger:     ledger,
		Metrics:    metrics,
		Registry:   registry,
		Server:     server,
		guard:      guard,
		queryLimit: middleware.RateLimit(config.QueryRate, config.QueryBurst),
	}

	service.initializeEndpoints()

	return service, nil
}

// Run serves until the group is cancelled, then closes the database if one is
// still open.
func (service *Service) Run(group task.Group) error {
	err := service.Server.Run(group)
	if err != nil {
		return err
	}

	group.GoFn("Borrow Slot Close", func(group task.Group) error {
		<-group.Ctx().Done()

		stats := service.Slot.Stats()
		if stats.Live {
			logger.Infof("Closing database era %d with %d holders", stats.Era, stats.Active)
		}

		return service.Slot.Close()
	})

	return nil
}
