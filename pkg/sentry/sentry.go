/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package sentry

import (
	"fmt"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Juice-Labs/borrow/pkg/logger"
)

var (
	SentryDsn = ""
)

type ClientOptions = sentry.ClientOptions

// Initialize starts sentry when a DSN is available from config, SENTRY_DSN or
// the build time SentryDsn, and forwards error logs as breadcrumbs. Without a
// DSN it does nothing.
func Initialize(config sentry.ClientOptions) error {
	if config.Dsn == "" {
		config.Dsn = os.Getenv("SENTRY_DSN")
		if config.Dsn == "" {
			config.Dsn = SentryDsn
		}
	}

	if config.Dsn == "" {
		return nil
	}

	err := sentry.Init(config)
	if err == nil {
		logger.AddOption(zap.Hooks(breadcrumb))
	}

	return err
}

func breadcrumb(entry zapcore.Entry) error {
	if entry.Level >= zapcore.ErrorLevel {
		sentry.AddBreadcrumb(&sentry.Breadcrumb{
			Type:      "error",
			Category:  "error",
			Level:     sentry.LevelError,
			Message:   fmt.Sprintf("%s %s", entry.Caller.TrimmedPath(), entry.Message),
			Timestamp: entry.Time,
		})
	}
	return nil
}

func Enabled() bool {
	return sentry.CurrentHub().Client() != nil
}

// CaptureError reports err when sentry is enabled.
func CaptureError(err error) {
	if err != nil && Enabled() {
		sentry.CaptureException(err)
	}
}

// Close flushes pending events. Deferred from main it also reports a panic
// before re-raising it.
func Close() {
	if err := recover(); err != nil {
		sentry.CurrentHub().Recover(err)
		sentry.Flush(2 * time.Second)
		panic(err)
	}
	sentry.Flush(2 * time.Second)
}
