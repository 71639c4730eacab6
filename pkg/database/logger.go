/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package database

import (
	"context"
	"errors"
	"time"

	glogger "gorm.io/gorm/logger"
	"gorm.io/gorm/utils"

	"github.com/Juice-Labs/borrow/pkg/logger"
)

// gormLogger feeds gorm's logging into pkg/logger.
type gormLogger struct {
	LogLevel                  glogger.LogLevel
	SlowThreshold             time.Duration
	IgnoreRecordNotFoundError bool
}

func NewLogger(config glogger.Config) glogger.Interface {
	return gormLogger{
		LogLevel:                  config.LogLevel,
		SlowThreshold:             config.SlowThreshold,
		IgnoreRecordNotFoundError: config.IgnoreRecordNotFoundError,
	}
}

func (l gormLogger) LogMode(level glogger.LogLevel) glogger.Interface {
	l.LogLevel = level
	return l
}

func (l gormLogger) Info(ctx context.Context, message string, data ...interface{}) {
	if l.LogLevel >= glogger.Info {
		logger.Infof(message, data...)
	}
}

func (l gormLogger) Warn(ctx context.Context, message string, data ...interface{}) {
	if l.LogLevel >= glogger.Warn {
		logger.Warningf(message, data...)
	}
}

func (l gormLogger) Error(ctx context.Context, message string, data ...interface{}) {
	if l.LogLevel >= glogger.Error {
		logger.Errorf(message, data...)
	}
}

func (l gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.LogLevel <= glogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	milliseconds := float64(elapsed.Nanoseconds()) / 1e6

	switch {
	case err != nil && l.LogLevel >= glogger.Error && (!errors.Is(err, glogger.ErrRecordNotFound) || !l.IgnoreRecordNotFoundError):
		sql, rows := fc()
		logger.Errorw("database: query failed", "caller", utils.FileWithLineNum(), "error", err, "ms", milliseconds, "rows", rows, "sql", sql)
	case elapsed > l.SlowThreshold && l.SlowThreshold != 0 && l.LogLevel >= glogger.Warn:
		sql, rows := fc()
		logger.Warningf("%s SLOW SQL >= %v %f %d %s", utils.FileWithLineNum(), l.SlowThreshold, milliseconds, rows, sql)
	case l.LogLevel == glogger.Info:
		sql, rows := fc()
		logger.Debugw("database: query", "caller", utils.FileWithLineNum(), "ms", milliseconds, "rows", rows, "sql", sql)
	}
}
