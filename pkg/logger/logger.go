/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package logger

import (
	"flag"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
)

var (
	quiet       = flag.Bool("quiet", false, "Disables all logging output")
	logLevelArg = flag.String("log-level", "info", "Sets the maximum level of output [Fatal, Error, Warning, Info (Default), Debug]")
	logFile     = flag.String("log-file", "", "Writes the log to the given file instead of stderr")
	logFormat   = flag.String("log-format", "juice", "Set the format of the logging [juice, console, json]")

	logLevel = zap.NewAtomicLevel()

	mutex         sync.RWMutex
	logger        *zap.Logger        = zap.NewNop()
	sugaredLogger *zap.SugaredLogger = logger.Sugar()
	options       []zap.Option

	registerEncoder sync.Once
)

func AddOption(option zap.Option) {
	options = append(options, option)
}

// Configure builds the process logger from the command line flags. Until it
// is called every log call is discarded.
func Configure() error {
	var err error

	logLevel, err = zap.ParseAtomicLevel(strings.ToLower(strings.TrimSpace(*logLevelArg)))
	if err != nil {
		return err
	}

	registerEncoder.Do(func() {
		err = zap.RegisterEncoder("juice", NewJuiceEncoder)
	})
	if err != nil {
		return err
	}

	config := zap.NewDevelopmentConfig()
	config.Encoding = *logFormat
	config.Level = logLevel
	if *logFile != "" {
		config.OutputPaths = []string{
			*logFile,
		}
	}
	// Skip our logger api
	AddOption(zap.AddCallerSkip(1))

	var built *zap.Logger
	if *quiet {
		built = zap.NewNop()
	} else {
		built, err = config.Build(options...)
		if err != nil {
			return fmt.Errorf("failed to initialize logger, %w", err)
		}
	}

	set(built)
	return nil
}

// Replace swaps the process logger and returns a function restoring the
// previous one. The replacement should already skip one caller frame.
func Replace(replacement *zap.Logger) func() {
	mutex.RLock()
	previous := logger
	mutex.RUnlock()

	set(replacement)
	return func() {
		set(previous)
	}
}

func set(replacement *zap.Logger) {
	mutex.Lock()
	defer mutex.Unlock()

	logger = replacement
	sugaredLogger = replacement.Sugar()
}

func sugared() *zap.SugaredLogger {
	mutex.RLock()
	defer mutex.RUnlock()

	return sugaredLogger
}

func Close() {
	mutex.RLock()
	defer mutex.RUnlock()

	logger.Sync()
}

func Panic(v ...any) {
	sugared().Panic(v...)
}

func Error(v ...any) {
	sugared().Error(v...)
}

func Errorf(format string, v ...any) {
	sugared().Errorf(format, v...)
}

// Errorw logs with structured key/value pairs.
func Errorw(msg string, keysAndValues ...any) {
	sugared().Errorw(msg, keysAndValues...)
}

func Warning(v ...any) {
	sugared().Warn(v...)
}

func Warningf(format string, v ...any) {
	sugared().Warnf(format, v...)
}

func Info(v ...any) {
	sugared().Info(v...)
}

func Infof(format string, v ...any) {
	sugared().Infof(format, v...)
}

func Debugf(format string, v ...any) {
	sugared().Debugf(format, v...)
}

func Debugw(msg string, keysAndValues ...any) {
	sugared().Debugw(msg, keysAndValues...)
}
