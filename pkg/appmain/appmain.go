/*
 *  Copyright (c) 2023 Juice Technologies, Inc. All Rights Reserved.
 */
package appmain

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Juice-Labs/borrow/pkg/logger"
	"github.com/Juice-Labs/borrow/pkg/sentry"
	"github.com/Juice-Labs/borrow/pkg/task"
)

type Config struct {
	Name    string
	Version string

	// EnvFiles are loaded before flags are parsed. Missing files are ignored.
	EnvFiles []string

	SentryConfig sentry.ClientOptions
}

const (
	ExitSuccess = 0
	ExitFailure = 1
)

var (
	printVersion = flag.Bool("version", false, "Prints the version and exits")
)

// LoadEnv loads the given .env files, or ".env" when none are given, without
// overriding variables that are already set.
func LoadEnv(files ...string) []error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	var errs []error
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !os.IsNotExist(err) {
			errs = append(errs, err)
		}
	}

	return errs
}

func Run(config Config, logic task.TaskFn) {
	envErrs := LoadEnv(config.EnvFiles...)

	flag.Parse()

	var err error

	if *printVersion {
		fmt.Fprintln(os.Stdout, config.Version)
		os.Exit(ExitSuccess)
	}

	if err = sentry.Initialize(config.SentryConfig); err == nil {
		defer sentry.Close()
		err = logger.Configure()
		if err == nil {
			defer logger.Close()
			logger.Info(config.Name, ", v", config.Version)

			for _, envErr := range envErrs {
				logger.Warningf("Could not load env file, %v", envErr)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			taskManager := task.NewTaskManager(ctx)
			taskManager.GoFn("AppMain", logic)
			err = taskManager.Wait()
			if err != nil {
				logger.Error(err)
				sentry.CaptureError(err)
			}
		}
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(ExitFailure)
	}
}
