package cli

import (
	"context"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/wattrec/pkg/repository"
	"github.com/m-mizutani/wattrec/pkg/stable"
	"github.com/m-mizutani/wattrec/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// config holds configuration values
type config struct {
	dataPath string
	logLevel string
}

// globalFlags returns common flags used across commands with destination config
func globalFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "data",
			Aliases:     []string{"f"},
			Usage:       "Path to the durable pool file",
			Value:       "wattrec.db",
			Sources:     cli.EnvVars("WATTREC_DATA"),
			Destination: &cfg.dataPath,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Sources:     cli.EnvVars("WATTREC_LOG_LEVEL"),
			Destination: &cfg.logLevel,
		},
	}
}

// loggerContext builds the logger from config and attaches it to the context
func (cfg *config) loggerContext(ctx context.Context) context.Context {
	logger := logging.New(cfg.logLevel, os.Stderr)
	logging.SetDefault(logger)
	return logging.With(ctx, logger)
}

// openStore opens the pool file and builds the counter and the record
// repository on their segments. The returned closer releases the pool.
func (cfg *config) openStore() (repository.Repository, *stable.Counter, func() error, error) {
	if cfg.dataPath == "" {
		return nil, nil, nil, goerr.New("data file path is required")
	}

	pool, err := stable.Open(cfg.dataPath)
	if err != nil {
		return nil, nil, nil, goerr.Wrap(err, "failed to open pool",
			goerr.V("path", cfg.dataPath))
	}

	counter, err := stable.NewCounter(pool.Segment(stable.SegmentCounter))
	if err != nil {
		_ = pool.Close()
		return nil, nil, nil, goerr.Wrap(err, "failed to open id counter")
	}

	repo, err := repository.New(pool)
	if err != nil {
		_ = pool.Close()
		return nil, nil, nil, goerr.Wrap(err, "failed to open record store")
	}

	return repo, counter, pool.Close, nil
}
