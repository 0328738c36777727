package config

import (
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/romfetch/pkg/domain/types"
)

// Sentry holds error reporting configuration. Reporting is disabled when DSN is empty.
type Sentry struct {
	DSN         string `masq:"secret"`
	Environment string
}

// Flags returns CLI flags for Sentry configuration
func (c *Sentry) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "sentry-dsn",
			Usage:       "Sentry DSN for error reporting",
			Destination: &c.DSN,
			Sources:     cli.EnvVars("ROMFETCH_SENTRY_DSN"),
		},
		&cli.StringFlag{
			Name:        "sentry-env",
			Usage:       "Sentry environment",
			Value:       "development",
			Destination: &c.Environment,
			Sources:     cli.EnvVars("ROMFETCH_SENTRY_ENV"),
		},
	}
}

// Enabled reports whether a DSN is configured
func (c *Sentry) Enabled() bool {
	return c.DSN != ""
}

// Configure initializes the global Sentry client. It returns a flush function
// to be deferred by the caller.
func (c *Sentry) Configure() (func(), error) {
	if !c.Enabled() {
		return func() {}, nil
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         c.DSN,
		Environment: c.Environment,
		Release:     types.AppName + "@" + types.Version,
	}); err != nil {
		return nil, goerr.Wrap(err, "failed to initialize sentry", goerr.V("env", c.Environment))
	}

	return func() { sentry.Flush(2 * time.Second) }, nil
}
