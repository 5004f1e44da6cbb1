package config

import (
	"time"

	"github.com/urfave/cli/v3"
)

// Gate holds build gate evaluation configuration
type Gate struct {
	LookupAttempts int64
	LookupDelay    time.Duration
}

// Flags returns CLI flags for gate configuration
func (c *Gate) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.Int64Flag{
			Name:        "lookup-attempts",
			Usage:       "Release lookup attempts before the fail-open fallback",
			Value:       3,
			Destination: &c.LookupAttempts,
			Sources:     cli.EnvVars("BUILDGATE_LOOKUP_ATTEMPTS"),
		},
		&cli.DurationFlag{
			Name:        "lookup-delay",
			Usage:       "Delay between release lookup attempts",
			Value:       10 * time.Second,
			Destination: &c.LookupDelay,
			Sources:     cli.EnvVars("BUILDGATE_LOOKUP_DELAY"),
		},
	}
}
