package scheduler

import "time"

// Config controls sweep intervals and grace periods.
type Config struct {
	RunInterval time.Duration

	// OverdueGrace is how long past the due date an open invoice may sit
	// before the sweep marks it overdue.
	OverdueGrace time.Duration

	// PastDueLapse is how long an agreement may stay past_due before the
	// sweep cancels it.
	PastDueLapse time.Duration

	JobTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		RunInterval:  time.Hour,
		OverdueGrace: 24 * time.Hour,
		PastDueLapse: 14 * 24 * time.Hour,
		JobTimeout:   30 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.OverdueGrace <= 0 {
		c.OverdueGrace = defaults.OverdueGrace
	}
	if c.PastDueLapse <= 0 {
		c.PastDueLapse = defaults.PastDueLapse
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = defaults.JobTimeout
	}
	return c
}

func ProvideConfig() Config {
	return DefaultConfig()
}
