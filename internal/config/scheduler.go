package config

import (
	"fmt"
	"os"
	"strconv"
)

// SchedulerConfig holds the round scheduling parameters.
type SchedulerConfig struct {
	IntervalDays int
}

// NewSchedulerConfig creates scheduler configuration from environment
// variables. It reads ROUND_INTERVAL_DAYS (default: 90).
func NewSchedulerConfig() (*SchedulerConfig, error) {
	intervalStr := os.Getenv("ROUND_INTERVAL_DAYS")
	if intervalStr == "" {
		intervalStr = "90" // default
	}

	interval, err := strconv.Atoi(intervalStr)
	if err != nil {
		return nil, fmt.Errorf("invalid ROUND_INTERVAL_DAYS: %v", err)
	}

	config := &SchedulerConfig{IntervalDays: interval}
	if err := config.normalize(); err != nil {
		return nil, err
	}
	return config, nil
}

// normalize validates the configuration.
func (c *SchedulerConfig) normalize() error {
	if c.IntervalDays < 1 {
		return fmt.Errorf("ROUND_INTERVAL_DAYS must be at least 1, got: %d", c.IntervalDays)
	}
	return nil
}
