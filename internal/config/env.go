package config

import "time"

// Duration wraps time.Duration for clearer type usage in Config.
type Duration = time.Duration

func positiveDuration(value, fallback time.Duration) time.Duration {
	if value <= 0 {
		return fallback
	}
	return value
}

func positiveInt(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
}
