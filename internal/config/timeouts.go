package config

import (
	"os"
	"strconv"
	"time"
)

// Timeouts holds all configurable timeout values.
// These values can be customized via environment variables.
type Timeouts struct {
	PollInterval      time.Duration // Delay between operation status reads
	Request           time.Duration // Overall deadline for one command, 0 for none
	Delete            time.Duration // Deadline for hcloud deletes retried while locked
	RetryMaxAttempts  int           // Maximum number of retry attempts for locked resources
	RetryInitialDelay time.Duration // Initial delay between retries
}

// LoadTimeouts loads timeout configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - GKECTL_POLL_INTERVAL (default: 2s)
//   - GKECTL_REQUEST_TIMEOUT (default: none)
//   - GKECTL_TIMEOUT_DELETE (default: 5m)
//   - GKECTL_RETRY_MAX_ATTEMPTS (default: 5)
//   - GKECTL_RETRY_INITIAL_DELAY (default: 1s)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		PollInterval:      parseDuration("GKECTL_POLL_INTERVAL", 2*time.Second),
		Request:           parseDuration("GKECTL_REQUEST_TIMEOUT", 0),
		Delete:            parseDuration("GKECTL_TIMEOUT_DELETE", 5*time.Minute),
		RetryMaxAttempts:  parseInt("GKECTL_RETRY_MAX_ATTEMPTS", 5),
		RetryInitialDelay: parseDuration("GKECTL_RETRY_INITIAL_DELAY", 1*time.Second),
	}
}

// TestTimeouts returns short timeouts for tests.
func TestTimeouts() *Timeouts {
	return &Timeouts{
		PollInterval:      time.Millisecond,
		Delete:            5 * time.Second,
		RetryMaxAttempts:  2,
		RetryInitialDelay: time.Millisecond,
	}
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil || d < 0 {
		return defaultVal
	}

	return d
}

// parseInt parses an integer from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return i
}
