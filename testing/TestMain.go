// Package testing switches the process into test mode when imported by a
// test binary.
package testing

import (
	"os"
	stdtesting "testing"
)

var defaults = map[string]string{
	"ODYSSEY_TEST_MODE": "1",
	"APP_ENV":           "test",
	"LOG_LEVEL":         "error",
}

func init() {
	for key, value := range defaults {
		if _, ok := os.LookupEnv(key); !ok || key == "ODYSSEY_TEST_MODE" {
			_ = os.Setenv(key, value)
		}
	}
}

// TestMain runs m after init has applied the test defaults.
func TestMain(m *stdtesting.M) {
	os.Exit(m.Run())
}
