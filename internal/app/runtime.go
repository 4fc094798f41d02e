package app

import (
	"log/slog"
	"os"
)

// TestModeEnv is set to "1" by the shared testing package.
const TestModeEnv = "ODYSSEY_TEST_MODE"

// InTestMode reports whether binaries should skip connecting to Postgres,
// Redis and the network.
func InTestMode() bool {
	return os.Getenv(TestModeEnv) == "1"
}

// SkipStartup reports whether binary must return before touching external
// services and logs the reason when it does.
func SkipStartup(binary string) bool {
	if !InTestMode() {
		return false
	}
	slog.Default().Info("test mode detected, skipping startup", slog.String("binary", binary))
	return true
}
