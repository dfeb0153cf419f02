package test

import (
	"os"
	"strings"
	"testing"
)

// ClearEnvPrefix removes every environment variable starting with prefix,
// now and again when the test finishes.
func ClearEnvPrefix(t *testing.T, prefix string) {
	t.Helper()

	clearEnvPrefix(prefix)
	t.Cleanup(func() {
		clearEnvPrefix(prefix)
	})
}

func clearEnvPrefix(prefix string) {
	for _, kv := range os.Environ() {
		if name := strings.SplitN(kv, "=", 2)[0]; strings.HasPrefix(name, prefix) {
			os.Unsetenv(name)
		}
	}
}
