package app

import (
	"bytes"
	"os"
	"sync"
	"testing"

	"github.com/vk/depends/internal/config"
	"github.com/vk/depends/internal/registry"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// SetupAppTest creates a new app instance for system testing. Logs are
// captured at debug level and dumped when DEPENDS_TEST_LOGS is "true".
func SetupAppTest(t *testing.T, cfg *Config, loader config.Loader, modules ...registry.Module) (*App, *SafeBuffer) {
	t.Helper()

	logBuffer := &SafeBuffer{}
	cfg.Log.Level = "debug"
	testApp := NewApp(logBuffer, cfg, loader, modules...)

	t.Cleanup(func() {
		if os.Getenv("DEPENDS_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, logBuffer
}
