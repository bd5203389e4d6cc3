package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const lockFile = ".studymatch.lock"

// DefaultLockTimeout bounds how long a writer waits for the output directory.
const DefaultLockTimeout = 10 * time.Second

// Lock takes the exclusive lock of an output directory, creating the
// directory if needed. Call the returned func to release it.
func Lock(dir string, timeout time.Duration) (func(), error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return func() {}, fmt.Errorf("cannot create output dir %s: %w", dir, err)
	}
	lockPath := filepath.Join(dir, lockFile)
	l := flock.New(lockPath)
	deadline := time.Now().Add(timeout)
	for {
		locked, err := l.TryLock()
		if err != nil {
			return func() {}, fmt.Errorf("cannot acquire output lock: %w", err)
		}
		if locked {
			return func() { _ = l.Unlock() }, nil
		}
		if time.Now().After(deadline) {
			return func() {}, fmt.Errorf("another run is writing %s (lock: %s)", dir, lockPath)
		}
		time.Sleep(100 * time.Millisecond)
	}
}
