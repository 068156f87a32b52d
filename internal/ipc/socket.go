package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrAlreadyRunning is returned by Acquire when a responsive session already
// owns the socket.
var ErrAlreadyRunning = errors.New("benedict session already running")

// RuntimeSocketPath resolves the per-user session socket location.
func RuntimeSocketPath() (string, error) {
	dir := strings.TrimSpace(os.Getenv("XDG_RUNTIME_DIR"))
	if dir == "" {
		return "", errors.New("XDG_RUNTIME_DIR is not set")
	}
	return filepath.Join(dir, "benedict.sock"), nil
}

// Acquire binds the session socket. When the path is already bound it probes
// the incumbent: a live owner wins, a dead socket file is unlinked and the
// bind retried. An inconclusive probe leaves the file alone, since unlinking
// under a slow-but-alive owner would orphan that session.
func Acquire(ctx context.Context, path string, probeTimeout time.Duration, retries int) (net.Listener, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("ensure runtime socket dir: %w", err)
	}

	attempt := 0
	for {
		listener, err := net.Listen("unix", path)
		switch {
		case err == nil:
			_ = os.Chmod(path, 0o600)
			return listener, nil
		case !isAddrInUse(err):
			return nil, fmt.Errorf("listen unix %s: %w", path, err)
		}

		alive, probeErr := Probe(ctx, path, probeTimeout)
		if probeErr != nil {
			return nil, fmt.Errorf("probe existing socket %s: %w", path, probeErr)
		}
		if alive {
			return nil, ErrAlreadyRunning
		}

		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("remove stale socket %s: %w", path, err)
		}

		attempt++
		if attempt > retries {
			return nil, fmt.Errorf("failed to acquire socket %s after %d retries", path, retries)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt*25) * time.Millisecond):
		}
	}
}

func isAddrInUse(err error) bool {
	return err != nil && strings.Contains(err.Error(), "address already in use")
}
