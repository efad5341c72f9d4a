// Package portdiscovery implements Component I: file-based rendezvous
// between cideldilld and the debuggee-side proxy/CLI. The server writes
// its configured control-plane port to a well-known file, and clients
// read it back. FindFreePort is available, but the server does not call
// it.
package portdiscovery

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// FilePath returns the path to the port discovery file, honoring the
// same override order the original client/server implementations used:
// CIDELDILL_PORT_FILE (exact file path), then CIDELDILL_HOME (a
// directory, with "port" appended), then ~/.cideldill/port.
func FilePath() (string, error) {
	if f := os.Getenv("CIDELDILL_PORT_FILE"); f != "" {
		return expand(f), nil
	}
	if d := os.Getenv("CIDELDILL_HOME"); d != "" {
		return filepath.Join(expand(d), "port"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("portdiscovery: resolve home directory: %w", err)
	}
	return filepath.Join(home, ".cideldill", "port"), nil
}

func expand(path string) string {
	if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
		return path
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

// FindFreePort asks the OS for an unused TCP port on loopback.
func FindFreePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, fmt.Errorf("portdiscovery: find free port: %w", err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

// WritePort writes port to the discovery file, creating its parent
// directory if necessary. Called by cideldilld once it's bound and
// listening.
func WritePort(port int) error {
	path, err := FilePath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("portdiscovery: create directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(strconv.Itoa(port)), 0o644); err != nil {
		return fmt.Errorf("portdiscovery: write port file: %w", err)
	}
	return nil
}

// ReadPort reads the server's port from the discovery file. It returns
// ok=false (no error) when the file is absent, unreadable, or holds a
// value outside the valid TCP port range — discovery is advisory, so
// callers fall back to their own default rather than failing hard.
func ReadPort() (port int, ok bool) {
	path, err := FilePath()
	if err != nil {
		return 0, false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, false
	}
	if n < 1 || n > 65535 {
		return 0, false
	}
	return n, true
}

// RemovePort deletes the discovery file, ignoring a not-exist error.
// Called by cideldilld on graceful shutdown so a stale port never
// outlives the process that wrote it.
func RemovePort() error {
	path, err := FilePath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("portdiscovery: remove port file: %w", err)
	}
	return nil
}
