// Package markerfile manages the on-disk markers an instance leaves for
// external discovery: a "port" file holding the decimal lock port and a
// "token" file holding the activation secret.
package markerfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	portFileName  = "port"
	tokenFileName = "token"

	// UnknownToken is the legacy value assumed when no token file exists.
	// Peers written before tokens were introduced sent it verbatim.
	UnknownToken = "-"
)

// Port is the marker file carrying the instance's lock port.
type Port struct {
	path string
}

// NewPort returns the port marker for the given directory.
func NewPort(dir string) *Port {
	return &Port{path: filepath.Join(dir, portFileName)}
}

// Write writes the port number as decimal UTF-8 bytes.
func (p *Port) Write(port int) error {
	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create marker directory: %w", err)
	}
	if err := os.WriteFile(p.path, []byte(strconv.Itoa(port)), 0644); err != nil {
		return fmt.Errorf("failed to write port marker: %w", err)
	}
	return nil
}

// Read reads the port number back.
func (p *Port) Read() (int, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return 0, fmt.Errorf("failed to read port marker: %w", err)
	}
	port, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid port in marker file: %w", err)
	}
	return port, nil
}

// Remove deletes the marker. A missing file is not an error.
func (p *Port) Remove() error {
	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove port marker: %w", err)
	}
	return nil
}

// Path returns the marker file path.
func (p *Port) Path() string {
	return p.path
}

// Token is the marker file carrying the activation secret.
type Token struct {
	path string
}

// NewToken returns the token marker for the given directory.
func NewToken(dir string) *Token {
	return &Token{path: filepath.Join(dir, tokenFileName)}
}

// Load reads the stored token. If the file is missing or unreadable it
// returns UnknownToken, matching what a peer without a token file expects.
func (t *Token) Load() string {
	data, err := os.ReadFile(t.path)
	if err != nil {
		return UnknownToken
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return UnknownToken
	}
	return token
}

// Store writes the token with owner-only permissions. The file is created
// 0600 from the start and moved into place atomically; the secret is never
// readable by other users, not even between write and chmod.
func (t *Token) Store(token string) error {
	dir := filepath.Dir(t.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create marker directory: %w", err)
	}

	// CreateTemp opens with 0600, so the restricted mode holds for the
	// file's whole lifetime.
	tmp, err := os.CreateTemp(dir, ".token-*")
	if err != nil {
		return fmt.Errorf("failed to create temp token file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.WriteString(token); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to sync token file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close token file: %w", err)
	}

	if err := os.Rename(tmpPath, t.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to move token file into place: %w", err)
	}
	return nil
}

// Remove deletes the marker. A missing file is not an error.
func (t *Token) Remove() error {
	if err := os.Remove(t.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove token marker: %w", err)
	}
	return nil
}

// Path returns the marker file path.
func (t *Token) Path() string {
	return t.path
}

// Exists checks if the token marker exists.
func (t *Token) Exists() bool {
	_, err := os.Stat(t.path)
	return !os.IsNotExist(err)
}
