package auth

import (
	"fmt"
	"os"
	"strings"
)

// TokenProvider supplies the bearer token for wall server requests.
// How the token got onto disk is outside this client's concern.
type TokenProvider interface {
	AccessToken() (string, error)
}

// FileTokenProvider reads the token from a file on every call, so a rotated
// token is picked up without restarting.
type FileTokenProvider struct {
	path string
}

// NewFileTokenProvider creates a TokenProvider backed by path.
func NewFileTokenProvider(path string) *FileTokenProvider {
	return &FileTokenProvider{path: path}
}

// AccessToken reads and returns the token, trimming whitespace.
func (f *FileTokenProvider) AccessToken() (string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return "", fmt.Errorf("reading token from %s: %w", f.path, err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", fmt.Errorf("token file %s is empty", f.path)
	}
	return token, nil
}

// StaticTokenProvider returns a fixed token; used by tests and by the
// WALLTERM_TOKEN env override.
type StaticTokenProvider string

// AccessToken returns the fixed token.
func (s StaticTokenProvider) AccessToken() (string, error) {
	if s == "" {
		return "", fmt.Errorf("empty token")
	}
	return string(s), nil
}
