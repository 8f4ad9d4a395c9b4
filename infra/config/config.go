package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application-level configuration.
type Config struct {
	ServerURL string // Wall server base URL, e.g. "https://wall.example.com"
	Token     string // Inline bearer token; takes precedence over TokenPath
	TokenPath string // Path to a file containing the access token
	WallID    string // Wall to open on startup (optional)
}

// Load reads configuration from a .env file (if present) and environment
// variables.
//
//	WALLTERM_SERVER      wall server base URL (required)
//	WALLTERM_TOKEN       bearer token value (optional)
//	WALLTERM_TOKEN_FILE  path to token file (default: ~/.config/wallterm/token)
//	WALLTERM_WALL        wall ID to open on startup (optional)
func Load() (Config, error) {
	// A missing .env is fine; env vars still apply.
	_ = godotenv.Load()

	server := os.Getenv("WALLTERM_SERVER")
	if server == "" {
		return Config{}, fmt.Errorf("WALLTERM_SERVER is required")
	}
	parsed, err := url.Parse(server)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return Config{}, fmt.Errorf("invalid WALLTERM_SERVER: must be an absolute URL")
	}
	switch parsed.Scheme {
	case "http", "https":
	default:
		return Config{}, fmt.Errorf("invalid WALLTERM_SERVER: scheme must be http or https")
	}
	server = strings.TrimRight(parsed.String(), "/")

	tokenPath := os.Getenv("WALLTERM_TOKEN_FILE")
	if tokenPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("cannot determine home directory: %w", err)
		}
		tokenPath = filepath.Join(home, ".config", "wallterm", "token")
	}

	return Config{
		ServerURL: server,
		Token:     strings.TrimSpace(os.Getenv("WALLTERM_TOKEN")),
		TokenPath: tokenPath,
		WallID:    strings.TrimSpace(os.Getenv("WALLTERM_WALL")),
	}, nil
}
