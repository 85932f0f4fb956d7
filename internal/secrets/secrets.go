// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API credentials from a directory of plain-text files
// and from .env files. Each file in the secrets directory represents one
// secret: the filename is the key name and the file contents (trimmed) are
// the value.
//
// Supported keys: digikey-client-id, digikey-client-secret, anthropic-api-key.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Secret key names.
const (
	DigiKeyClientID     = "digikey-client-id"
	DigiKeyClientSecret = "digikey-client-secret"
	AnthropicAPIKey     = "anthropic-api-key"
)

// envNames maps each secret key to the environment variable that can supply it.
var envNames = map[string]string{
	DigiKeyClientID:     "DIGIKEY_CLIENT_ID",
	DigiKeyClientSecret: "DIGIKEY_CLIENT_SECRET",
	AnthropicAPIKey:     "ANTHROPIC_API_KEY",
}

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory is not an error; Load returns an empty map.
// Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// LoadEnvFiles reads KEY=VALUE pairs from the given .env files without
// touching the process environment. Missing files are skipped; later files
// override earlier ones.
func LoadEnvFiles(paths ...string) (map[string]string, error) {
	out := make(map[string]string)
	for _, p := range paths {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			continue
		}
		vals, err := godotenv.Read(p)
		if err != nil {
			return nil, fmt.Errorf("parsing env file %s: %w", p, err)
		}
		for k, v := range vals {
			out[k] = v
		}
	}
	return out, nil
}

// Set is the merged view of every credential source.
type Set struct {
	files map[string]string
	env   map[string]string
}

// NewSet combines secrets-directory values with .env values. Lookups
// prefer the secrets directory, then the .env files, then the process
// environment.
func NewSet(files, env map[string]string) Set {
	return Set{files: files, env: env}
}

// Get returns the value for key, or "" when no source has it.
func (s Set) Get(key string) string {
	if v := s.files[key]; v != "" {
		return v
	}
	name, ok := envNames[key]
	if !ok {
		return ""
	}
	if v := strings.TrimSpace(s.env[name]); v != "" {
		return v
	}
	return strings.TrimSpace(os.Getenv(name))
}

// Keys returns the keys present in the secrets directory.
func (s Set) Keys() []string {
	keys := make([]string, 0, len(s.files))
	for k := range s.files {
		keys = append(keys, k)
	}
	return keys
}
