// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a directory of plain-text files.
// Each file holds one secret: the filename is the key name and the trimmed
// contents are the value. Known key files back configuration keys whose
// environment variables are unset.
//
// Supported key files: gemini-api-key, smtp-password, smtp-user.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultDir is the secrets directory used when none is given.
const DefaultDir = ".secrets/"

// configKeys maps key files to the configuration keys they provide.
var configKeys = map[string]string{
	"gemini-api-key": "ai.api_key",
	"smtp-password":  "smtp.password",
	"smtp-user":      "smtp.user",
}

// Set is the result of reading a secrets directory.
type Set struct {
	// Values maps key file names to their trimmed contents.
	Values map[string]string

	// Unreadable lists files that exist but could not be read.
	Unreadable []string
}

// Load reads all files in dir. A missing directory is not an error and
// yields an empty Set. Unreadable files are recorded and skipped.
func Load(dir string) (Set, error) {
	set := Set{Values: map[string]string{}}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return set, nil
		}
		return Set{}, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			set.Unreadable = append(set.Unreadable, name)
			continue
		}

		if value := strings.TrimSpace(string(data)); value != "" {
			set.Values[name] = value
		}
	}

	return set, nil
}

// Keys returns the loaded key file names in sorted order.
func (s Set) Keys() []string {
	keys := make([]string, 0, len(s.Values))
	for k := range s.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ConfigDefaults returns configuration keys backed by known key files.
// Unknown files are ignored.
func (s Set) ConfigDefaults() map[string]string {
	out := make(map[string]string)
	for file, key := range configKeys {
		if v, ok := s.Values[file]; ok {
			out[key] = v
		}
	}
	return out
}
