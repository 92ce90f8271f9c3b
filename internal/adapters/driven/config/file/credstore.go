// Package file provides the TOML-backed credentials store.
// Credentials live in a file within the indexfeed config directory.
package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/corvid-labs/indexfeed-cli/internal/core/domain"
	"github.com/corvid-labs/indexfeed-cli/internal/core/ports/driven"
)

// Ensure CredentialsStore implements the interface.
var _ driven.CredentialsStore = (*CredentialsStore)(nil)

// DefaultFileName is the credentials file inside the config directory.
const DefaultFileName = "credentials.toml"

// credentialsFile is the TOML schema of the credentials file.
type credentialsFile struct {
	URL          string  `toml:"url"`
	APIKey       string  `toml:"apikey"`
	PartitionID  string  `toml:"partition_id,omitempty"`
	CollectionID string  `toml:"collection_id,omitempty"`
	QPS          float64 `toml:"qps,omitempty"`
}

// CredentialsStore loads index service credentials from a TOML file.
type CredentialsStore struct {
	filePath string
}

// NewCredentialsStore creates a store reading from the given path.
// If path is empty, defaults to ~/.indexfeed/credentials.toml.
func NewCredentialsStore(path string) (*CredentialsStore, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir := filepath.Join(home, ".indexfeed")
		if err := os.MkdirAll(configDir, 0700); err != nil {
			return nil, err
		}
		path = filepath.Join(configDir, DefaultFileName)
	}

	return &CredentialsStore{filePath: path}, nil
}

// Load reads and validates the stored credentials.
func (s *CredentialsStore) Load() (*domain.Credentials, error) {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s does not exist", domain.ErrCredentialsMissing, s.filePath)
		}
		return nil, fmt.Errorf("read credentials: %w", err)
	}

	var parsed credentialsFile
	if err := toml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}

	if parsed.URL == "" {
		return nil, fmt.Errorf("%w: url not set in %s", domain.ErrCredentialsMissing, s.filePath)
	}
	if parsed.APIKey == "" {
		return nil, fmt.Errorf("%w: apikey not set in %s", domain.ErrCredentialsMissing, s.filePath)
	}

	return &domain.Credentials{
		URL:          parsed.URL,
		APIKey:       parsed.APIKey,
		PartitionID:  parsed.PartitionID,
		CollectionID: parsed.CollectionID,
		QPS:          parsed.QPS,
	}, nil
}
