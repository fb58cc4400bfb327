package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Trade Journal Configuration

[journal]
# Path to the SQLite database (defaults to <config dir>/journal.db)
database_path = ""
# Owner of all records in this journal
user_id = "default"
# Default account for new trades (account id)
default_account = ""

[ui]
# Enable colored output
color_enabled = true

[broker]
# Base URL of the cTrader bridge (empty disables broker commands)
bridge_url = ""
`

const credentialsTemplate = `# Trade Journal Credentials
# WARNING: Keep this file secure! Do not commit to version control.

[ctrader]
client_id = ""
client_secret = ""
`

func createTemplateConfig(configDir, name string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, name+".toml")
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}

	return fmt.Errorf("config file not found, created template at %s", path)
}

// CreateTemplateCredentials writes a starter credentials.toml with
// restricted permissions so users know where broker secrets go.
func CreateTemplateCredentials(configDir string) (string, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "credentials.toml")
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	if err := os.WriteFile(path, []byte(credentialsTemplate), 0600); err != nil {
		return "", fmt.Errorf("writing credentials template: %w", err)
	}

	return path, nil
}
