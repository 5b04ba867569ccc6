package config

import (
	"errors"
	"fmt"
	"os"
)

// DefaultFile is the config file name looked for in the working
// directory.
const DefaultFile = "linework.toml"

// Load reads and validates the config file at path. A missing file is an
// error; callers that treat the file as optional use LoadOrDefault.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewNotFoundError(path)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(path, data)
}

// LoadOrDefault reads the config file at path, falling back to defaults
// when the file does not exist. Any other failure still surfaces.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		var userErr *UserError
		if errors.As(err, &userErr) && userErr.Code == ErrCodeConfigNotFound {
			return Default(), nil
		}
		return nil, err
	}
	return cfg, nil
}
