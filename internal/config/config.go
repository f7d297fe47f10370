package config

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const configFileVar = "CONFIG_FILE"

type Config interface {
	EnvConfig
	TokenConfig
	StoreConfig
	SecurityConfig
	Validate() error
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

type mainConfig struct {
	EnvVars
	Token
	Store
	Security
}

// source resolves a key from the environment first, then the config file.
type source struct {
	file map[string]string
}

func (s *source) get(key, defaultValue string) string {
	if v := GetEnv(key, ""); v != "" {
		return v
	}
	if s != nil {
		if v, ok := s.file[strings.ToLower(key)]; ok && v != "" {
			return v
		}
	}
	return defaultValue
}

// New builds a Config from the environment and, when CONFIG_FILE is set, a
// flat YAML file whose keys are the lower-cased variable names.
func New() (Config, error) {
	return Load(GetEnv(configFileVar, ""))
}

// Load is New with an explicit file path. An empty path means environment
// and defaults only.
func Load(path string) (Config, error) {
	src := &source{file: map[string]string{}}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "reading config file")
		}
		raw := map[string]any{}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, errors.Wrap(err, "parsing config file")
		}
		for k, v := range raw {
			if v == nil {
				continue
			}
			switch val := v.(type) {
			case string:
				src.file[strings.ToLower(k)] = val
			default:
				out, err := yaml.Marshal(val)
				if err != nil {
					return nil, errors.Wrapf(err, "config key %s", k)
				}
				src.file[strings.ToLower(k)] = strings.TrimSpace(string(out))
			}
		}
	}
	return mainConfig{
		EnvVars:  EnvVars{src: src},
		Token:    Token{src: src},
		Store:    Store{src: src},
		Security: Security{src: src},
	}, nil
}

// Validate reports the first setting that cannot be used.
func (c mainConfig) Validate() error {
	if c.GetAuthSecret() == "" {
		return errors.Errorf("%s is required", authSecretVar)
	}
	if _, err := c.Token.accessTTL(); err != nil {
		return err
	}
	if _, err := c.Token.refreshTTL(); err != nil {
		return err
	}
	switch c.GetDBDriver() {
	case DriverMemory:
	case DriverPostgres, DriverSQLite:
		if c.GetDBDSN() == "" {
			return errors.Errorf("%s is required for driver %s", dbDSNVar, c.GetDBDriver())
		}
	default:
		return errors.Errorf("unsupported %s %q", dbDriverVar, c.GetDBDriver())
	}
	if _, err := c.Security.signinRate(); err != nil {
		return err
	}
	return nil
}
