// Package config loads TRAC's platform configuration: a YAML document
// with sections for services, the metadata database, storage plugins,
// tenants and the gateway (spec.md §6), using gopkg.in/yaml.v3 — the
// teacher's own dependency for this concern even though warren configures
// itself from cobra flags rather than a YAML file; spec.md §6 names the
// YAML schema explicitly, so this package restructures TRAC's ambient
// config loading around that schema rather than warren's flag set.
package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Config is the root platform configuration document.
type Config struct {
	Services         map[string]ServiceConfig    `yaml:"services"`
	MetadataDatabase MetadataDatabaseConfig      `yaml:"metadataDatabase"`
	StoragePlugins   map[string]StoragePlugin    `yaml:"storagePlugins"`
	Tenants          TenantsConfig               `yaml:"tenants"`
	Authentication   AuthenticationConfig        `yaml:"authentication"`
	Gateway          GatewayConfig               `yaml:"gateway"`
}

// ServiceConfig configures one named service endpoint (e.g. "metadata",
// "data", "admin", "gateway").
type ServiceConfig struct {
	Enabled    bool              `yaml:"enabled"`
	Host       string            `yaml:"host"`
	Port       int               `yaml:"port"`
	Properties map[string]string `yaml:"properties"`
}

// MetadataDatabaseConfig selects and configures the metadb.Adapter.
type MetadataDatabaseConfig struct {
	Dialect        string `yaml:"dialect"` // "embedded" or "postgres"
	JDBCURL        string `yaml:"jdbcUrl"`
	PoolMinSize    int    `yaml:"poolMinSize"`
	PoolMaxSize    int    `yaml:"poolMaxSize"`
	EmbeddedDBPath string `yaml:"embeddedDbPath"`
}

// StoragePlugin configures one object-store backend under a storageKey.
type StoragePlugin struct {
	Type       string            `yaml:"type"` // "LOCAL", "S3", "GCS", "AZURE"
	Properties map[string]string `yaml:"properties"`
}

// TenantsConfig lists tenants provisioned at boot and whether dynamic
// (admin RPC driven) tenant creation is permitted.
type TenantsConfig struct {
	Bootstrap []string `yaml:"bootstrap"`
	Dynamic   bool     `yaml:"dynamic"`
}

// AuthenticationConfig names the signing key TRAC trusts for bearer
// tokens; key material itself is out of scope (spec.md §1 non-goals).
type AuthenticationConfig struct {
	SigningKeyAlias string `yaml:"signingKeyAlias"`
}

// GatewayConfig configures the REST↔gRPC translator's static redirects and
// any custom routes layered on top of the generated ones.
type GatewayConfig struct {
	APIPrefix  string            `yaml:"apiPrefix"`
	RestPrefix string            `yaml:"restPrefix"`
	Redirects  map[string]string `yaml:"redirects"`
	Routes     []RouteConfig     `yaml:"routes"`
}

// RouteConfig names one custom HTTP-to-gRPC route.
type RouteConfig struct {
	Method  string `yaml:"method"`
	Path    string `yaml:"path"`
	Service string `yaml:"service"`
	RPC     string `yaml:"rpc"`
}

var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// substituteEnv replaces every ${NAME} occurrence with os.Getenv(NAME),
// leaving unset variables as an empty string (spec.md §6: "substitutions
// of ${NAME} are permitted and env-driven").
func substituteEnv(raw []byte) []byte {
	return envPattern.ReplaceAllFunc(raw, func(match []byte) []byte {
		name := envPattern.FindSubmatch(match)[1]
		return []byte(os.Getenv(string(name)))
	})
}

// Load reads, env-substitutes, and parses the platform config at path.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	raw = substituteEnv(raw)

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.MetadataDatabase.Dialect {
	case "embedded":
		if c.MetadataDatabase.EmbeddedDBPath == "" {
			return fmt.Errorf("metadataDatabase.embeddedDbPath is required for dialect \"embedded\"")
		}
	case "postgres":
		if c.MetadataDatabase.JDBCURL == "" {
			return fmt.Errorf("metadataDatabase.jdbcUrl is required for dialect \"postgres\"")
		}
	default:
		return fmt.Errorf("unknown metadataDatabase.dialect %q", c.MetadataDatabase.Dialect)
	}
	if len(c.StoragePlugins) == 0 {
		return fmt.Errorf("at least one storage plugin must be configured")
	}
	return nil
}
