package config

import (
	"fmt"
	"strings"
)

// CredentialBackend selects where the credential pair is persisted.
type CredentialBackend string

const (
	// BackendFile persists credentials in a JSON file under the user config
	// dir. This is the default for interactive use.
	BackendFile CredentialBackend = "file"
	// BackendRedis persists credentials in Redis, for shared or headless
	// environments.
	BackendRedis CredentialBackend = "redis"
	// BackendMemory keeps credentials in process memory only.
	BackendMemory CredentialBackend = "memory"
)

// UnmarshalText implements encoding.TextUnmarshaler for CredentialBackend.
func (b *CredentialBackend) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "file", "redis", "memory":
		*b = CredentialBackend(v)
		return nil
	default:
		return fmt.Errorf("invalid CredentialBackend: %q (valid options: file, redis, memory)", v)
	}
}

// CredentialsConfig contains credential storage configuration.
type CredentialsConfig struct {
	// Backend determines which credential store to use.
	Backend CredentialBackend `env:"BACKEND" envDefault:"file"`

	// FilePath overrides the default credential file location (used when
	// Backend=file). Empty means the user config dir.
	FilePath string `env:"FILE_PATH" envDefault:""`

	// RedisKey is the Redis key the pair is stored under (used when
	// Backend=redis).
	RedisKey string `env:"REDIS_KEY" envDefault:"console:credentials"`
}

// RedisConfig contains Redis connection configuration.
type RedisConfig struct {
	Addr               string   `env:"ADDR"                 envDefault:"localhost:6379"`
	Password           string   `env:"PASSWORD"             envDefault:""`
	DB                 int      `env:"DB"                   envDefault:"0"`
	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:""`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
}
