package config

import (
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const ENVPREFIX = "HEAP"

const (
	StoreMemory  = "memory"
	StoreWAL     = "wal"
	StoreLevelDB = "leveldb"
	StoreRedis   = "redis"
)

type Config struct {
	Store        string
	Dir          string
	Prefix       string
	CacheSize    int
	WALLimit     int64
	RedisURL     string
	RedisTimeout time.Duration
	LogLevel     string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("STORE", StoreWAL)
	v.SetDefault("DIR", "./heapdata")
	v.SetDefault("PREFIX", "heap")
	v.SetDefault("CACHE_SIZE", 256)
	v.SetDefault("WAL_LIMIT", 4<<20)
	v.SetDefault("REDIS_URL", "localhost:6379")
	v.SetDefault("REDIS_TIMEOUT", 5*time.Second)
	v.SetDefault("LOG_LEVEL", "info")
}

// Load reads defaults, then the optional config file at path, then HEAP_*
// environment variables, each overriding the one before.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(ENVPREFIX)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errors.Wrapf(err, "reading config %s", path)
		}
	}

	c := Config{
		Store:        v.GetString("STORE"),
		Dir:          v.GetString("DIR"),
		Prefix:       v.GetString("PREFIX"),
		CacheSize:    v.GetInt("CACHE_SIZE"),
		WALLimit:     v.GetInt64("WAL_LIMIT"),
		RedisURL:     v.GetString("REDIS_URL"),
		RedisTimeout: v.GetDuration("REDIS_TIMEOUT"),
		LogLevel:     v.GetString("LOG_LEVEL"),
	}
	return c, c.Validate()
}

func (c Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreWAL, StoreLevelDB, StoreRedis:
	default:
		return errors.Errorf("unknown store %q", c.Store)
	}
	if c.Prefix == "" {
		return errors.New("prefix must be set")
	}
	if (c.Store == StoreWAL || c.Store == StoreLevelDB) && c.Dir == "" {
		return errors.Errorf("store %s needs a dir", c.Store)
	}
	return nil
}
