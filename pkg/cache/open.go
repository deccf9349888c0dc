package cache

import (
	"context"

	kerrors "github.com/matzehuels/kintree/pkg/errors"
)

// Cache drivers.
const (
	DriverNone  = "none"
	DriverFile  = "file"
	DriverRedis = "redis"
)

// Options selects and configures a cache backend.
type Options struct {
	Driver string       `toml:"driver"`
	Dir    string       `toml:"dir"`
	Redis  RedisOptions `toml:"redis"`
}

// SetDefaults fills in the file driver and the per-user cache directory.
func (o *Options) SetDefaults() {
	if o.Driver == "" {
		o.Driver = DriverFile
	}
	if o.Dir == "" {
		if dir, err := DefaultDir(); err == nil {
			o.Dir = dir
		}
	}
	if o.Redis.Addr == "" {
		o.Redis.Addr = "localhost:6379"
	}
	if o.Redis.Prefix == "" {
		o.Redis.Prefix = "kintree:"
	}
}

// Validate checks the driver name.
func (o Options) Validate() error {
	switch o.Driver {
	case DriverNone, DriverFile, DriverRedis:
		return nil
	}
	return kerrors.New(kerrors.ErrCodeInvalidConfig, "invalid cache driver: %q (must be one of: none, file, redis)", o.Driver)
}

// Open creates the cache selected by o.Driver.
func Open(ctx context.Context, o Options) (Cache, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	switch o.Driver {
	case DriverFile:
		if o.Dir == "" {
			return nil, kerrors.New(kerrors.ErrCodeInvalidConfig, "cache dir is required for the file driver")
		}
		return NewFileCache(o.Dir)
	case DriverRedis:
		return NewRedisCache(ctx, o.Redis)
	}
	return NewNullCache(), nil
}
