// Package config loads configuration structs from environment variables.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11: the
// first Load in a process picks up a .env file from the working directory
// when one exists, then env tags on the target struct drive parsing.
//
//	type StoreConfig struct {
//		URL string        `env:"PROFILE_REDIS_URL" envDefault:"redis://localhost:6379/0"`
//		TTL time.Duration `env:"PROFILE_REDIS_TTL" envDefault:"720h"`
//	}
//
//	var cfg StoreConfig
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//
// Failures wrap the package sentinels, so callers can distinguish a nil
// target (ErrNilPointer) from bad environment values (ErrParsingConfig)
// with errors.Is.
package config
