// Package config loads environment variables into typed structs.
//
// Struct fields are bound with caarlos0/env tags. A .env file in the
// working directory is read once on first use; real environment variables
// win over it.
//
//	type Config struct {
//		Strict bool   `env:"DISPATCH_STRICT" envDefault:"false"`
//		Addr   string `env:"SERVER_ADDR,required"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//
// Each struct type is parsed once per process. Later Load calls for the
// same type return the cached value, even if the environment has changed
// in between; distinct types are cached independently.
package config
