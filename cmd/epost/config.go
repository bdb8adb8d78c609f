package main

import (
	"context"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/luxxxlucy/epost/internal/perfscript"
)

type Config struct {
	Signature string `yaml:"signature" env:"EPOST_SIGNATURE" env-default:"EPOST_LOG" env-description:"token starting every instrumentation line"`

	Program string `yaml:"program" env:"EPOST_PROGRAM" env-default:"egg-run-program" env-description:"program name in sample headers"`
	PID     string `yaml:"pid" env:"EPOST_PID" env-default:"1" env-description:"process id in sample headers"`
	Period  string `yaml:"period" env:"EPOST_PERIOD" env-default:"1" env-description:"sample period in sample headers"`
	Unit    string `yaml:"event_unit" env:"EPOST_EVENT_UNIT" env-default:"cycles" env-description:"event name in sample headers"`
	Address string `yaml:"frame_address" env:"EPOST_FRAME_ADDRESS" env-default:"1234" env-description:"address of every frame"`
	Module  string `yaml:"module" env:"EPOST_MODULE" env-default:"egg-func-lib" env-description:"module of every frame"`

	LogLevel  string        `yaml:"log_level" env:"EPOST_LOG_LEVEL" env-default:"info" env-description:"debug, info, warn or error"`
	LogFormat string        `yaml:"log_format" env:"EPOST_LOG_FORMAT" env-default:"auto" env-description:"auto, console or json"`
	IOTimeout time.Duration `yaml:"io_timeout" env:"EPOST_IO_TIMEOUT" env-default:"1m" env-description:"timeout of a single read or write, 0 to disable"`

	SentryDSN   string `yaml:"sentry_dsn" env:"SENTRY_DSN" env-description:"report failures to sentry when set"`
	Environment string `yaml:"environment" env:"SENTRY_ENVIRONMENT" env-default:"development"`
}

// loadConfig reads the configuration from the environment, layered over the
// file at path if one is given.
func loadConfig(path string) (Config, error) {
	var cfg Config
	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	return cfg, err
}

func (c Config) perfOptions() perfscript.Options {
	return perfscript.Options{
		Program: c.Program,
		PID:     c.PID,
		Period:  c.Period,
		Unit:    c.Unit,
		Address: c.Address,
		Module:  c.Module,
	}
}

func (c Config) withIOTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.IOTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.IOTimeout)
}
