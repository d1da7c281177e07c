// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

type Config struct {
	BallotFile   string `yaml:"ballot_file" env:"BALLOT_FILE"`
	AuditFile    string `yaml:"audit_file" env:"AUDIT_FILE"`
	InvalidFile  string `yaml:"invalid_file" env:"INVALID_FILE"`
	ReportFile   string `yaml:"report_file" env:"REPORT_FILE"`
	DatabaseURL  string `yaml:"database_url" env:"DATABASE_URL"`
	DatabaseType string `yaml:"database_type" env:"DATABASE_TYPE"`
	Seed         int64  `yaml:"seed" env:"TIE_BREAK_SEED"`
	Port         int    `yaml:"port" env:"PORT"`
	InputsSalt   string `yaml:"inputs_salt" env:"INPUTS_SALT"`
	Verbose      bool   `yaml:"verbose" env:"VERBOSE"`
}

const defaultEnvFile = ".env"

// Defaults returns the configuration used when nothing else is set
func Defaults() Config {
	return Config{
		AuditFile:    "auditFile.txt",
		InvalidFile:  "invalidated.csv",
		DatabaseType: "sqlite",
		Port:         3318,
	}
}

// RegisterFlags adds every configuration flag to fs
func RegisterFlags(fs *pflag.FlagSet) {
	d := Defaults()

	fs.StringP("config", "c", "", "YAML config file")
	fs.String("env-file", defaultEnvFile, "dotenv file loaded before reading the environment")

	// Files
	fs.String("audit-file", d.AuditFile, "Audit trail file (appended to)")
	fs.String("invalid-file", d.InvalidFile, "File receiving rejected IR ballots")
	fs.StringP("report", "r", "", "Write an XLSX results workbook to this path")

	// Storage
	fs.StringP("database-url", "d", "", "Database URL or SQLite path")
	fs.StringP("database-type", "t", d.DatabaseType, "Database type (sqlite or postgres)")

	// Tabulation
	fs.Int64P("seed", "s", 0, "Tie-break seed (0 draws a random seed)")
	fs.String("inputs-salt", "", "Salt for the ballot file inputs hash (prefer env)")

	// Server
	fs.IntP("port", "p", d.Port, "Server port")

	fs.BoolP("verbose", "v", false, "Debug logging")
}

// Resolve builds the configuration from a parsed flag set. Sources are
// applied in order, each overriding the last: defaults, YAML file, dotenv
// file, environment, flags that were set explicitly.
func Resolve(fs *pflag.FlagSet) (Config, error) {
	cfg := Defaults()

	if path, _ := fs.GetString("config"); path != "" {
		if err := LoadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	envFile, _ := fs.GetString("env-file")
	if err := loadDotenv(envFile, fs.Changed("env-file")); err != nil {
		return Config{}, err
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	applyFlags(fs, &cfg)
	if fs.NArg() > 0 {
		cfg.BallotFile = fs.Arg(0)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseFlags parses args and resolves the full configuration
func ParseFlags(args []string) (Config, error) {
	fs := pflag.NewFlagSet("quickly-tally", pflag.ContinueOnError)
	RegisterFlags(fs)

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return Resolve(fs)
}

// LoadFile overlays the keys present in a YAML file onto cfg
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// loadDotenv never overrides variables already in the environment. A missing
// file is only an error when it was asked for explicitly.
func loadDotenv(path string, explicit bool) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if !explicit && errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load env file: %w", err)
}

func applyFlags(fs *pflag.FlagSet, cfg *Config) {
	strs := map[string]*string{
		"audit-file":    &cfg.AuditFile,
		"invalid-file":  &cfg.InvalidFile,
		"report":        &cfg.ReportFile,
		"database-url":  &cfg.DatabaseURL,
		"database-type": &cfg.DatabaseType,
		"inputs-salt":   &cfg.InputsSalt,
	}
	for name, dst := range strs {
		if fs.Changed(name) {
			*dst, _ = fs.GetString(name)
		}
	}
	if fs.Changed("seed") {
		cfg.Seed, _ = fs.GetInt64("seed")
	}
	if fs.Changed("port") {
		cfg.Port, _ = fs.GetInt("port")
	}
	if fs.Changed("verbose") {
		cfg.Verbose, _ = fs.GetBool("verbose")
	}
}

// Validate checks values that no source is allowed to get wrong
func (c Config) Validate() error {
	switch c.DatabaseType {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("invalid database type %q (use sqlite or postgres)", c.DatabaseType)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.AuditFile == "" {
		return errors.New("audit file path required")
	}
	return nil
}
