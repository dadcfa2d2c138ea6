// Package config resolves the connection bundle for an upload run.
//
// Values come from four layers, highest priority first:
//
//	flags > environment (process, then env file) > pgnc.yaml > defaults
//
// The env file uses the variable names operators already keep next to the
// tool (BASTION_IP, RDS_HOST, DB_PASS...). The database password is only ever
// read from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/pgnc/pgnc-upload/internal/db/schema"
	"github.com/pgnc/pgnc-upload/pkg/pgnc"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// Default file names, looked up in the working directory.
const (
	DefaultEnvFile = ".env"
	ConfigFileName = "pgnc.yaml"
	DefaultSchema  = schema.NameFlat
)

// Environment variable names.
const (
	EnvBastionHost = "BASTION_IP"
	EnvBastionPort = "BASTION_PORT"
	EnvBastionUser = "BASTION_USER"
	EnvKeyName     = "PKEY_NAME"
	EnvKeyPath     = "PKEY_PATH"
	EnvKnownHosts  = "KNOWN_HOSTS"
	EnvDBHost      = "RDS_HOST"
	EnvDBPort      = "RDS_PORT"
	EnvDBName      = "DB_NAME"
	EnvDBUser      = "DB_USER"
	EnvDBPass      = "DB_PASS"
	EnvDBSSLMode   = "DB_SSLMODE"
)

// Config is the resolved bundle. Build it with Resolve.
type Config struct {
	BastionHost    string
	BastionPort    int
	BastionUser    string
	PrivateKeyPath string
	KnownHostsPath string

	DBHost  string
	DBPort  int
	DBName  string
	DBUser  string
	DBPass  string
	SSLMode string

	Schema         string
	Timeout        time.Duration
	ConnectTimeout time.Duration
}

// BastionSection is the bastion block of pgnc.yaml.
type BastionSection struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	User       string `yaml:"user"`
	PrivateKey string `yaml:"private_key"`
	KnownHosts string `yaml:"known_hosts,omitempty"`
}

// DatabaseSection is the database block of pgnc.yaml.
type DatabaseSection struct {
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	Name    string `yaml:"name"`
	User    string `yaml:"user"`
	SSLMode string `yaml:"sslmode,omitempty"`
}

// ProjectConfig mirrors pgnc.yaml. There is no password field: DB_PASS comes
// from the environment only.
type ProjectConfig struct {
	Bastion        BastionSection  `yaml:"bastion"`
	Database       DatabaseSection `yaml:"database"`
	Schema         string          `yaml:"schema"`
	Timeout        string          `yaml:"timeout"`
	ConnectTimeout string          `yaml:"connect_timeout"`
}

// Load reads and parses the yaml file at path.
func Load(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w: %w", path, pgnc.ErrInvalidConfig, err)
	}
	return &cfg, nil
}

// Flags holds the command line overrides. Zero values mean "not set".
type Flags struct {
	Schema         string
	KnownHostsPath string
	Timeout        time.Duration
}

// Sources names where Resolve looks.
type Sources struct {
	// EnvFile is read with godotenv. A missing file is an error only when
	// EnvFileExplicit is set.
	EnvFile         string
	EnvFileExplicit bool

	// ConfigFile is the optional yaml file, same rule for ConfigFileExplicit.
	ConfigFile         string
	ConfigFileExplicit bool

	Flags Flags

	// LookupEnv reads the process environment. Nil means os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// Resolve merges every layer into a Config. It does not validate
// completeness: a dry run needs no connection settings. Call Validate before
// connecting.
func Resolve(src Sources) (*Config, error) {
	env, envDir, err := readEnv(src)
	if err != nil {
		return nil, err
	}

	project := &ProjectConfig{}
	projectDir := "."
	if src.ConfigFile != "" {
		loaded, err := Load(src.ConfigFile)
		switch {
		case err == nil:
			project = loaded
			projectDir = filepath.Dir(src.ConfigFile)
		case errors.Is(err, ErrConfigNotFound) && !src.ConfigFileExplicit:
		case errors.Is(err, ErrConfigNotFound):
			return nil, fmt.Errorf("config file %s not found: %w", src.ConfigFile, pgnc.ErrInvalidConfig)
		default:
			return nil, err
		}
	}

	cfg := &Config{
		BastionPort:    pgnc.DefaultBastionPort,
		DBPort:         pgnc.DefaultDBPort,
		SSLMode:        pgnc.DefaultSSLMode,
		Schema:         DefaultSchema,
		Timeout:        pgnc.DefaultTimeout,
		ConnectTimeout: pgnc.DefaultConnectTimeout,
	}

	var errs []error

	// yaml layer
	setString(&cfg.BastionHost, project.Bastion.Host)
	setInt(&cfg.BastionPort, project.Bastion.Port)
	setString(&cfg.BastionUser, project.Bastion.User)
	setString(&cfg.PrivateKeyPath, resolvePath(projectDir, project.Bastion.PrivateKey))
	setString(&cfg.KnownHostsPath, resolvePath(projectDir, project.Bastion.KnownHosts))
	setString(&cfg.DBHost, project.Database.Host)
	setInt(&cfg.DBPort, project.Database.Port)
	setString(&cfg.DBName, project.Database.Name)
	setString(&cfg.DBUser, project.Database.User)
	setString(&cfg.SSLMode, project.Database.SSLMode)
	setString(&cfg.Schema, project.Schema)
	errs = append(errs,
		setDuration(&cfg.Timeout, "timeout", project.Timeout),
		setDuration(&cfg.ConnectTimeout, "connect_timeout", project.ConnectTimeout),
	)

	// env layer
	setString(&cfg.BastionHost, env[EnvBastionHost])
	errs = append(errs, setPort(&cfg.BastionPort, EnvBastionPort, env[EnvBastionPort]))
	setString(&cfg.BastionUser, env[EnvBastionUser])
	setString(&cfg.PrivateKeyPath, resolvePath(envDir, env[EnvKeyName]))
	setString(&cfg.PrivateKeyPath, expandHome(env[EnvKeyPath]))
	setString(&cfg.KnownHostsPath, expandHome(env[EnvKnownHosts]))
	setString(&cfg.DBHost, env[EnvDBHost])
	errs = append(errs, setPort(&cfg.DBPort, EnvDBPort, env[EnvDBPort]))
	setString(&cfg.DBName, env[EnvDBName])
	setString(&cfg.DBUser, env[EnvDBUser])
	if pass := env[EnvDBPass]; pass != "" {
		cfg.DBPass = pass // verbatim, spaces may be part of the password
	}
	setString(&cfg.SSLMode, env[EnvDBSSLMode])

	// flag layer
	setString(&cfg.Schema, src.Flags.Schema)
	setString(&cfg.KnownHostsPath, expandHome(src.Flags.KnownHostsPath))
	if src.Flags.Timeout > 0 {
		cfg.Timeout = src.Flags.Timeout
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks what every run needs, connected or not.
func (c *Config) Validate() error {
	var errs []error
	if _, err := schema.ForName(c.Schema); err != nil {
		errs = append(errs, err)
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %s: %w", c.Timeout, pgnc.ErrInvalidConfig))
	}
	if c.ConnectTimeout <= 0 {
		errs = append(errs, fmt.Errorf("connect timeout must be positive, got %s: %w", c.ConnectTimeout, pgnc.ErrInvalidConfig))
	}
	return errors.Join(errs...)
}

// UploadConfig converts the bundle into what the pipeline consumes.
func (c *Config) UploadConfig(dryRun bool) pgnc.UploadConfig {
	return pgnc.UploadConfig{
		Tunnel: pgnc.TunnelConfig{
			BastionHost:    c.BastionHost,
			BastionPort:    c.BastionPort,
			BastionUser:    c.BastionUser,
			PrivateKeyPath: c.PrivateKeyPath,
			KnownHostsPath: c.KnownHostsPath,
			RemoteHost:     c.DBHost,
			RemotePort:     c.DBPort,
			ConnectTimeout: c.ConnectTimeout,
		},
		DB: pgnc.DBParams{
			Name:           c.DBName,
			User:           c.DBUser,
			Password:       c.DBPass,
			SSLMode:        c.SSLMode,
			ConnectTimeout: c.ConnectTimeout,
		},
		DryRun: dryRun,
	}
}

// Describe lists the resolved settings for verbose output. The password is
// never included.
func (c *Config) Describe() []string {
	pass := "(unset)"
	if c.DBPass != "" {
		pass = "(set)"
	}
	return []string{
		fmt.Sprintf("Bastion: %s@%s:%d", c.BastionUser, c.BastionHost, c.BastionPort),
		fmt.Sprintf("Private key: %s", c.PrivateKeyPath),
		fmt.Sprintf("Known hosts: %s", orNone(c.KnownHostsPath)),
		fmt.Sprintf("Database: %s@%s:%d/%s (sslmode=%s)", c.DBUser, c.DBHost, c.DBPort, c.DBName, c.SSLMode),
		fmt.Sprintf("Password: %s", pass),
		fmt.Sprintf("Schema: %s", c.Schema),
		fmt.Sprintf("Timeout: %s", c.Timeout),
	}
}

// readEnv returns the env file values overlaid by the process environment,
// plus the directory PKEY_NAME is relative to.
func readEnv(src Sources) (map[string]string, string, error) {
	lookup := src.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}

	env := map[string]string{}
	dir := "."
	if src.EnvFile != "" {
		values, err := godotenv.Read(src.EnvFile)
		switch {
		case err == nil:
			env = values
			dir = filepath.Dir(src.EnvFile)
		case errors.Is(err, fs.ErrNotExist) && !src.EnvFileExplicit:
		case errors.Is(err, fs.ErrNotExist):
			return nil, "", fmt.Errorf("env file %s not found: %w", src.EnvFile, pgnc.ErrInvalidConfig)
		default:
			return nil, "", fmt.Errorf("read env file %s: %w: %w", src.EnvFile, pgnc.ErrInvalidConfig, err)
		}
	}

	for _, key := range []string{
		EnvBastionHost, EnvBastionPort, EnvBastionUser, EnvKeyName, EnvKeyPath,
		EnvKnownHosts, EnvDBHost, EnvDBPort, EnvDBName, EnvDBUser, EnvDBPass, EnvDBSSLMode,
	} {
		if v, ok := lookup(key); ok && v != "" {
			env[key] = v
		}
	}
	return env, dir, nil
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setPort(dst *int, key, v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	port, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s=%q is not a port number: %w", key, v, pgnc.ErrInvalidConfig)
	}
	*dst = port
	return nil
}

func setDuration(dst *time.Duration, key, v string) error {
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q in %s: %w", key, v, ConfigFileName, pgnc.ErrInvalidConfig)
	}
	*dst = d
	return nil
}

// resolvePath anchors a relative path at dir. Absolute and ~ paths are kept.
func resolvePath(dir, p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	p = expandHome(p)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
