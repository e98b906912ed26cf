package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/pflag"
)

// Defaults applied when neither flag nor environment provides a value.
const (
	DefaultPort       = 21
	DefaultRetryLimit = 3
)

// Config holds the validated settings for one upload run.
type Config struct {
	RemotePath string // Base path on the server where files land
	LocalPath  string // Local file or directory to upload
	Server     string // Server address or hostname
	Port       int
	Username   string // Empty means anonymous login
	Password   string
	RetryLimit int // Extra attempts per file after the first (0 = no retries)
	Threads    int // Worker sessions; 0 = auto-detect from task count
	LogLevel   string
}

// Parse parses configuration from flags and environment variables.
// Flags take precedence over CYMO_* environment variables.
func Parse(args []string) (Config, error) {
	fs := pflag.NewFlagSet("cymo", pflag.ContinueOnError)
	return parseWithFlagSet(fs, args)
}

// parseWithFlagSet is an internal helper for testing with isolated flag sets.
func parseWithFlagSet(fs *pflag.FlagSet, args []string) (Config, error) {
	cfg := Config{
		Port:       DefaultPort,
		RetryLimit: DefaultRetryLimit,
		LogLevel:   "info",
	}

	// Environment first, flags override.
	if v := os.Getenv("CYMO_SERVER"); v != "" {
		cfg.Server = v
	}
	if v := os.Getenv("CYMO_USERNAME"); v != "" {
		cfg.Username = v
	}
	if v := os.Getenv("CYMO_PASSWORD"); v != "" {
		cfg.Password = v
	}
	if v := os.Getenv("CYMO_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("CYMO_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid CYMO_PORT value %q", v)
		}
		cfg.Port = port
	}

	fs.StringVarP(&cfg.RemotePath, "remote-path", "r", cfg.RemotePath, "remote path on the server where files will be uploaded")
	fs.StringVarP(&cfg.LocalPath, "local-path", "l", cfg.LocalPath, "local file or directory to upload")
	fs.StringVarP(&cfg.Server, "server", "s", cfg.Server, "server address or hostname")
	fs.StringVarP(&cfg.Username, "username", "u", cfg.Username, "username for authentication (omit for anonymous)")
	fs.StringVarP(&cfg.Password, "password", "p", cfg.Password, "password for authentication")
	fs.IntVar(&cfg.Port, "port", cfg.Port, "remote server port")
	fs.IntVar(&cfg.RetryLimit, "retry", cfg.RetryLimit, "extra upload attempts per file after a failure")
	fs.IntVarP(&cfg.Threads, "thread", "t", cfg.Threads, "number of worker sessions (0 = auto)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.RemotePath == "" {
		return fmt.Errorf("missing required flag --remote-path")
	}
	if c.LocalPath == "" {
		return fmt.Errorf("missing required flag --local-path")
	}
	if c.Server == "" {
		return fmt.Errorf("missing required flag --server")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.RetryLimit < 0 {
		return fmt.Errorf("invalid retry limit %d", c.RetryLimit)
	}
	if c.Threads < 0 {
		return fmt.Errorf("invalid thread count %d", c.Threads)
	}
	return nil
}

// Anonymous reports whether the run should log in as the anonymous user.
func (c Config) Anonymous() bool {
	return c.Username == ""
}

// Addr returns the dialable host:port address of the server.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server, c.Port)
}
