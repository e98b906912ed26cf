package config

import (
	"os"
	"testing"

	"github.com/spf13/pflag"
)

func newFlagSet() *pflag.FlagSet {
	return pflag.NewFlagSet("test", pflag.ContinueOnError)
}

func TestParse_Defaults(t *testing.T) {
	os.Clearenv()

	cfg, err := parseWithFlagSet(newFlagSet(), []string{
		"-r", "/up", "-l", "/tmp/data", "-s", "ftp.example.com",
	})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if cfg.Port != 21 {
		t.Errorf("expected Port 21, got %d", cfg.Port)
	}
	if cfg.RetryLimit != 3 {
		t.Errorf("expected RetryLimit 3, got %d", cfg.RetryLimit)
	}
	if cfg.Threads != 0 {
		t.Errorf("expected Threads 0 (auto), got %d", cfg.Threads)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected LogLevel info, got %s", cfg.LogLevel)
	}
	if !cfg.Anonymous() {
		t.Error("expected anonymous login when no username is given")
	}
}

func TestParse_AllFlags(t *testing.T) {
	os.Clearenv()

	cfg, err := parseWithFlagSet(newFlagSet(), []string{
		"--remote-path", "/up", "--local-path", "/tmp/data",
		"--server", "ftp.example.com", "--username", "alice",
		"--password", "hunter2", "--port", "2121", "--retry", "5",
		"--thread", "4", "--log-level", "debug",
	})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if cfg.Username != "alice" || cfg.Password != "hunter2" {
		t.Errorf("unexpected credentials: %q / %q", cfg.Username, cfg.Password)
	}
	if cfg.Port != 2121 {
		t.Errorf("expected Port 2121, got %d", cfg.Port)
	}
	if cfg.RetryLimit != 5 {
		t.Errorf("expected RetryLimit 5, got %d", cfg.RetryLimit)
	}
	if cfg.Threads != 4 {
		t.Errorf("expected Threads 4, got %d", cfg.Threads)
	}
	if cfg.Anonymous() {
		t.Error("expected authenticated login")
	}
	if cfg.Addr() != "ftp.example.com:2121" {
		t.Errorf("unexpected Addr: %s", cfg.Addr())
	}
}

func TestParse_EnvFallback(t *testing.T) {
	os.Clearenv()

	os.Setenv("CYMO_SERVER", "ftp.internal")
	os.Setenv("CYMO_USERNAME", "bob")
	os.Setenv("CYMO_PASSWORD", "secret")
	os.Setenv("CYMO_PORT", "990")
	defer os.Clearenv()

	cfg, err := parseWithFlagSet(newFlagSet(), []string{"-r", "/up", "-l", "/tmp/data"})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if cfg.Server != "ftp.internal" {
		t.Errorf("expected Server ftp.internal, got %s", cfg.Server)
	}
	if cfg.Username != "bob" || cfg.Password != "secret" {
		t.Errorf("unexpected credentials: %q / %q", cfg.Username, cfg.Password)
	}
	if cfg.Port != 990 {
		t.Errorf("expected Port 990, got %d", cfg.Port)
	}
}

func TestParse_FlagsOverrideEnv(t *testing.T) {
	os.Clearenv()

	os.Setenv("CYMO_SERVER", "ftp.internal")
	defer os.Clearenv()

	cfg, err := parseWithFlagSet(newFlagSet(), []string{
		"-r", "/up", "-l", "/tmp/data", "-s", "ftp.example.com",
	})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if cfg.Server != "ftp.example.com" {
		t.Errorf("expected flag to win, got %s", cfg.Server)
	}
}

func TestParse_Invalid(t *testing.T) {
	os.Clearenv()

	cases := []struct {
		name string
		args []string
	}{
		{"missing remote path", []string{"-l", "/tmp/data", "-s", "ftp.example.com"}},
		{"missing local path", []string{"-r", "/up", "-s", "ftp.example.com"}},
		{"missing server", []string{"-r", "/up", "-l", "/tmp/data"}},
		{"bad port", []string{"-r", "/up", "-l", "/tmp/data", "-s", "x", "--port", "70000"}},
		{"negative retry", []string{"-r", "/up", "-l", "/tmp/data", "-s", "x", "--retry", "-1"}},
		{"negative threads", []string{"-r", "/up", "-l", "/tmp/data", "-s", "x", "-t", "-2"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := parseWithFlagSet(newFlagSet(), tc.args); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
