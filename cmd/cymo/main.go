// Command cymo uploads a local file tree to an FTP server using multiple
// concurrent worker sessions.
//
// Example usage:
//
//	cymo -r /ftp/upload -l /local/files -s ftp.example.com
//	cymo -r /ftp/upload -l /local/files -s ftp.example.com -u alice -p secret -t 8
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/DefectingCat/cymo/internal/app"
	"github.com/DefectingCat/cymo/internal/config"
	"github.com/DefectingCat/cymo/internal/logging"
)

func main() {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger := logging.New("cymo", cfg.LogLevel)
	runner := &app.Runner{
		Cfg:    cfg,
		Logger: logger,
	}
	if isTTY(os.Stderr) {
		runner.ProgressOut = os.Stderr
	}

	rep, err := runner.Run()
	if err != nil {
		logger.Error("upload aborted", "err", err)
		os.Exit(1)
	}

	rep.Render(os.Stdout)
	if !rep.Ok() {
		os.Exit(1)
	}
}

func isTTY(f *os.File) bool {
	if f == nil {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
