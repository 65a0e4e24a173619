// Command tui is the interactive terminal frontend.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"invoice-qa-review/internal/bootstrap"
	"invoice-qa-review/internal/config"
	"invoice-qa-review/internal/infra/logging"
	"invoice-qa-review/internal/tui"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	logFile := flag.String("log-file", "invoiceqa-tui.log", "log output file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	if cfg.Log.File == "" {
		cfg.Log.File = *logFile
	}
	logger, closer, err := logging.New(cfg.Log, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		os.Exit(2)
	}
	defer closer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc, err := bootstrap.Build(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bootstrap: %v\n", err)
		os.Exit(2)
	}

	p := tea.NewProgram(tui.NewApp(ctx, svc.Facade, svc.DefaultMode))
	if _, err := p.Run(); err != nil {
		logger.Error().Err(err).Msg("tui")
		fmt.Fprintf(os.Stderr, "tui: %v\n", err)
		os.Exit(1)
	}
}
