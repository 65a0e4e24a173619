// Command invoiceqa runs one review and prints the verdict.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"invoice-qa-review/internal/application"
	"invoice-qa-review/internal/bootstrap"
	"invoice-qa-review/internal/config"
	"invoice-qa-review/internal/domain/model"
	"invoice-qa-review/internal/infra/logging"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("invoiceqa", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfgPath := fs.String("config", "config.yaml", "path to YAML config file")
	id := fs.String("id", "", "ServiceTrade job or invoice ID")
	modeFlag := fs.String("mode", "", "job or invoice (default from config)")
	asJSON := fs.Bool("json", false, "print the view as JSON")
	dryRun := fs.Bool("dry-run", false, "print the prompt without calling the completion service")
	devMode := fs.Bool("dev", false, "enable developer mode")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 2
	}
	// stdout carries only the verdict; logs go to stderr or the log file
	if cfg.Log.File == "" {
		cfg.Log.Level = "warn"
	}
	logger, closer, err := logging.NewTo(stderr, cfg.Log, false)
	if err != nil {
		fmt.Fprintf(stderr, "logging: %v\n", err)
		return 2
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	svc, err := bootstrap.Build(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(stderr, "bootstrap: %v\n", err)
		return 2
	}
	mode := svc.DefaultMode
	if *modeFlag != "" {
		if mode, err = model.ParseResolveMode(*modeFlag); err != nil {
			fmt.Fprintln(stderr, err)
			return 2
		}
	}

	if *dryRun {
		out, err := svc.Facade.HandlePreview(ctx, *id, mode)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		fmt.Fprintln(stdout, out)
		return 0
	}

	view := svc.Facade.HandleReview(ctx, *id, mode)
	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(view)
	} else {
		fmt.Fprintln(stdout, application.FormatText(view))
	}
	switch view.Status {
	case model.ViewOK:
		return 0
	case model.ViewWarning:
		return 2
	default:
		return 1
	}
}
