package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"
	"github.com/vbonduro/toyinv/internal/config"
	"github.com/vbonduro/toyinv/internal/db"
	"github.com/vbonduro/toyinv/internal/gateway"
	"github.com/vbonduro/toyinv/internal/gateway/remote"
	"github.com/vbonduro/toyinv/internal/imagestore/local"
	"github.com/vbonduro/toyinv/internal/inventory"
	"github.com/vbonduro/toyinv/internal/logging"
	"github.com/vbonduro/toyinv/internal/store"
	"github.com/vbonduro/toyinv/internal/view"
	"github.com/vbonduro/toyinv/internal/view/term"
	"github.com/vbonduro/toyinv/internal/web"
	"github.com/vbonduro/toyinv/internal/web/templates"
)

const usage = `Usage: toyinv [serve|ls] [flags]

Commands:
  serve   serve the inventory screen over HTTP (default)
  ls      print the toy list to the terminal

Flags:
`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg := config.Load()

	cmd := "serve"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}
	if cmd != "serve" && cmd != "ls" {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		return 2
	}

	flags := pflag.NewFlagSet("toyinv", pflag.ContinueOnError)
	cfg.BindFlags(flags)
	flags.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Printf("failed to initialize logger: %v", err)
		return 1
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gw, closeGateway, err := newGateway(cfg, logger)
	if err != nil {
		logger.Error("failed to open toy collection", "error", err)
		return 1
	}
	defer closeGateway()

	app := inventory.NewApp(gw, logger)

	if cmd == "ls" {
		return list(ctx, app, logger)
	}
	return serve(ctx, cfg, app, gw, logger)
}

// newGateway returns the remote collection when a gateway URL is configured,
// otherwise the local SQLite collection.
func newGateway(cfg *config.Config, logger *slog.Logger) (gateway.Gateway, func(), error) {
	if cfg.GatewayURL != "" {
		logger.Info("using remote toy collection", "url", cfg.GatewayURL, "timeout", cfg.GatewayTimeout)
		return remote.NewClient(cfg.GatewayURL, cfg.GatewayTimeout), func() {}, nil
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("using local toy collection", "db", cfg.DBPath)
	return store.NewToyStore(database), func() { closeDB(database, logger) }, nil
}

func closeDB(database *sql.DB, logger *slog.Logger) {
	if err := database.Close(); err != nil {
		logger.Error("failed to close database", "error", err)
	}
}

func serve(ctx context.Context, cfg *config.Config, app *inventory.App, gw gateway.Gateway, logger *slog.Logger) int {
	images, err := local.New(cfg.ImagePath)
	if err != nil {
		logger.Error("failed to initialize image store", "error", err)
		return 1
	}

	// Mount: the screen starts from a fresh snapshot. A failure here is
	// shown as a notice on first render.
	if err := app.Refresh(ctx); err != nil {
		logger.Warn("initial refresh failed", "error", err)
	}

	server := web.NewServer(app, gw, images, templates.FS, logger)
	if err := server.Run(ctx, cfg.ListenAddr); err != nil {
		logger.Error("server error", "error", err)
		return 1
	}
	return 0
}

func list(ctx context.Context, app *inventory.App, logger *slog.Logger) int {
	if err := app.Refresh(ctx); err != nil {
		logger.Error("failed to load toys", "error", err)
		fmt.Fprintln(os.Stderr, "Failed to load toys")
		return 1
	}
	if err := term.Render(os.Stdout, view.NewList(app.State().Toys, false)); err != nil {
		logger.Error("failed to print toys", "error", err)
		return 1
	}
	return 0
}
