// draftforge - AI-assisted content authoring backend
// Task 1.1: Entry point
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/matiasleandrokruk/draftforge/internal/domain/identity"
	"github.com/matiasleandrokruk/draftforge/internal/infra/config"
	"github.com/matiasleandrokruk/draftforge/internal/infra/sqlite"
	"github.com/matiasleandrokruk/draftforge/internal/server"
	"github.com/matiasleandrokruk/draftforge/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("draftforge", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	showVersion := fs.Bool("version", false, "Show version information")
	showHelp := fs.Bool("help", false, "Show help")
	port := fs.Int("port", 8080, "HTTP listen port")
	dbPath := fs.String("db", "", "SQLite database path (overrides DRAFTFORGE_DB_PATH)")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *showVersion {
		fmt.Fprintln(out, version.String()) //nolint:errcheck
		return 0
	}

	if *showHelp {
		printHelp(out)
		return 0
	}

	if fs.Arg(0) == "serve" || fs.NArg() == 0 {
		return serve(out, *port, *dbPath)
	}

	fmt.Fprintf(out, "unknown command %q\n", fs.Arg(0)) //nolint:errcheck
	return 2
}

func serve(out io.Writer, port int, dbPath string) int {
	cfg := config.Load()
	if dbPath != "" {
		cfg.DBPath = dbPath
	}

	db, err := sqlite.NewDB(cfg.DBPath)
	if err != nil {
		fmt.Fprintf(out, "database open failed: %v\n", err) //nolint:errcheck
		return 1
	}

	if err := sqlite.MigrateUp(db); err != nil {
		fmt.Fprintf(out, "migrations failed: %v\n", err) //nolint:errcheck
		return 1
	}

	// Provision the configured admin so the instance is usable out of the box.
	if cfg.AdminPassword != "" {
		users := identity.NewService(db)
		if err := users.EnsureUser(context.Background(), cfg.AdminUser, cfg.AdminPassword, "admin"); err != nil {
			fmt.Fprintf(out, "admin provisioning failed: %v\n", err) //nolint:errcheck
			return 1
		}
	}

	srvCfg := server.DefaultConfig()
	srvCfg.Port = port
	srv, err := server.NewServer(db, cfg, srvCfg)
	if err != nil {
		fmt.Fprintf(out, "server setup failed: %v\n", err) //nolint:errcheck
		return 1
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(context.Background())
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		fmt.Fprintf(out, "received %s\n", sig) //nolint:errcheck
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(out, "server error: %v\n", err) //nolint:errcheck
			return 1
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		fmt.Fprintf(out, "shutdown error: %v\n", err) //nolint:errcheck
		return 1
	}
	return 0
}

func printHelp(out io.Writer) {
	helpText := `draftforge - AI-assisted content authoring backend

Usage:
  draftforge [options] [command]

Options:
  --version    Show version information
  --help       Show this help message
  --port       HTTP listen port (default 8080)
  --db         SQLite database path

Commands:
  serve        Start the server (default)

Examples:
  draftforge --version
  draftforge --port 8080 serve
  draftforge --db ./draftforge.sqlite serve`
	fmt.Fprintln(out, helpText) //nolint:errcheck
}
