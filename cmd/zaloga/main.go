package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/erazemk/zaloga/internal/api"
	"github.com/erazemk/zaloga/internal/auth"
	"github.com/erazemk/zaloga/internal/config"
	"github.com/erazemk/zaloga/internal/db"
	"github.com/erazemk/zaloga/internal/imaging"
	"github.com/erazemk/zaloga/internal/metrics"
	"github.com/erazemk/zaloga/internal/store"
	"github.com/erazemk/zaloga/internal/web"
)

// levelRouter is a slog.Handler that routes INFO/WARN to stdout and ERROR+ to stderr.
type levelRouter struct {
	stdout slog.Handler
	stderr slog.Handler
}

func (lr *levelRouter) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelInfo
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return lr.stderr.Handle(ctx, r)
	}
	return lr.stdout.Handle(ctx, r)
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithAttrs(attrs),
		stderr: lr.stderr.WithAttrs(attrs),
	}
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithGroup(name),
		stderr: lr.stderr.WithGroup(name),
	}
}

// setupLogger installs the default logger. When logPath is set, every record
// is also appended to that file. The returned cleanup may be nil.
func setupLogger(logPath string) (func(), error) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	var cleanup func()

	stdoutW := io.Writer(os.Stdout)
	stderrW := io.Writer(os.Stderr)

	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		stdoutW = io.MultiWriter(os.Stdout, f)
		stderrW = io.MultiWriter(os.Stderr, f)
	}

	handler := &levelRouter{
		stdout: slog.NewTextHandler(stdoutW, opts),
		stderr: slog.NewTextHandler(stderrW, opts),
	}
	slog.SetDefault(slog.New(handler))
	return cleanup, nil
}

type flags struct {
	configPath string
	addr       string
	dataDir    string
	logPath    string
}

func parseFlags(args []string) (*flags, error) {
	fs := flag.NewFlagSet("zaloga", flag.ContinueOnError)
	f := &flags{}

	fs.StringVar(&f.configPath, "config", "", "")
	fs.StringVar(&f.configPath, "c", "", "")
	fs.StringVar(&f.addr, "addr", "", "")
	fs.StringVar(&f.addr, "a", "", "")
	fs.StringVar(&f.dataDir, "data", "", "")
	fs.StringVar(&f.dataDir, "d", "", "")
	fs.StringVar(&f.logPath, "log", "", "")
	fs.StringVar(&f.logPath, "l", "", "")

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: zaloga [flags]

Flags:
  -c, -config <path>      YAML config file (default: none, defaults and ZALOGA_* env only)
  -a, -addr <host:port>   listen address (default: :8080)
  -d, -data <dir>         data directory for inventory, history, accounts and photos (default: data)
  -l, -log <path>         log file path (default: no file, stdout/stderr only)
  -h, -help               show this help and exit
`)
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		fs.Usage()
		return nil, fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}
	return f, nil
}

// apply overrides config values with the flags that were set.
func (f *flags) apply(cfg *config.Config) {
	if f.addr != "" {
		cfg.Server.Addr = f.addr
	}
	if f.dataDir != "" {
		cfg.Data.Dir = f.dataDir
	}
	if f.logPath != "" {
		cfg.Log.File = f.logPath
	}
}

func main() {
	f, err := parseFlags(os.Args[1:])
	if err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(f.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	f.apply(cfg)

	closeLog, err := setupLogger(cfg.Log.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if closeLog != nil {
		defer closeLog()
	}

	if err := run(cfg); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	if err := os.MkdirAll(cfg.Data.Dir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	database, err := db.Open(cfg.Data.AccountsPath())
	if err != nil {
		return fmt.Errorf("opening accounts database: %w", err)
	}
	defer database.Close()

	if err := db.EnsureSchema(database); err != nil {
		return fmt.Errorf("ensuring database schema: %w", err)
	}
	slog.Info("accounts database ready", "path", cfg.Data.AccountsPath())

	jwtSecret := cfg.Auth.JWTSecret
	if jwtSecret == "" {
		jwtSecret, err = store.GetJWTSecret(context.Background(), database)
		if err != nil {
			return fmt.Errorf("loading JWT secret: %w", err)
		}
	}

	m := metrics.New()

	ledger, err := store.OpenLedger(cfg.Data.LedgerPath(), store.WithAppendHook(m.ObserveMovement))
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	inventory, err := store.OpenInventory(cfg.Data.InventoryPath(), ledger)
	if err != nil {
		return fmt.Errorf("opening inventory: %w", err)
	}
	slog.Info("inventory loaded", "path", cfg.Data.InventoryPath(), "items", inventory.Len())

	photos, err := imaging.NewPhotoStore(cfg.Data.UploadsPath())
	if err != nil {
		return fmt.Errorf("opening photo directory: %w", err)
	}

	accounts := &auth.Accounts{
		DB:       database,
		Secret:   jwtSecret,
		TokenTTL: cfg.Auth.TokenTTL,
		CodeTTL:  cfg.Auth.CodeTTL,
	}

	apiRouter := api.NewRouter(api.Deps{
		Accounts:    accounts,
		Inventory:   inventory,
		Ledger:      ledger,
		Photos:      photos,
		UploadLimit: cfg.Limits.UploadBytes,
		ReportDays:  cfg.Report.RangeDays,
		LoginRate:   rate.Limit(cfg.Limits.LoginRPS),
		LoginBurst:  cfg.Limits.LoginBurst,
	})
	webRouter, err := web.NewRouter(web.Deps{
		Accounts:    accounts,
		Inventory:   inventory,
		Ledger:      ledger,
		Photos:      photos,
		UploadLimit: cfg.Limits.UploadBytes,
		ReportDays:  cfg.Report.RangeDays,
		LoginRate:   rate.Limit(cfg.Limits.LoginRPS),
		LoginBurst:  cfg.Limits.LoginBurst,
	})
	if err != nil {
		return fmt.Errorf("setting up web router: %w", err)
	}

	// API routes take priority, web routes handle the rest.
	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("GET /metrics", m.Handler())
	mux.Handle("/", webRouter)

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.LoggingMiddleware(m.Middleware(mux)),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go accounts.PruneEvery(ctx, time.Hour)

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", cfg.Server.Addr, "data", cfg.Data.Dir)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	slog.Info("server stopped, closing database")
	return nil
}
