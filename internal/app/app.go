package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/khrees2412/cvbuilder/internal/ai"
	"github.com/khrees2412/cvbuilder/internal/auth"
	"github.com/khrees2412/cvbuilder/internal/config"
	"github.com/khrees2412/cvbuilder/internal/database"
	"github.com/khrees2412/cvbuilder/internal/document"
	"github.com/khrees2412/cvbuilder/internal/export"
	"github.com/khrees2412/cvbuilder/internal/gateway"
	"github.com/khrees2412/cvbuilder/internal/history"
	"github.com/khrees2412/cvbuilder/internal/logging"
	"github.com/khrees2412/cvbuilder/internal/profile"
	"github.com/khrees2412/cvbuilder/pkg/models"
)

// App is the dependency container for the CLI application
type App struct {
	Config     *config.Config
	Log        *slog.Logger
	Store      database.Store
	Gateway    *gateway.Gateway
	History    *history.Log
	Profiles   *profile.Service
	Runner     *gateway.Runner
	Document   *document.Store
	AI         *ai.Client
	Exporter   *export.PDFExporter
	Tokens     *auth.TokenIssuer
	HTTPClient *http.Client

	unsubscribe func()
}

// NewApp loads the configuration from the default directory and wires
// every component
func NewApp(ctx context.Context) (*App, error) {
	dir, err := config.DefaultDir()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize config: %w", err)
	}
	return NewWithConfig(ctx, cfg, nil)
}

// NewWithConfig wires the application around cfg. Logs go to logOut, or
// stderr when nil.
func NewWithConfig(ctx context.Context, cfg *config.Config, logOut io.Writer) (*App, error) {
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, logOut)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	draft, err := document.LoadDraft(cfg.DraftPath())
	if err != nil {
		// a corrupt draft should not lock the user out
		logger.Warn("discarding unreadable draft", "path", cfg.DraftPath(), "error", err)
		draft = document.New().Snapshot()
	}

	httpClient := &http.Client{
		Timeout: 60 * time.Second,
	}

	a := &App{
		Config:   cfg,
		Log:      logger,
		Store:    store,
		Gateway:  gateway.New(store, logger),
		History:  history.New(store, logger),
		Profiles: profile.New(store, logger),
		Runner:   gateway.NewRunner(ctx),
		Document: document.NewFrom(draft),
		AI: ai.NewClient(ai.Config{
			Provider:     cfg.AIProvider,
			Model:        cfg.DefaultModel,
			OllamaURL:    cfg.OllamaURL,
			LMStudioURL:  cfg.LMStudioURL,
			OpenAIKey:    cfg.OpenAIKey,
			AnthropicKey: cfg.AnthropicKey,
			GeminiKey:    cfg.GeminiKey,
		}, httpClient, logger),
		Exporter:   export.NewPDFExporter(cfg.ChromePath, cfg.ExportDir, logger),
		Tokens:     auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, auth.DefaultTokenTTL),
		HTTPClient: httpClient,
	}

	draftPath := cfg.DraftPath()
	a.unsubscribe = a.Document.Subscribe(func(doc models.CVDocument) {
		if err := document.SaveDraft(draftPath, doc); err != nil {
			logger.Warn("failed to write draft", "path", draftPath, "error", err)
		}
	})

	return a, nil
}

func openStore(ctx context.Context, cfg *config.Config) (database.Store, error) {
	switch cfg.StoreDriver {
	case "", "sqlite":
		return database.OpenSQLite(cfg.DatabasePath())
	case "postgres":
		return database.OpenPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDriver, cfg.StoreDriver)
	}
}

// WithSession returns ctx scoped to the principal of the stored session
// token. Without a token ctx is returned unchanged and gateway calls fail
// with an authentication error.
func (a *App) WithSession(ctx context.Context) (context.Context, error) {
	if a.Config.SessionToken == "" {
		return ctx, nil
	}
	userID, err := a.Tokens.Parse(a.Config.SessionToken)
	if err != nil {
		a.Log.Debug("rejecting session token", "error", err)
		return ctx, ErrSessionExpired
	}
	return auth.WithPrincipal(ctx, userID), nil
}

// Close closes all resources
func (a *App) Close() error {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	if a.Runner != nil {
		a.Runner.Close()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
