package app

import (
	"context"
	"fmt"

	"github.com/upb/identity-core/config"
	"github.com/upb/identity-core/handlers"
	"github.com/upb/identity-core/internal/observability"
	"github.com/upb/identity-core/middleware"
	"github.com/upb/identity-core/repositories"
	"github.com/upb/identity-core/repositories/postgres"
	"github.com/upb/identity-core/services"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB
	Logger *zap.Logger

	// Repository Factory
	RepoFactory *postgres.RepositoryFactory

	// Repositories
	Companies    repositories.CompanyRepository
	Users        repositories.UserRepository
	Sessions     repositories.SessionRepository
	SessionIndex repositories.SessionIndexRepository
	TxManager    repositories.TransactionManager

	// Services
	Directory *services.DirectoryService
	Resolver  *services.ResolverService
	Tokens    *services.TokenService
	Session   *services.SessionService
	Switcher  *services.SwitcherService
	TwoFactor *services.TwoFactorService

	// HTTP layer
	AuthMiddleware   *middleware.AuthMiddleware
	HealthHandler    *handlers.HealthHandler
	SessionHandler   *handlers.SessionHandler
	SwitchHandler    *handlers.SwitchHandler
	TwoFactorHandler *handlers.TwoFactorHandler
}

// NewDependencies creates and wires up all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	// Initialize PostgreSQL
	if err := deps.initDatabase(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Initialize repositories
	if err := deps.initRepositories(); err != nil {
		return nil, fmt.Errorf("failed to initialize repositories: %w", err)
	}

	// Initialize services and handlers
	deps.initServices(cfg)
	deps.initHandlers()

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initDatabase initializes the PostgreSQL database connection and factory
func (d *Dependencies) initDatabase(ctx context.Context, cfg *config.Config) error {
	factory, err := postgres.NewRepositoryFactory(cfg, d.Logger)
	if err != nil {
		return fmt.Errorf("failed to create repository factory: %w", err)
	}

	d.RepoFactory = factory
	d.DB = factory.GetDB()

	// Test the connection
	if err := d.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	// Bootstrap the public-schema tables
	if err := d.DB.InitSchema(ctx); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	d.Logger.Info("database connection established",
		zap.String("connection", cfg.Database.LogString()))

	return nil
}

// initRepositories initializes all repository instances
func (d *Dependencies) initRepositories() error {
	repos := d.RepoFactory.NewRepositories()

	d.Companies = repos.Companies
	d.Users = repos.Users
	d.Sessions = repos.Sessions
	d.SessionIndex = repos.SessionIndex
	d.TxManager = d.RepoFactory.GetTransactionManager()

	d.Logger.Info("repositories initialized")
	return nil
}

// initServices wires up the domain services
func (d *Dependencies) initServices(cfg *config.Config) {
	d.Directory = services.NewDirectoryService(d.Companies, d.Logger)
	d.Tokens = services.NewTokenService(cfg.Auth, d.Logger)
	d.Resolver = services.NewResolverService(d.Directory, d.Users, d.Sessions, d.SessionIndex, d.Logger)
	d.Session = services.NewSessionService(d.Resolver, d.Tokens, d.Sessions, d.SessionIndex, d.TxManager, d.Logger)
	d.Switcher = services.NewSwitcherService(d.Directory, d.Tokens, d.Users, d.Session, d.Logger)
	d.TwoFactor = services.NewTwoFactorService(d.Resolver, d.Users, cfg.Auth, d.Logger)

	d.Logger.Info("services initialized")
}

// initHandlers wires up the HTTP layer
func (d *Dependencies) initHandlers() {
	d.AuthMiddleware = middleware.NewAuthMiddleware(d.Tokens, d.Logger)
	d.HealthHandler = handlers.NewHealthHandler(d.DB.DB, d.Logger)
	d.SessionHandler = handlers.NewSessionHandler(d.Session, d.Logger)
	d.SwitchHandler = handlers.NewSwitchHandler(d.Switcher, d.Logger)
	d.TwoFactorHandler = handlers.NewTwoFactorHandler(d.TwoFactor, d.Logger)
}

// NewLogger builds the application logger from config
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	return observability.NewLogger(cfg.Observability)
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	// Close database connection
	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
	}

	// Sync logger
	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}
