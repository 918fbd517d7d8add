package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"qualcode/internal/auth"
	"qualcode/internal/cache"
	"qualcode/internal/config"
	codingRepo "qualcode/internal/domain/repositories/coding"
	codingSvc "qualcode/internal/domain/services/coding"
	"qualcode/internal/handler"
	"qualcode/internal/middleware"
	"qualcode/internal/repository/memory"
	"qualcode/internal/repository/postgres"
	postgresCoding "qualcode/internal/repository/postgres/coding"
	"qualcode/internal/seed"
	serviceCoding "qualcode/internal/service/coding"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	logger, closeLog, err := config.NewLogger(cfg, "server")
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer closeLog()
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	verifier, err := newVerifier(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer verifier.Close()

	ctx := context.Background()
	checks := map[string]handler.Pinger{}

	// Repositories: Postgres when configured, in-memory otherwise
	var repos serviceCoding.Repositories
	inMemory := cfg.DatabaseURL == ""
	if inMemory {
		if cfg.Environment == "prod" {
			log.Fatalf("DATABASE_URL is required in production")
		}
		store := memory.NewStore()
		repos = memoryRepositories(store)
		logger.Warn("DATABASE_URL not set - using in-memory store (data is lost on restart)")
	} else {
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to create connection pool: %v", err)
		}
		defer pool.Close()

		logger.Info("database connected",
			"max_conns", 25,
			"min_conns", 5,
		)

		tables := postgres.NewTableNames(cfg.TablePrefix)
		if err := postgres.RunSchema(ctx, pool, tables, cfg.TablePrefix); err != nil {
			log.Fatalf("Failed to run schema: %v", err)
		}

		repos = postgresRepositories(&postgres.RepositoryConfig{
			Pool:   pool,
			Tables: tables,
			Logger: logger,
		})
		checks["database"] = pool
	}

	// Snapshot cache
	var snapshotCache codingRepo.SnapshotCache = cache.NoopSnapshotCache{}
	if cfg.RedisURL != "" {
		redisCache, err := cache.NewRedisSnapshotCache(cfg.RedisURL, cfg.SnapshotTTL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisCache.Close()
		snapshotCache = redisCache
		checks["redis"] = redisCache
		logger.Info("snapshot cache enabled", "ttl", cfg.SnapshotTTL.String())
	} else {
		logger.Info("REDIS_URL not set - snapshot cache disabled")
	}

	services, registry, err := serviceCoding.SetupServices(repos, snapshotCache, logger)
	if err != nil {
		log.Fatalf("Failed to set up services: %v", err)
	}

	// A fresh in-memory store is empty; give development a project to open
	if inMemory && cfg.Environment == "dev" {
		actor := codingSvc.Actor{UserID: cfg.DevUserID, Email: cfg.DevUserEmail}
		result, err := seed.NewSeeder(services, logger).SeedDemoProject(ctx, actor, "Remote Work Study")
		if err != nil {
			logger.Warn("demo project not seeded", "error", err)
		} else {
			logger.Info("demo project ready", "project_id", result.Project.ID, "user_id", actor.UserID)
		}
	}

	logger.Info("services initialized")

	mux := handler.NewRouter(services, registry, handler.NewHealthHandler(checks), logger)

	// Build middleware chain
	// Order: CORS → RequestLogger → Recovery → Auth → Routes
	var h http.Handler = mux
	h = middleware.Auth(verifier)(h)
	h = middleware.Recovery(logger)(h)
	h = middleware.RequestLogger(logger)(h)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Shut down gracefully on SIGINT/SIGTERM so in-flight mutations complete
	shutdownCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-shutdownCtx.Done()
		logger.Info("server shutting down")
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(timeoutCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// newVerifier prefers JWKS (hosted identity provider) over a shared secret
func newVerifier(cfg *config.Config, logger *slog.Logger) (auth.JWTVerifier, error) {
	if cfg.JWKSURL != "" {
		return auth.NewJWKSVerifier(cfg.JWKSURL, logger)
	}
	return auth.NewHMACVerifier(cfg.JWTSecret, logger)
}

func postgresRepositories(repoConfig *postgres.RepositoryConfig) serviceCoding.Repositories {
	return serviceCoding.Repositories{
		Projects:      postgresCoding.NewProjectRepository(repoConfig),
		Collaborators: postgresCoding.NewCollaboratorRepository(repoConfig),
		Documents:     postgresCoding.NewDocumentRepository(repoConfig),
		Codes:         postgresCoding.NewCodeRepository(repoConfig),
		Assignments:   postgresCoding.NewAssignmentRepository(repoConfig),
		Annotations:   postgresCoding.NewAnnotationRepository(repoConfig),
		Codebooks:     postgresCoding.NewCodebookRepository(repoConfig),
		Themes:        postgresCoding.NewThemeRepository(repoConfig),
		TxManager:     postgres.NewTransactionManager(repoConfig.Pool, repoConfig.Logger),
	}
}

func memoryRepositories(store *memory.Store) serviceCoding.Repositories {
	return serviceCoding.Repositories{
		Projects:      store.Projects(),
		Collaborators: store.Collaborators(),
		Documents:     store.Documents(),
		Codes:         store.Codes(),
		Assignments:   store.Assignments(),
		Annotations:   store.Annotations(),
		Codebooks:     store.Codebooks(),
		Themes:        store.Themes(),
		TxManager:     store.TransactionManager(),
	}
}
