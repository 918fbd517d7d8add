package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"qualcode/internal/auth"
	"qualcode/internal/cache"
	"qualcode/internal/config"
	codingSvc "qualcode/internal/domain/services/coding"
	"qualcode/internal/repository/postgres"
	postgresCoding "qualcode/internal/repository/postgres/coding"
	"qualcode/internal/seed"
	serviceCoding "qualcode/internal/service/coding"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed a demo project")
	clearData := flag.Bool("clear-data", false, "Delete all rows (keep schema)")
	title := flag.String("title", "Remote Work Study", "Title of the seeded demo project")
	tokenTTL := flag.Duration("token-ttl", 24*time.Hour, "Lifetime of the printed development token")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && (*dropTables || *clearData) {
		log.Fatalf("BLOCKED: Cannot run destructive operations (--drop-tables or --clear-data) in production environment")
	}
	if cfg.DatabaseURL == "" {
		log.Fatalf("DATABASE_URL is required")
	}

	logger, closeLog, err := config.NewLogger(cfg, "seed")
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer closeLog()

	switch {
	case *clearData:
		log.Printf("Clearing data only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	case *schemaOnly:
		log.Printf("Setting up schema only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	default:
		log.Printf("Seeding database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	}

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if *dropTables {
		log.Println("Dropping all tables...")
		if err := postgres.DropTables(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("Tables dropped")
	}

	log.Println("Ensuring database schema is up to date...")
	if err := postgres.RunSchema(ctx, pool, tables, cfg.TablePrefix); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("Schema ready")

	if *schemaOnly {
		log.Println("Schema setup complete (schema-only mode)")
		return
	}

	if *clearData {
		if err := clearAllData(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to clear data: %v", err)
		}
		log.Println("Data cleared successfully")
		return
	}

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	repos := serviceCoding.Repositories{
		Projects:      postgresCoding.NewProjectRepository(repoConfig),
		Collaborators: postgresCoding.NewCollaboratorRepository(repoConfig),
		Documents:     postgresCoding.NewDocumentRepository(repoConfig),
		Codes:         postgresCoding.NewCodeRepository(repoConfig),
		Assignments:   postgresCoding.NewAssignmentRepository(repoConfig),
		Annotations:   postgresCoding.NewAnnotationRepository(repoConfig),
		Codebooks:     postgresCoding.NewCodebookRepository(repoConfig),
		Themes:        postgresCoding.NewThemeRepository(repoConfig),
		TxManager:     postgres.NewTransactionManager(pool, logger),
	}

	// The server's Redis cache (if any) never saw this project, so no cache is needed here
	services, _, err := serviceCoding.SetupServices(repos, cache.NoopSnapshotCache{}, logger)
	if err != nil {
		log.Fatalf("Failed to set up services: %v", err)
	}

	actor := codingSvc.Actor{UserID: cfg.DevUserID, Email: cfg.DevUserEmail}
	result, err := seed.NewSeeder(services, logger).SeedDemoProject(ctx, actor, *title)
	if err != nil {
		log.Fatalf("Failed to seed demo project: %v", err)
	}

	log.Printf("Created project %s (%d documents, %d codes, %d assignments)",
		result.Project.ID, result.Documents, result.Codes, result.Assignments)

	if cfg.JWKSURL == "" && cfg.JWTSecret != "" {
		token, err := auth.IssueToken(cfg.JWTSecret, actor.UserID, actor.Email, *tokenTTL)
		if err != nil {
			log.Fatalf("Failed to issue development token: %v", err)
		}
		fmt.Printf("QUALCODE_API_TOKEN=%s\n", token)
		fmt.Printf("QUALCODE_PROJECT_ID=%s\n", result.Project.ID)
	}

	log.Println("Seeding complete!")
}

// clearAllData deletes every row, keeping the schema
func clearAllData(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	query := fmt.Sprintf("TRUNCATE %s CASCADE", strings.Join(tables.All(), ", "))
	if _, err := pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("truncate tables: %w", err)
	}
	return nil
}
