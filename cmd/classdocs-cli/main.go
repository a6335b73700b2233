package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ivopashov/classdocs/internal/auth"
	"github.com/ivopashov/classdocs/internal/snowflake"
)

// Set via -ldflags at build time.
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "migrate":
		if hasFlag("--help", os.Args[2:]) {
			fmt.Println("Usage: classdocs-cli migrate")
			fmt.Println()
			fmt.Println("Run database migrations from the migrations/ directory.")
			fmt.Println()
			fmt.Println("Environment:")
			fmt.Println("  DATABASE_URL  PostgreSQL connection string (required)")
			return
		}
		os.Exit(runMigrate())
	case "seed":
		if hasFlag("--help", os.Args[2:]) {
			fmt.Println("Usage: classdocs-cli seed")
			fmt.Println()
			fmt.Println("Seed the database with demo data: 3 users, a group tree, a document root, and documents.")
			fmt.Println()
			fmt.Println("Environment:")
			fmt.Println("  DATABASE_URL  PostgreSQL connection string (required)")
			return
		}
		os.Exit(runSeed())
	case "health":
		if hasFlag("--help", os.Args[2:]) {
			fmt.Println("Usage: classdocs-cli health")
			fmt.Println()
			fmt.Println("Check if the classdocs server is running.")
			fmt.Println()
			fmt.Println("Environment:")
			fmt.Println("  SERVER_URL  Server base URL (default: http://localhost:8080)")
			return
		}
		os.Exit(runHealth())
	case "version":
		fmt.Printf("classdocs-cli %s\n", version)
	case "--help", "-h", "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: classdocs-cli <command> [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  migrate  Run database migrations")
	fmt.Println("  seed     Seed demo data (users, groups, document root, documents)")
	fmt.Println("  health   Check if the server is running")
	fmt.Println("  version  Print version info")
	fmt.Println()
	fmt.Println("Run 'classdocs-cli <command> --help' for details on a command.")
}

func hasFlag(flag string, args []string) bool {
	for _, a := range args {
		if a == flag {
			return true
		}
	}
	return false
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		fmt.Fprintf(os.Stderr, "error: %s environment variable is required\n", key)
		os.Exit(1)
	}
	return v
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// --- migrate ---

func runMigrate() int {
	dbURL := requireEnv("DATABASE_URL")

	fmt.Println("connecting to database...")
	m, err := migrate.New("file://migrations", dbURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: migration init failed: %v\n", err)
		return 1
	}
	defer m.Close()

	fmt.Println("running migrations...")
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		fmt.Fprintf(os.Stderr, "error: migration failed: %v\n", err)
		return 1
	}

	v, dirty, _ := m.Version()
	if err == migrate.ErrNoChange {
		fmt.Printf("no new migrations (current version: %d)\n", v)
	} else {
		fmt.Printf("migrations applied (version: %d, dirty: %v)\n", v, dirty)
	}
	return 0
}

// --- seed ---

func runSeed() int {
	dbURL := requireEnv("DATABASE_URL")
	ctx := context.Background()

	fmt.Println("connecting to database...")
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: database connection failed: %v\n", err)
		return 1
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: database ping failed: %v\n", err)
		return 1
	}

	sf, err := snowflake.NewGenerator(0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: snowflake init failed: %v\n", err)
		return 1
	}

	// Hash passwords for demo users.
	fmt.Println("hashing passwords...")
	adminHash, err := auth.HashPassword("admin123")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: hashing password: %v\n", err)
		return 1
	}
	teacherHash, err := auth.HashPassword("teach123")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: hashing password: %v\n", err)
		return 1
	}
	studentHash, err := auth.HashPassword("study123")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: hashing password: %v\n", err)
		return 1
	}

	// Generate IDs.
	adminID := sf.Generate()
	teacherID := sf.Generate()
	studentID := sf.Generate()
	yearGroupID := sf.Generate()
	scienceGroupID := sf.Generate()
	rootID := sf.Generate()
	welcomeDocID := sf.Generate()
	notesDocID := sf.Generate()
	templateID := sf.Generate()

	now := time.Now()

	tx, err := pool.Begin(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: starting transaction: %v\n", err)
		return 1
	}
	defer tx.Rollback(ctx)

	// Users.
	fmt.Println("creating users...")
	_, err = tx.Exec(ctx,
		`INSERT INTO users (id, username, display_name, role, password_hash, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6), ($7,$8,$9,$10,$11,$12), ($13,$14,$15,$16,$17,$18)
		 ON CONFLICT (id) DO NOTHING`,
		adminID.Int64(), "admin", "Admin", "Admin", adminHash, now,
		teacherID.Int64(), "ms_har", "Ms Harrison", "Teacher", teacherHash, now,
		studentID.Int64(), "sam", "Sam", "Student", studentHash, now,
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: creating users: %v\n", err)
		return 1
	}

	// Group tree: a year group with a nested subject group.
	fmt.Println("creating groups...")
	_, err = tx.Exec(ctx,
		`INSERT INTO groups (id, name, parent_id, created_at) VALUES ($1,$2,NULL,$3), ($4,$5,$6,$7)
		 ON CONFLICT (id) DO NOTHING`,
		yearGroupID.Int64(), "Year 9", now,
		scienceGroupID.Int64(), "Year 9 Science", yearGroupID.Int64(), now,
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: creating groups: %v\n", err)
		return 1
	}

	// Memberships. The teacher administers the year group; the student sits
	// in the nested subject group.
	fmt.Println("creating memberships...")
	_, err = tx.Exec(ctx,
		`INSERT INTO group_members (group_id, user_id, is_admin, joined_at) VALUES ($1,$2,true,$3), ($4,$5,false,$6)
		 ON CONFLICT (group_id, user_id) DO NOTHING`,
		yearGroupID.Int64(), teacherID.Int64(), now,
		scienceGroupID.Int64(), studentID.Int64(), now,
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: creating memberships: %v\n", err)
		return 1
	}

	// Document root shared read-only, with an RW grant on the year group.
	// Members of the nested science group inherit the grant.
	fmt.Println("creating document root...")
	_, err = tx.Exec(ctx,
		`INSERT INTO document_roots (id, name, shared_access, created_by, created_at) VALUES ($1,$2,$3,$4,$5)
		 ON CONFLICT (id) DO NOTHING`,
		rootID.Int64(), "Year 9 Coursework", "RO", teacherID.Int64(), now,
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: creating document root: %v\n", err)
		return 1
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO root_group_permissions (root_id, group_id, access) VALUES ($1,$2,$3)
		 ON CONFLICT (root_id, group_id) DO NOTHING`,
		rootID.Int64(), yearGroupID.Int64(), "RW",
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: creating root permission: %v\n", err)
		return 1
	}

	// Documents.
	fmt.Println("creating documents...")
	_, err = tx.Exec(ctx,
		`INSERT INTO documents (id, root_id, author_id, parent_id, title, content, created_at)
		 VALUES ($1,$2,$3,NULL,$4,$5,$6), ($7,$8,$9,$10,$11,$12,$13)
		 ON CONFLICT (id) DO NOTHING`,
		welcomeDocID.Int64(), rootID.Int64(), teacherID.Int64(), "Welcome", "Course outline and expectations.", now,
		notesDocID.Int64(), rootID.Int64(), teacherID.Int64(), welcomeDocID.Int64(), "Week 1 Notes", "Introduction to the scientific method.", now,
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: creating documents: %v\n", err)
		return 1
	}

	// Template.
	fmt.Println("creating template...")
	_, err = tx.Exec(ctx,
		`INSERT INTO templates (id, name, content, created_by, created_at) VALUES ($1,$2,$3,$4,$5)
		 ON CONFLICT (id) DO NOTHING`,
		templateID.Int64(), "Lesson Plan", "# Objectives\n\n# Materials\n\n# Activities\n", teacherID.Int64(), now,
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: creating template: %v\n", err)
		return 1
	}

	// A fresh student signup token.
	fmt.Println("creating signup token...")
	signupToken := uuid.NewString()
	_, err = tx.Exec(ctx,
		`INSERT INTO signup_tokens (token, role, created_by, expires_at, created_at) VALUES ($1,$2,$3,$4,$5)
		 ON CONFLICT (token) DO NOTHING`,
		signupToken, "Student", teacherID.Int64(), now.Add(14*24*time.Hour), now,
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: creating signup token: %v\n", err)
		return 1
	}

	if err := tx.Commit(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: committing transaction: %v\n", err)
		return 1
	}

	fmt.Println()
	fmt.Println("seed complete:")
	fmt.Printf("  users:        admin (password: admin123), ms_har (password: teach123), sam (password: study123)\n")
	fmt.Printf("  groups:       Year 9 > Year 9 Science\n")
	fmt.Printf("  root:         Year 9 Coursework (shared: RO, Year 9 grant: RW)\n")
	fmt.Printf("  documents:    Welcome, Week 1 Notes\n")
	fmt.Printf("  template:     Lesson Plan\n")
	fmt.Printf("  signup token: %s (Student, expires in 14 days)\n", signupToken)
	return 0
}

// --- health ---

func runHealth() int {
	serverURL := envOr("SERVER_URL", "http://localhost:8080")
	url := serverURL + "/health"

	fmt.Printf("checking %s ...\n", url)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	fmt.Printf("status: %d\n", resp.StatusCode)
	if len(body) > 0 {
		fmt.Printf("body:   %s\n", string(body))
	}

	if resp.StatusCode == http.StatusOK {
		fmt.Println("server is healthy")
		return 0
	}
	fmt.Fprintln(os.Stderr, "server returned non-200 status")
	return 1
}
