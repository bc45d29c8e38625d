package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	// SQLite is registered by golang-migrate's sqlite driver via
	// modernc.org/sqlite.
	_ "github.com/lib/pq"

	"github.com/hashicorp-forge/notion-mirror/internal/migrate"
)

func main() {
	driver := flag.String("driver", "postgres", "Database driver (postgres|sqlite)")
	dsn := flag.String("dsn", "", "Database connection string")
	help := flag.Bool("help", false, "Show help message")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Applies the schema of the Notion cache database.\n\n")
		fmt.Fprintf(os.Stderr, "OPTIONS:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEXAMPLES:\n\n")
		fmt.Fprintf(os.Stderr, "  PostgreSQL:\n")
		fmt.Fprintf(os.Stderr, "    %s -driver=postgres -dsn=\"host=localhost user=postgres password=postgres dbname=notion_mirror port=5432 sslmode=disable\"\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  SQLite:\n")
		fmt.Fprintf(os.Stderr, "    %s -driver=sqlite -dsn=\"notion-mirror.db\"\n\n", os.Args[0])
	}

	flag.Parse()

	if *help {
		flag.Usage()
		os.Exit(0)
	}

	if *dsn == "" {
		log.Fatal("Error: -dsn flag is required\n\nRun with -help for usage information.")
	}

	if *driver != "postgres" && *driver != "sqlite" {
		log.Fatalf("Error: unsupported driver '%s' (must be 'postgres' or 'sqlite')\n", *driver)
	}

	log.Printf("Connecting to %s database...\n", *driver)
	sqlDB, err := sql.Open(*driver, *dsn)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v\n", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v\n", err)
	}

	log.Printf("Running migrations...\n")
	if err := migrate.RunMigrations(sqlDB, *driver); err != nil {
		log.Fatalf("Migration failed: %v\n", err)
	}

	version, dirty, err := migrate.GetMigrationVersion(sqlDB, *driver)
	if err != nil {
		log.Fatalf("Failed to read migration version: %v\n", err)
	}
	log.Printf("Migrations complete (version=%d dirty=%t)\n", version, dirty)
}
