package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strconv"

	_ "modernc.org/sqlite"

	"github.com/chrissnell/remotetide/internal/log"
	"github.com/chrissnell/remotetide/internal/storage/sqlite"
	"github.com/chrissnell/remotetide/pkg/migrate"
)

func main() {
	flag.Usage = showHelp
	archivePath := flag.String("archive", "", "Path to the run archive (SQLite)")
	command := flag.String("command", "status", "Migration command: up, to, version, status")
	targetVersion := flag.String("target", "", "Target version for the to command")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	flag.Parse()

	if *archivePath == "" {
		fmt.Fprintf(os.Stderr, "Error: -archive flag is required\n")
		showHelp()
		os.Exit(1)
	}

	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	db, err := sql.Open("sqlite", sqlite.DSN(*archivePath))
	if err != nil {
		log.Fatalf("Failed to open archive: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("Failed to open archive: %v", err)
	}

	migrator := sqlite.Migrator(db, log.GetSugaredLogger())

	switch *command {
	case "up":
		err = migrator.MigrateUp(ctx)
	case "to":
		target, convErr := strconv.Atoi(*targetVersion)
		if convErr != nil {
			log.Fatalf("-target must be a schema version: %v", convErr)
		}
		err = migrator.MigrateTo(ctx, target)
	case "version":
		version, err := migrator.GetCurrentVersion(ctx)
		if err != nil {
			log.Fatalf("Failed to get current version: %v", err)
		}
		fmt.Printf("Current version: %d\n", version)
		return
	case "status":
		err = showStatus(ctx, migrator)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", *command)
		showHelp()
		os.Exit(1)
	}

	if err != nil {
		log.Fatalf("Migration command failed: %v", err)
	}
}

func showStatus(ctx context.Context, migrator *migrate.Migrator) error {
	currentVersion, err := migrator.GetCurrentVersion(ctx)
	if err != nil {
		return err
	}

	pending, err := migrator.GetPendingMigrations(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Current version: %d\n", currentVersion)
	fmt.Printf("Pending migrations: %d\n", len(pending))
	for _, migration := range pending {
		fmt.Printf("  %d: %s\n", migration.Version, migration.Name)
	}
	return nil
}

func showHelp() {
	fmt.Println("Run archive schema tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  archive-migrate -archive runs.db [-command status|up|to|version] [-target N]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  status             Show the current version and pending migrations")
	fmt.Println("  up                 Apply all pending migrations")
	fmt.Println("  to                 Migrate up or down to -target")
	fmt.Println("  version            Show current schema version")
}
