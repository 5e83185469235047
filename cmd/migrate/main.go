// Command migrate manages the tradebooks schema: master data, invoice
// documents, and the two append-only trails (stock movements and ledger
// entries).
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"tradebooks/internal/config"
)

const defaultSource = "file://db/migrations"

func usage() {
	fmt.Println(`Usage: migrate <command>

Commands:
  up          apply all pending migrations
  down        revert everything, including both append-only trails
  steps N     apply N migrations; a negative N reverts
  version     print the current schema version and dirty flag
  force V     mark version V as applied after a failed run`)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("migrate: loading config: %v", err)
	}

	source := os.Getenv("TRADEBOOKS_MIGRATIONS")
	if source == "" {
		source = defaultSource
	}

	m, err := migrate.New(source, cfg.DB.DSN())
	if err != nil {
		log.Fatalf("migrate: opening %s: %v", source, err)
	}
	defer m.Close()

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "up":
		if err := m.Up(); err != nil && err != migrate.ErrNoChange {
			log.Fatalf("migrate: up: %v", err)
		}
		log.Println("migrate: schema is up to date")

	case "down":
		if err := m.Down(); err != nil && err != migrate.ErrNoChange {
			log.Fatalf("migrate: down: %v", err)
		}
		log.Println("migrate: schema reverted")

	case "steps":
		if len(os.Args) < 3 {
			log.Fatal("migrate: steps requires a count")
		}
		n, err := strconv.Atoi(os.Args[2])
		if err != nil {
			log.Fatalf("migrate: invalid step count %q: %v", os.Args[2], err)
		}
		if err := m.Steps(n); err != nil && err != migrate.ErrNoChange {
			log.Fatalf("migrate: steps: %v", err)
		}
		log.Printf("migrate: moved %d steps", n)

	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			log.Fatalf("migrate: version: %v", err)
		}
		fmt.Printf("version: %d, dirty: %v\n", version, dirty)

	case "force":
		if len(os.Args) < 3 {
			log.Fatal("migrate: force requires a version")
		}
		v, err := strconv.Atoi(os.Args[2])
		if err != nil {
			log.Fatalf("migrate: invalid version %q: %v", os.Args[2], err)
		}
		if err := m.Force(v); err != nil {
			log.Fatalf("migrate: force: %v", err)
		}
		log.Printf("migrate: forced version to %d", v)

	default:
		fmt.Printf("unknown command: %s\n", os.Args[1])
		usage()
		os.Exit(1)
	}
}
