// Command migrate applies or rolls back the schema migrations outside the
// server process.
package main

import (
	"flag"
	"log"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	migrationsPath := flag.String("migrations", "./migrations", "path to migration files")
	databaseURL := flag.String("database", "sqlite3://./data/console.db", "database URL")
	down := flag.Bool("down", false, "roll back instead of applying")
	flag.Parse()

	m, err := migrate.New("file://"+*migrationsPath, *databaseURL)
	if err != nil {
		log.Fatalf("Failed to create migrate instance: %v", err)
	}

	if *down {
		if err := m.Down(); err != nil && err != migrate.ErrNoChange {
			log.Fatalf("Migration down failed: %v", err)
		}
		log.Println("Migrations rolled back.")
		return
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		log.Fatalf("Migration up failed: %v", err)
	}
	log.Println("Migrations applied.")
}
