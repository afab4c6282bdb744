package main

import (
	"errors"
	"flag"
	"log"

	"wellness_shop/internal/pkg/config"
	"wellness_shop/pkg/database"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	down := flag.Bool("down", false, "roll back the last migration")
	force := flag.Int("force", -1, "force the schema version after a failed migration")
	flag.Parse()

	config.LoadConfig()

	m, err := migrate.New("file://migrations", database.MigrationDSN())
	if err != nil {
		log.Fatal(err)
	}
	defer m.Close()

	if *force >= 0 {
		if err := m.Force(*force); err != nil {
			log.Fatal("Failed to force version:", err)
		}
		log.Printf("Forced version %d", *force)
		return
	}

	if *down {
		err = m.Steps(-1)
	} else {
		err = m.Up()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		// dirty 状态需要人工确认后用 -force 修复
		log.Fatal(err)
	}

	version, dirty, _ := m.Version()
	log.Printf("Migration successful, version=%d dirty=%v", version, dirty)
}
