package directory

import (
	"log"

	"github.com/minhdangfptu/myFEvent-sub001/internal/db"
)

func Init() {
	if err := db.EnsureSchema(db.DB, "directory"); err != nil {
		log.Fatal("Failed to ensure schema directory: ", err)
	}

	if err := db.DB.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		log.Fatal("Failed to enable uuid-ossp extension: ", err)
	}

	if err := db.DB.AutoMigrate(
		&Event{},
		&Department{},
		&Member{},
		&Session{},
	); err != nil {
		log.Fatal("Failed to auto-migrate directory tables: ", err)
	}

	log.Println("Directory module initialized")
}
