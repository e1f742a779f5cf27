package notify

import (
	"log"

	"github.com/minhdangfptu/myFEvent-sub001/internal/db"
)

func Init() {
	if err := db.EnsureSchema(db.DB, "notify"); err != nil {
		log.Fatal("Failed to ensure schema notify: ", err)
	}

	if err := db.DB.AutoMigrate(&Notification{}); err != nil {
		log.Fatal("Failed to auto-migrate notify tables: ", err)
	}

	log.Println("Notify module initialized")
}
