package budget

import (
	"log"

	"github.com/minhdangfptu/myFEvent-sub001/internal/db"
	"github.com/minhdangfptu/myFEvent-sub001/internal/directory"
	"github.com/minhdangfptu/myFEvent-sub001/internal/notify"
)

func Init() {
	if err := db.EnsureSchema(db.DB, "budget"); err != nil {
		log.Fatal("Failed to ensure schema budget: ", err)
	}

	if err := db.DB.AutoMigrate(
		&BudgetPlan{},
		&BudgetItem{},
		&AuditEntry{},
	); err != nil {
		log.Fatal("Failed to auto-migrate budget tables: ", err)
	}

	Engine = &Workflow{
		Store:   NewGormStore(),
		Events:  directory.Gorm{},
		Members: directory.Gorm{},
		Notify:  notify.Outbox{},
	}

	log.Println("Budget module initialized")
}

// UseExpenseLookup plugs the expense module's read side into plan views and
// statistics. Called by the expense module during its own Init.
func UseExpenseLookup(lookup ExpenseLookup) {
	Engine.Expenses = lookup
}
