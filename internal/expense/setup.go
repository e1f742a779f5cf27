package expense

import (
	"log"

	"github.com/minhdangfptu/myFEvent-sub001/internal/budget"
	"github.com/minhdangfptu/myFEvent-sub001/internal/db"
	"github.com/minhdangfptu/myFEvent-sub001/internal/notify"
)

func Init() {
	if err := db.EnsureSchema(db.DB, "expense"); err != nil {
		log.Fatal("Failed to ensure schema expense: ", err)
	}

	if err := db.DB.AutoMigrate(&Record{}); err != nil {
		log.Fatal("Failed to auto-migrate expense tables: ", err)
	}

	store := NewGormStore()
	Engine = &Reconciler{
		Expenses: store,
		Budgets:  budget.NewGormStore(),
		Notify:   notify.Outbox{},
	}

	// Plan views and statistics read actuals through this bridge.
	budget.UseExpenseLookup(Lookup{Store: store})

	log.Println("Expense module initialized")
}
