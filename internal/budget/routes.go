package budget

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/minhdangfptu/myFEvent-sub001/internal/directory"
	"github.com/minhdangfptu/myFEvent-sub001/internal/middleware"
)

func SetupRoutes() http.Handler {
	r := chi.NewRouter()
	sessionFetcher := directory.SessionInfo{}
	r.Use(middleware.SessionMiddleware(sessionFetcher))

	r.Route("/{event_id}/budgets", func(r chi.Router) {
		r.Get("/", ListEventBudgets)
		r.Get("/stats", GetEventStatistics)
		r.Get("/department/{department_id}", ListDepartmentBudgets)
		r.Post("/department/{department_id}", CreateBudget)

		r.Route("/{plan_id}", func(r chi.Router) {
			r.Get("/", GetBudget)
			r.Put("/", UpdateBudget)
			r.Delete("/", DeleteBudget)
			r.Post("/submit", SubmitBudget)
			r.Post("/recall", RecallBudget)
			r.Put("/review-draft", SaveReviewDraft)
			r.Post("/review", CompleteReview)
			r.Put("/categories", UpdateCategories)
			r.Put("/visibility", UpdateVisibility)
			r.Post("/send-to-members", SendToMembers)
			r.Put("/items/{item_id}/assign", AssignBudgetItem)
		})
	})

	return r
}
