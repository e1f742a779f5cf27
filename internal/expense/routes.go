package expense

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

	r.Route("/{event_id}/{plan_id}/items/{item_id}", func(r chi.Router) {
		r.Put("/", ReportExpense)
		r.Post("/toggle-paid", TogglePaid)
		r.Post("/submit", SubmitExpense)
		r.Post("/undo-submit", UndoSubmitExpense)
	})

	return r
}
