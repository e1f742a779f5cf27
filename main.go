package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/minhdangfptu/myFEvent-sub001/internal/budget"
	"github.com/minhdangfptu/myFEvent-sub001/internal/db"
	"github.com/minhdangfptu/myFEvent-sub001/internal/directory"
	"github.com/minhdangfptu/myFEvent-sub001/internal/expense"
	"github.com/minhdangfptu/myFEvent-sub001/internal/middleware"
	"github.com/minhdangfptu/myFEvent-sub001/internal/notify"
)

func RootHandler(w http.ResponseWriter, r *http.Request) {
	response := "Server is up!"
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, response)
}

func main() {
	_ = godotenv.Load(".env.local")
	db.Connect()

	port := os.Getenv("PORT")
	if port == "" {
		port = "5050"
	}

	directory.Init()
	notify.Init()
	budget.Init()
	expense.Init()

	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware)
	r.Get("/", RootHandler)

	r.Mount("/events", budget.SetupRoutes())
	r.Mount("/expenses", expense.SetupRoutes())

	fmt.Println("Server listening on port :" + port + "...")

	http.ListenAndServe("0.0.0.0:"+port, r)
}
