// Seeds a demo event with departments, members and sessions so the budget
// API can be exercised locally. Destructive for the chosen event name;
// requires --confirm outside --dry-run.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
)

var (
	dsn       = flag.String("dsn", os.Getenv("DATABASE_URL"), "Postgres DSN (default: env DATABASE_URL)")
	eventName = flag.String("event", "FPTU Spring Fair 2026", "Name of the event to (re)seed")
	dryRun    = flag.Bool("dry-run", false, "Print the plan only; no DB writes")
	confirm   = flag.Bool("confirm", false, "Required to perform the destructive reseed")
)

type memberSeed struct {
	userID   string
	fullName string
	email    string
	role     string
	dept     int // index into departments; -1 for none (HoOC)
}

var departments = []string{"Logistics", "Media", "Culinary"}

var members = []memberSeed{
	{"user-hooc", "Nguyen Van An", "an@myfevent.io.vn", "hooc", -1},
	{"user-hod-logistics", "Tran Thi Binh", "binh@myfevent.io.vn", "hod", 0},
	{"user-hod-media", "Le Van Cuong", "cuong@myfevent.io.vn", "hod", 1},
	{"user-hod-culinary", "Pham Thi Dao", "dao@myfevent.io.vn", "hod", 2},
	{"user-member-1", "Hoang Van Em", "em@myfevent.io.vn", "member", 0},
	{"user-member-2", "Vu Thi Phuong", "phuong@myfevent.io.vn", "member", 0},
	{"user-member-3", "Dang Van Giang", "giang@myfevent.io.vn", "member", 1},
}

func main() {
	_ = godotenv.Load(".env.local")
	flag.Parse()
	if *dsn == "" {
		fatalf("--dsn not provided and DATABASE_URL not set")
	}

	fmt.Printf("Seeding event %q: %d departments, %d members\n", *eventName, len(departments), len(members))
	if *dryRun {
		fmt.Println("dry-run: no writes performed")
		return
	}
	if !*confirm {
		fatalf("refusing to reseed without --confirm (or use --dry-run)")
	}

	ctx := context.Background()
	sqldb, err := sql.Open("pgx", *dsn)
	if err != nil {
		fatalf("open: %v", err)
	}
	defer sqldb.Close()

	tx, err := sqldb.BeginTx(ctx, nil)
	if err != nil {
		fatalf("begin: %v", err)
	}
	defer tx.Rollback()

	// Remove any previous copy of this demo event.
	var oldID uuid.UUID
	err = tx.QueryRowContext(ctx, `SELECT id FROM directory.events WHERE name = $1`, *eventName).Scan(&oldID)
	if err == nil {
		for _, stmt := range []string{
			`DELETE FROM directory.sessions WHERE user_id IN (SELECT user_id FROM directory.members WHERE event_id = $1)`,
			`DELETE FROM directory.members WHERE event_id = $1`,
			`DELETE FROM directory.departments WHERE event_id = $1`,
			`DELETE FROM directory.events WHERE id = $1`,
		} {
			if _, err := tx.ExecContext(ctx, stmt, oldID); err != nil {
				fatalf("cleanup: %v", err)
			}
		}
	} else if err != sql.ErrNoRows {
		fatalf("lookup existing event: %v", err)
	}

	eventID := uuid.New()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO directory.events (id, name, status, created_at, updated_at) VALUES ($1, $2, 'active', now(), now())`,
		eventID, *eventName); err != nil {
		fatalf("insert event: %v", err)
	}

	deptIDs := make([]uuid.UUID, len(departments))
	for i, name := range departments {
		deptIDs[i] = uuid.New()
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO directory.departments (id, event_id, name, head_user_id, created_at, updated_at) VALUES ($1, $2, $3, '', now(), now())`,
			deptIDs[i], eventID, name); err != nil {
			fatalf("insert department %s: %v", name, err)
		}
	}

	for _, m := range members {
		var deptID *uuid.UUID
		if m.dept >= 0 {
			deptID = &deptIDs[m.dept]
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO directory.members (id, event_id, user_id, department_id, role, full_name, email, is_active, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, true, now(), now())`,
			uuid.New(), eventID, m.userID, deptID, m.role, m.fullName, m.email); err != nil {
			fatalf("insert member %s: %v", m.userID, err)
		}
		if m.role == "hod" && m.dept >= 0 {
			if _, err := tx.ExecContext(ctx,
				`UPDATE directory.departments SET head_user_id = $1 WHERE id = $2`,
				m.userID, deptIDs[m.dept]); err != nil {
				fatalf("set department head: %v", err)
			}
		}

		// A week-long demo session per user, named after the user for easy
		// cookie pasting during manual testing.
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO directory.sessions (session_id, user_id, expires_at) VALUES ($1, $2, $3)
			 ON CONFLICT (session_id) DO UPDATE SET expires_at = EXCLUDED.expires_at`,
			"seed-session-"+m.userID, m.userID, time.Now().Add(7*24*time.Hour)); err != nil {
			fatalf("insert session: %v", err)
		}
	}

	if err := tx.Commit(); err != nil {
		fatalf("commit: %v", err)
	}
	fmt.Println("Seed complete. Event id:", eventID)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
