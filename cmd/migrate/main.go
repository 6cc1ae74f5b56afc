package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/vladislavdragonenkov/customers/internal/storage/postgres"
)

const (
	defaultTimeout = 30 * time.Second

	envStoreDSN      = "CUSTOMERS_STORE_DSN"
	envStoreDatabase = "CUSTOMERS_STORE_DATABASE"
)

func main() {
	_ = godotenv.Load()
	os.Exit(run(os.Args[1:], os.Getenv, os.Stdout, os.Stderr))
}

// run выполняет миграции схемы PostgreSQL-хранилища и возвращает код выхода.
func run(args []string, getenv func(string) string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		direction string
		steps     int
		dsn       string
		database  string
		timeout   time.Duration
	)
	fs.StringVar(&direction, "direction", "up", "migration direction: up|down|status")
	fs.IntVar(&steps, "steps", 0, "number of migrations to apply/rollback (0=all for up, 1 for down)")
	fs.StringVar(&dsn, "dsn", "", "PostgreSQL DSN (fallback: "+envStoreDSN+")")
	fs.StringVar(&database, "database", "", "database name overriding the DSN (fallback: "+envStoreDatabase+")")
	fs.DurationVar(&timeout, "timeout", defaultTimeout, "overall timeout")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	direction = strings.ToLower(strings.TrimSpace(direction))
	switch direction {
	case "up", "down", "status":
	default:
		return fail(stderr, "unsupported direction: %s (use up|down|status)", direction)
	}

	if dsn = strings.TrimSpace(dsn); dsn == "" {
		dsn = strings.TrimSpace(getenv(envStoreDSN))
	}
	if dsn == "" {
		return fail(stderr, "%s (or -dsn) is required", envStoreDSN)
	}
	if database = strings.TrimSpace(database); database == "" {
		database = strings.TrimSpace(getenv(envStoreDatabase))
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	store, err := postgres.Open(ctx, postgres.Config{DSN: dsn, Database: database})
	if err != nil {
		return fail(stderr, "open postgres store: %v", err)
	}
	defer store.Close()

	switch direction {
	case "up":
		if err := store.MigrateUp(ctx, steps); err != nil {
			return fail(stderr, "migrate up failed: %v", err)
		}
	case "down":
		if err := store.MigrateDown(ctx, steps); err != nil {
			return fail(stderr, "migrate down failed: %v", err)
		}
	}

	state, err := store.MigrationStatus(ctx)
	if err != nil {
		return fail(stderr, "migration status failed: %v", err)
	}
	_, _ = fmt.Fprintf(stdout, "migrate %s ok: version=%d applied=%d pending=%d\n", direction, state.Version, state.Applied, state.Pending)
	return 0
}

func fail(w io.Writer, format string, args ...any) int {
	_, _ = fmt.Fprintf(w, format+"\n", args...)
	return 1
}
