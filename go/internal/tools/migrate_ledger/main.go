package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mcdev12/turntimer/go/internal/dbconfig"
	"github.com/mcdev12/turntimer/go/internal/ledger"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// 1) Connect using shared dbconfig
	cfg := dbconfig.NewConfigFromEnv()
	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	// 2) Create the ledger table if missing
	if _, err := pool.Exec(ctx, ledger.Schema); err != nil {
		fmt.Fprintf(os.Stderr, "apply schema: %v\n", err)
		os.Exit(1)
	}

	// 3) Report what is there
	var count int
	if err := pool.QueryRow(ctx, `SELECT count(*) FROM encounter_ledgers`).Scan(&count); err != nil {
		fmt.Fprintf(os.Stderr, "count ledgers: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Ledger schema ready on %s: %d stored ledgers\n", cfg.Redacted(), count)
}
