// Seed adds sample animes to the database. Run from project root: go run ./scripts/seed -n 1000
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"anime-api/internal/config"
	"anime-api/internal/database"
)

func main() {
	total := flag.Int("n", 1000, "number of animes to insert")
	batchSize := flag.Int("batch", 500, "rows per INSERT")
	flag.Parse()
	if *batchSize <= 0 {
		*batchSize = 500
	}

	_ = godotenv.Load()

	ctx := context.Background()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Config:", err)
		os.Exit(1)
	}
	db, err := database.Open(ctx, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "DB connection failed:", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.EnsureSchema(ctx, db); err != nil {
		fmt.Fprintln(os.Stderr, "Schema failed:", err)
		os.Exit(1)
	}

	// Titles are unique; a run tag keeps repeated seeds from colliding.
	run := time.Now().Format("20060102150405")
	start := time.Now()
	inserted := 0
	for inserted < *total {
		n := min(*batchSize, *total-inserted)
		args := make([]interface{}, 0, n*3)
		placeholders := make([]string, 0, n)
		for i := 0; i < n; i++ {
			seq := inserted + i + 1
			placeholders = append(placeholders, fmt.Sprintf("($%d,$%d,$%d)", 3*i+1, 3*i+2, 3*i+3))
			args = append(args,
				uuid.New().String(),
				fmt.Sprintf("Anime %s-%d", run, seq),
				fmt.Sprintf("Description for anime %d", seq),
			)
		}
		q := `INSERT INTO animes (id, title, description) VALUES ` + strings.Join(placeholders, ",")
		if _, err := db.ExecContext(ctx, q, args...); err != nil {
			fmt.Fprintln(os.Stderr, "Insert failed:", err)
			os.Exit(1)
		}
		inserted += n
		fmt.Printf("\rInserted %d / %d", inserted, *total)
	}

	fmt.Printf("\nDone: %d animes in %v\n", *total, time.Since(start))
}
