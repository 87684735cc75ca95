package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

type ctxKey string

const dbKey ctxKey = "db"

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func initDB(c *cli.Context) error {
	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	// Store the database connection in the context
	c.Context = context.WithValue(c.Context, dbKey, db)
	return nil
}

func closeDB(c *cli.Context) error {
	if db, ok := c.Context.Value(dbKey).(*sql.DB); ok && db != nil {
		return db.Close()
	}
	return nil
}

func dbFromContext(c *cli.Context) (*sql.DB, error) {
	db, ok := c.Context.Value(dbKey).(*sql.DB)
	if !ok || db == nil {
		return nil, fmt.Errorf("database connection not initialized")
	}
	return db, nil
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "seed",
		Usage: "Prepare the inventory analytics database",
		Flags: []cli.Flag{
			newDBURLFlag(),
		},
		Commands: []*cli.Command{
			{
				Name:   "schema",
				Usage:  "Create the analytics tables if they do not exist",
				Flags:  []cli.Flag{newDBURLFlag()},
				Before: initDB,
				After:  closeDB,
				Action: runSchema,
			},
			{
				Name:  "grades",
				Usage: "Seed spec-to-grade mapping overrides from a CSV file",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:    "file",
						Usage:   "CSV file with specification,grade columns",
						Value:   "./data/seeds/grade_mappings.csv",
						EnvVars: []string{"GRADE_MAPPINGS_FILE"},
					},
				},
				Before: initDB,
				After:  closeDB,
				Action: runGradeSeed,
			},
			{
				Name:  "backfill",
				Usage: "Ingest a directory of snapshot workbooks into Postgres",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:    "dir",
						Usage:   "Directory containing YYYYMMDD-prefixed .xlsx workbooks",
						Value:   "./data/snapshots",
						EnvVars: []string{"SNAPSHOTS_DIR"},
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of workbooks to process in parallel",
						Value: 4,
					},
				},
				Before: initDB,
				After:  closeDB,
				Action: runBackfill,
			},
			{
				Name:  "download",
				Usage: "Download snapshot workbooks from object storage",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "dest",
						Usage:   "Local directory to download workbooks into",
						Value:   "./data/snapshots",
						EnvVars: []string{"SNAPSHOTS_DIR"},
					},
					&cli.StringFlag{
						Name:  "key",
						Usage: "Download a single object key instead of the whole prefix",
					},
				},
				Action: runDownload,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
