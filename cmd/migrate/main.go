// Command migrate applies or rolls back the schema in DATABASE_URL.
//
//	migrate [up|down|status]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm/logger"

	"wallet-server/config"
	"wallet-server/database"
	"wallet-server/logging"
)

const defaultDatabaseURL = "sqlite:../wallet.db"

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: migrate [up|down|status]")
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	cmd := "up"
	if fs.NArg() > 0 {
		cmd = fs.Arg(0)
	}

	url := os.Getenv("DATABASE_URL")
	if url == "" {
		url = defaultDatabaseURL
	}
	log := logging.NewWithOutput(os.Getenv("LOG_LEVEL"), "text", stderr)

	db, dialect, err := database.Open(url, logger.Default.LogMode(logger.Silent))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close(db)

	m := database.NewMigrator(db, dialect, log)
	switch cmd {
	case "up":
		applied, err := m.Up(ctx)
		if err != nil {
			return err
		}
		if len(applied) == 0 {
			fmt.Fprintln(stdout, "Nothing to apply")
		}
		for _, v := range applied {
			fmt.Fprintf(stdout, "Applied %s\n", v)
		}
	case "down":
		v, err := m.Down(ctx)
		if err != nil {
			return err
		}
		if v == "" {
			fmt.Fprintln(stdout, "Nothing to roll back")
		} else {
			fmt.Fprintf(stdout, "Rolled back %s\n", v)
		}
	case "status":
		statuses, err := m.Status(ctx)
		if err != nil {
			return err
		}
		for _, s := range statuses {
			state := "pending"
			if s.Applied {
				state = "applied"
			}
			fmt.Fprintf(stdout, "%-24s %s\n", s.Version, state)
		}
	default:
		fs.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
	log.WithFields(logrus.Fields{"command": cmd, "dialect": dialect}).Debug("migrate finished")
	return nil
}
