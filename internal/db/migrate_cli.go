package db

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/banshee-data/spin.report/internal/monitoring"
)

// ErrUnknownMigrateAction is returned for an unrecognised migrate subcommand.
var ErrUnknownMigrateAction = errors.New("unknown migrate action")

// RunMigrateCommand handles the 'migrate' subcommand dispatching. Status
// output goes to out.
func RunMigrateCommand(args []string, dbPath string, out io.Writer) error {
	if len(args) < 1 {
		PrintMigrateHelp(out)
		return fmt.Errorf("%w: none given", ErrUnknownMigrateAction)
	}
	action := args[0]
	if action == "help" {
		PrintMigrateHelp(out)
		return nil
	}

	// Open without migrating; the action decides what happens to the schema.
	database, err := OpenDB(dbPath)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	switch action {
	case "up":
		monitoring.Logf("Running migrations...")
		if err := database.MigrateUp(); err != nil {
			return err
		}
	case "down":
		monitoring.Logf("Rolling back one migration...")
		if err := database.MigrateDown(); err != nil {
			return err
		}
	case "status", "version":
		// reported below
	case "to":
		v, err := versionArg(args)
		if err != nil {
			return err
		}
		if err := database.MigrateTo(uint(v)); err != nil {
			return err
		}
	case "force":
		v, err := versionArg(args)
		if err != nil {
			return err
		}
		if err := database.MigrateForce(v); err != nil {
			return err
		}
	default:
		PrintMigrateHelp(out)
		return fmt.Errorf("%w: %s", ErrUnknownMigrateAction, action)
	}

	version, dirty, err := database.MigrateVersion()
	if err != nil {
		return fmt.Errorf("failed to get migration status: %w", err)
	}
	fmt.Fprintf(out, "Current version: %d (dirty: %v)\n", version, dirty)
	if dirty {
		fmt.Fprintln(out, "WARNING: a migration failed mid-execution; inspect the database, then run: spin-report migrate force <version>")
	}
	return nil
}

func versionArg(args []string) (int, error) {
	if len(args) < 2 {
		return 0, fmt.Errorf("usage: spin-report migrate %s <version_number>", args[0])
	}
	v, err := strconv.Atoi(args[1])
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid version number: %s", args[1])
	}
	return v, nil
}

// PrintMigrateHelp writes the migrate usage text to out.
func PrintMigrateHelp(out io.Writer) {
	fmt.Fprint(out, `Usage: spin-report migrate <action> [-db path]

Actions:
  up                 Apply all pending migrations
  down               Roll back the most recent migration
  status             Show the current migration version
  version            Alias for status
  to <version>       Migrate up or down to a specific version
  force <version>    Set the recorded version without migrating (recovery only)
  help               Show this help message
`)
}
