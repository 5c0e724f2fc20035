// Command n8n-status reports recent n8n workflow executions from a local
// SQLite database.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/fatih/color"

	n8nstatus "github.com/urbanadventurer/n8n-status"
)

// Exit codes. Absence of a requested execution is distinct from a storage
// failure so scripts can tell the two apart.
const (
	exitOK             = 0
	exitNotFound       = 1
	exitStorageFailure = 2
)

type cliFlags struct {
	dbPath   string
	limit    int
	errors   bool
	running  bool
	waiting  bool
	id       string
	workflow string
	verbose  bool
}

func main() {
	os.Exit(run())
}

func run() int {
	flags := parseFlags()

	level := slog.LevelWarn
	if flags.verbose {
		level = slog.LevelDebug
	}
	logger := n8nstatus.NewLogger(level)

	config, err := n8nstatus.ResolveConfig(flags.dbPath, flags.limit, logger)
	if err != nil {
		return fail(err)
	}
	logger.Debug("resolved configuration", "db_path", config.DBPath, "limit", config.Limit)

	ctx := context.Background()
	store := n8nstatus.NewStore(config.DBPath, logger)

	criteria := n8nstatus.FilterCriteria{
		ID:                    flags.id,
		WorkflowNameSubstring: flags.workflow,
		ErrorsOnly:            flags.errors,
		RunningOnly:           flags.running,
		WaitingOnly:           flags.waiting,
		Limit:                 config.Limit,
	}

	records, err := store.FetchExecutions(ctx, criteria)
	if err != nil {
		return fail(err)
	}

	now := time.Now()
	executions := make([]n8nstatus.ClassifiedExecution, 0, len(records))
	for _, record := range records {
		status, duration := n8nstatus.Classify(record, now)

		exec := n8nstatus.ClassifiedExecution{
			Record:   record,
			Status:   status,
			Duration: duration,
		}
		if status == n8nstatus.StatusError {
			details, err := store.ErrorDetails(ctx, record.ID)
			if err != nil {
				logger.Warn("could not load error details", "id", record.ID, "error", err)
			} else {
				exec.Details = details
			}
		}
		executions = append(executions, exec)
	}

	formatter := n8nstatus.NewFormatter(os.Stdout)

	if flags.id != "" {
		if len(executions) == 0 {
			return fail(&n8nstatus.NotFoundError{ID: flags.id})
		}
		formatter.RenderDetail(executions[0])
		return exitOK
	}

	formatter.RenderList(executions)
	return exitOK
}

// fail prints a single-line error to stderr and picks the exit code. A miss
// on a requested id is a plain message; everything else is a storage
// failure. Raw internal errors never reach the user beyond this message.
func fail(err error) int {
	if errors.Is(err, n8nstatus.ErrNotFound) {
		fmt.Fprintln(os.Stderr, err)
		return exitNotFound
	}
	fmt.Fprintln(os.Stderr, color.New(color.FgRed).Sprintf("Error: %v", err))
	return exitStorageFailure
}

func parseFlags() cliFlags {
	var flags cliFlags

	flag.StringVar(&flags.dbPath, "db-path", "", "Path to the n8n SQLite database file")

	// -1 means "not set": the config file default applies.
	flag.IntVar(&flags.limit, "limit", -1, "Maximum number of execution records to display")
	flag.IntVar(&flags.limit, "n", -1, "Maximum number of execution records to display (shorthand)")

	flag.BoolVar(&flags.errors, "errors", false, "Show only executions with errors")
	flag.BoolVar(&flags.errors, "e", false, "Show only executions with errors (shorthand)")

	flag.BoolVar(&flags.running, "running", false, "Show only running executions")
	flag.BoolVar(&flags.running, "r", false, "Show only running executions (shorthand)")

	flag.BoolVar(&flags.waiting, "waiting", false, "Show only waiting executions")
	flag.BoolVar(&flags.waiting, "w", false, "Show only waiting executions (shorthand)")

	flag.StringVar(&flags.id, "id", "", "Show details for a specific execution ID")
	flag.StringVar(&flags.workflow, "workflow", "", "Filter by workflow name (case-insensitive substring match)")

	flag.BoolVar(&flags.verbose, "verbose", false, "Enable verbose logging")
	flag.BoolVar(&flags.verbose, "v", false, "Enable verbose logging (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `n8n-status - n8n workflow execution status viewer

Usage: %s [options]

Examples:
  # Show the last 15 executions from the default database location
  %s

  # Show the last 50 executions from a specific database
  %s -db-path /path/to/database.sqlite -limit 50

  # Show failed runs of workflows whose name contains "invoice"
  %s -errors -workflow invoice

  # Inspect one execution
  %s -id 1234

Database path resolution order: -db-path flag, N8N_DB_PATH environment
variable, .n8n-status-config.ini (current directory, then home), then
~/.n8n/database.sqlite and ./database.sqlite.

Options:
`, os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0])
		flag.PrintDefaults()
	}

	flag.Parse()
	return flags
}
