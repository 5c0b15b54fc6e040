package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/erazemk/bestbefore/internal/config"
	"github.com/erazemk/bestbefore/internal/db"
)

const usage = `Usage: bestbefore [command] [flags]

Commands:
  serve     run the local service (default)
  export    write all items to a JSON file
  import    read items from a JSON export

Run "bestbefore <command> -h" for the flags of a command.
`

func main() {
	args := os.Args[1:]
	cmd := "serve"
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		cmd, args = args[0], args[1:]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	switch cmd {
	case "serve":
		err = cmdServe(cfg, args)
	case "export":
		err = cmdExport(cfg, args)
	case "import":
		err = cmdImport(cfg, args)
	case "help":
		fmt.Fprint(os.Stdout, usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	if err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		slog.Error("command failed", "command", cmd, "error", err)
		os.Exit(1)
	}
}

// openDatabase opens the database and brings the schema up to date.
func openDatabase(path string) (*sql.DB, error) {
	database, err := db.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Migrate(database); err != nil {
		database.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	slog.Info("database ready", "path", path)
	return database, nil
}

// parseFlags parses args with the shared -db and -log flags added.
func parseFlags(fs *flag.FlagSet, cfg *config.Config, args []string) (logPath string, err error) {
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")
	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "")
	fs.StringVar(&logPath, "log", "", "log file path (default: stdout/stderr only)")
	fs.StringVar(&logPath, "l", "", "")

	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if fs.NArg() > 0 {
		fs.Usage()
		return "", fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}
	return logPath, nil
}

// withLogger sets up logging and runs fn.
func withLogger(cfg *config.Config, logPath string, fn func() error) error {
	closeLog, err := setupLogger(logPath, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer closeLog()
	return fn()
}
