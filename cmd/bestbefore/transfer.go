package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/erazemk/bestbefore/internal/config"
	"github.com/erazemk/bestbefore/internal/export"
	"github.com/erazemk/bestbefore/internal/store"
)

func cmdExport(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	var out string
	fs.StringVar(&out, "o", "", "output file (default: best-before-export-<timestamp>.json, - for stdout)")

	logPath, err := parseFlags(fs, cfg, args)
	if err != nil {
		return err
	}

	return withLogger(cfg, logPath, func() error {
		database, err := openDatabase(cfg.DBPath)
		if err != nil {
			return err
		}
		defer database.Close()

		st, err := store.Open(context.Background(), database)
		if err != nil {
			return err
		}

		if out == "" {
			out = export.FileName(time.Now())
		}
		var w io.Writer = os.Stdout
		if out != "-" {
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("creating export file: %w", err)
			}
			defer f.Close()
			w = f
		}

		items := st.Items()
		if err := export.Write(w, items); err != nil {
			return err
		}
		slog.Info("items exported", "count", len(items), "file", out)
		return nil
	})
}

func cmdImport(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	var in, mode string
	fs.StringVar(&in, "i", "-", "input file (- for stdin)")
	fs.StringVar(&mode, "mode", string(store.ImportMerge), "replace or merge")

	logPath, err := parseFlags(fs, cfg, args)
	if err != nil {
		return err
	}

	return withLogger(cfg, logPath, func() error {
		var r io.Reader = os.Stdin
		if in != "-" {
			f, err := os.Open(in)
			if err != nil {
				return fmt.Errorf("opening import file: %w", err)
			}
			defer f.Close()
			r = f
		}

		items, err := export.Read(r, time.Now())
		if err != nil {
			return err
		}

		database, err := openDatabase(cfg.DBPath)
		if err != nil {
			return err
		}
		defer database.Close()

		st, err := store.Open(context.Background(), database)
		if err != nil {
			return err
		}

		// Reminders are rebuilt by the next serve startup.
		return st.ImportItems(context.Background(), items, store.ImportMode(mode))
	})
}
