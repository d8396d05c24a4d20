// Command importer loads the CSV university catalog into the structured store.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/unicounsel/backend/config"
	"github.com/unicounsel/backend/internal/infrastructure/flatfile"
	"github.com/unicounsel/backend/internal/infrastructure/logger"
	"github.com/unicounsel/backend/internal/infrastructure/sqlstore"
)

func main() {
	replace := flag.Bool("replace", false, "delete the existing catalog before importing")
	dirs := flag.String("dirs", "", "comma separated data directories (defaults to catalog.data_dirs)")
	pattern := flag.String("pattern", "", "file glob (defaults to catalog.file_pattern)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log, err := logger.New(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		logrus.Fatalf("Failed to configure logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	source := flatfile.NewSource(flatfile.Config{
		Dirs:    dataDirs(*dirs, cfg.Catalog.DataDirs),
		Pattern: firstNonEmpty(*pattern, cfg.Catalog.FilePattern),
	}, log)

	universities, err := source.LoadUniversities(ctx)
	if err != nil {
		log.Fatalf("Failed to read catalog files: %v", err)
	}
	if len(universities) == 0 {
		log.Fatal("No universities found in the catalog files")
	}

	store, err := sqlstore.Open(ctx, cfg.Database.Driver, cfg.Database.DSN, log)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	n, err := store.ImportUniversities(ctx, universities, *replace)
	if err != nil {
		log.Fatalf("Failed to import universities: %v", err)
	}

	log.WithFields(logrus.Fields{
		"imported": n,
		"replace":  *replace,
		"database": cfg.Database.Driver,
	}).Info("Import complete")
}

func dataDirs(flagValue string, fallback []string) []string {
	if strings.TrimSpace(flagValue) == "" {
		return fallback
	}
	var out []string
	for _, d := range strings.Split(flagValue, ",") {
		if d = strings.TrimSpace(d); d != "" {
			out = append(out, d)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
