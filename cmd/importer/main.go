package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vkadam-18/LVDI-2D/internal/config"
	"github.com/vkadam-18/LVDI-2D/internal/logging"
	"github.com/vkadam-18/LVDI-2D/internal/repository"
)

type cliOptions struct {
	dir      string
	versions string
	timeout  time.Duration
}

func main() {
	opts := parseFlags()
	if err := run(opts); err != nil {
		log.Fatalf("importer: %v", err)
	}
}

func parseFlags() cliOptions {
	var opts cliOptions
	flag.StringVar(&opts.dir, "dir", "", "Directory holding one folder per data version (default: DATA_DIR)")
	flag.StringVar(&opts.versions, "versions", "", "Comma-separated versions to import (default: every folder under --dir)")
	flag.DurationVar(&opts.timeout, "timeout", 5*time.Minute, "Overall import timeout")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [--dir DIR] [--versions Jun,Sep]\n\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	opts.dir = strings.TrimSpace(opts.dir)
	opts.versions = strings.TrimSpace(opts.versions)
	return opts
}

func run(opts cliOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if !cfg.PostgreSQL.Enabled {
		return errors.New("PostgreSQL is not configured (set DATABASE_URL)")
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()

	dir := opts.dir
	if dir == "" {
		dir = cfg.Data.Dir
	}
	source := repository.NewFileSource(dir)

	var versions []string
	if opts.versions != "" {
		for _, v := range strings.Split(opts.versions, ",") {
			if v = strings.TrimSpace(v); v != "" {
				versions = append(versions, v)
			}
		}
	} else if versions, err = source.Versions(); err != nil {
		return fmt.Errorf("list versions: %w", err)
	}
	if len(versions) == 0 {
		return fmt.Errorf("no versions found under %s", dir)
	}

	repo, err := repository.NewPostgresRepository(cfg.GetPostgreSQLDSN(), cfg.PostgreSQL.MaxConnections, cfg.PostgreSQL.MaxIdleConnections)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer repo.Close()

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	if err := repo.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	for _, version := range versions {
		set, err := source.LoadTables(ctx, version)
		if err != nil {
			return fmt.Errorf("load %s: %w", version, err)
		}
		saved, err := repo.SaveTables(ctx, set)
		if err != nil {
			return fmt.Errorf("save %s: %w", version, err)
		}
		logger.Info("📥 Imported pivot tables", zap.String("version", set.Version), zap.Int("tables", saved))
	}
	return nil
}
