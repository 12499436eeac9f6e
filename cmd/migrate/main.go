package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/storefront/backend/internal/config"
	"github.com/storefront/backend/internal/importer"
	"github.com/storefront/backend/internal/logging"
	"github.com/storefront/backend/internal/repository"
)

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: migrate [command]

Commands:
  (default)    差分マイグレーションを適用
  fresh        全テーブルを DROP し、全マイグレーションを順番に適用
  seed <xlsx>  基準単価シート (cost_standards) を取り込み、全件を置き換える`)
	os.Exit(1)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Setup("INFO")
		logging.Fatal("load config failed", "error", err)
	}
	logging.Setup(cfg.LogLevel)

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logging.Fatal("connect failed", "error", err)
	}
	defer pool.Close()

	migrationDir := findMigrationDir()

	cmd := ""
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "":
		runIncremental(ctx, pool, migrationDir)
	case "fresh":
		runDropAll(ctx, pool, migrationDir)
		runIncremental(ctx, pool, migrationDir)
	case "seed":
		if len(os.Args) < 3 {
			usage()
		}
		runSeed(ctx, pool, os.Args[2])
	default:
		usage()
	}
}

func findMigrationDir() string {
	dir := "migrations"
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		dir = "../migrations"
	}
	return dir
}

// collectUpFiles は .up.sql ファイル名をソート済みで返す
func collectUpFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		logging.Fatal("read migrations dir failed", "error", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files
}

func ensureSchemaMigrations(ctx context.Context, pool *pgxpool.Pool) {
	_, _ = pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		name TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`)
}

// ---------------------------------------------------------------------------
// (default) 差分マイグレーション
// ---------------------------------------------------------------------------
func runIncremental(ctx context.Context, pool *pgxpool.Pool, dir string) {
	ensureSchemaMigrations(ctx, pool)

	upFiles := collectUpFiles(dir)
	applied := 0
	for i, filename := range upFiles {
		name := strings.TrimSuffix(filename, ".up.sql")

		var exists bool
		_ = pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE name=$1)", name).Scan(&exists)
		if exists {
			continue
		}

		sql, err := os.ReadFile(filepath.Join(dir, filename))
		if err != nil {
			logging.Fatal("read migration failed", "migration", name, "error", err)
		}
		if _, err := pool.Exec(ctx, string(sql)); err != nil {
			logging.Fatal("migration failed", "migration", name, "error", err)
		}
		if _, err := pool.Exec(ctx, "INSERT INTO schema_migrations (name) VALUES ($1)", name); err != nil {
			logging.Fatal("record migration failed", "migration", name, "error", err)
		}
		applied++
		slog.Info("migration completed", "number", i+1, "migration", name)
	}

	if applied == 0 {
		slog.Info("all migrations already applied")
	} else {
		slog.Info("migrations completed", "count", applied)
	}
}

// ---------------------------------------------------------------------------
// 全テーブル DROP
// ---------------------------------------------------------------------------
func runDropAll(ctx context.Context, pool *pgxpool.Pool, dir string) {
	slog.Info("dropping all tables")
	sql, err := os.ReadFile(filepath.Join(dir, "000_drop_all.sql"))
	if err != nil {
		logging.Fatal("read 000_drop_all.sql failed", "error", err)
	}
	if _, err := pool.Exec(ctx, string(sql)); err != nil {
		logging.Fatal("drop all failed", "error", err)
	}
	slog.Info("all tables dropped")
}

// ---------------------------------------------------------------------------
// 基準単価の取り込み
// ---------------------------------------------------------------------------
func runSeed(ctx context.Context, pool *pgxpool.Pool, path string) {
	f, err := os.Open(path)
	if err != nil {
		logging.Fatal("open seed file failed", "path", path, "error", err)
	}
	defer f.Close()

	standards, err := importer.ParseCostStandards(f)
	if err != nil {
		logging.Fatal("parse seed file failed", "path", path, "error", err)
	}
	if len(standards) == 0 {
		logging.Fatal("seed file has no rows", "path", path)
	}
	if err := repository.NewPgCostStandardRepository(pool).ReplaceAll(ctx, standards); err != nil {
		logging.Fatal("seed cost standards failed", "error", err)
	}
	slog.Info("cost standards seeded", "count", len(standards), "path", path)
}
