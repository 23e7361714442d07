package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/pogibrader/noted/internal/auth"
	"github.com/pogibrader/noted/internal/backend"
	"github.com/pogibrader/noted/internal/backend/postgres"
	"github.com/pogibrader/noted/internal/backend/s3store"
	"github.com/pogibrader/noted/internal/backend/supabase"
	"github.com/pogibrader/noted/internal/buildinfo"
	"github.com/pogibrader/noted/internal/cli"
	"github.com/pogibrader/noted/internal/config"
	"github.com/pogibrader/noted/internal/filex"
	"github.com/pogibrader/noted/internal/logging"
	"github.com/pogibrader/noted/internal/media"
	"github.com/pogibrader/noted/internal/posts"
	"github.com/pogibrader/noted/internal/session"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	sb, err := supabase.New(cfg.SupabaseURL, cfg.SupabaseAnonKey,
		&http.Client{Timeout: cfg.RequestTimeout}, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer sb.Close()

	var objects backend.ObjectStore = sb
	if cfg.DriverStorage == config.DriverS3 {
		objects, err = s3store.New(ctx, s3store.Config{
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretKey,
			BaseEndpoint:    cfg.S3BaseEndpoint,
			PublicBaseURL:   cfg.S3PublicBaseURL,
		})
		if err != nil {
			log.Fatalf("%v", err)
		}
	}

	var rows backend.RowStore = sb
	if cfg.DriverRows == config.DriverPostgres {
		pg, err := postgres.New(cfg.DatabaseDSN)
		if err != nil {
			log.Fatalf("%v", err)
		}
		defer pg.Close()
		if err := pg.RunMigrations(ctx); err != nil {
			log.Fatalf("%v", err)
		}
		rows = pg
	}

	dataDir := cfg.DataDir
	if dataDir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			log.Fatalf("%v", err)
		}
		dataDir, err = filex.EnsureSubDir(base, "noted")
		if err != nil {
			log.Fatalf("%v", err)
		}
	}

	db, err := session.InitDatabase(ctx, filepath.Join(dataDir, "noted.db"))
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer db.Close()

	store := session.NewStore(session.NewSQLiteStorage(db))
	mgr := auth.NewManager(sb, store, logger)
	uploader := media.NewUploader(objects, cfg.Bucket, logger)
	repo := posts.NewRepository(rows, uploader, cfg.PostsTable, logger)

	app := cli.NewApp(cfg, sb, mgr, repo, logger)
	app.Run(ctx)

}
