package app

import (
	"context"
	"log/slog"

	httpapp "remember_galleries/internal/app/http"
	"remember_galleries/internal/config"
	"remember_galleries/internal/lib/logger/sl"
	"remember_galleries/internal/repository"
	draftsvc "remember_galleries/internal/services/draft_service"
	gallerysvc "remember_galleries/internal/services/gallery_service"
	mediasvc "remember_galleries/internal/services/media_service"
	shortcodesvc "remember_galleries/internal/services/shortcode_service"
	filestorage "remember_galleries/internal/storage/filestorage"
	"remember_galleries/internal/storage/postgresql"
	redisapp "remember_galleries/internal/storage/redis"
	httprouters "remember_galleries/internal/transport/http"
)

type App struct {
	HTTPServer *httpapp.Server

	log     *slog.Logger
	storage *postgresql.Storage
	redis   *redisapp.Client
}

func New(log *slog.Logger, cfg *config.Config) *App {
	ctx := context.Background()

	storage, err := postgresql.New(ctx, cfg.DSN)
	if err != nil {
		panic(err)
	}

	if err := storage.Migrate(ctx); err != nil {
		panic(err)
	}

	redisClient := redisapp.NewClient(cfg.Redis.RedisAddr, cfg.Redis.RedisPassword, cfg.Redis.RedisDB)
	if err := redisClient.HealthCheck(ctx); err != nil {
		// черновики недоступны, но сохранение галерей работает
		log.Warn("redis is unavailable, drafts will fail", sl.Err(err))
	}

	files, err := filestorage.NewLocalFileStorage(cfg.FileStorage.BaseDir, cfg.FileStorage.BaseURL, cfg.FileStorage.MaxSize)
	if err != nil {
		panic(err)
	}

	repo := repository.NewRepository(storage.Pool(), redisClient)

	galleryService := gallerysvc.NewGalleryService(log, repo.Gallery, repo.Post, cfg.Search.Limit)
	mediaService := mediasvc.NewMediaService(log, repo.Attachment, files)
	shortcodeService := shortcodesvc.NewShortcodeService(log, galleryService)
	draftService := draftsvc.NewDraftService(log, repo.Draft, cfg.Drafts.TTL)

	routers := httprouters.NewRouter(log, galleryService, mediaService, shortcodeService, draftService)

	server := httpapp.New(log, httpapp.ConfigFrom(cfg), routers)

	return &App{
		HTTPServer: server,
		log:        log,
		storage:    storage,
		redis:      redisClient,
	}
}

func (a *App) Stop() {
	const op = "app.Stop"

	log := a.log.With(slog.String("op", op))

	if err := a.HTTPServer.Stop(); err != nil {
		log.Error("failed to stop http server", sl.Err(err))
	}

	if err := a.redis.Close(); err != nil {
		log.Error("failed to close redis", sl.Err(err))
	}

	a.storage.Stop()
}
