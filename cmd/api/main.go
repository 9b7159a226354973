package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"atsResume/internal/analysis"
	"atsResume/internal/api"
	"atsResume/internal/config"
	"atsResume/internal/database"
	"atsResume/internal/errcode"
	"atsResume/internal/notify"
	"atsResume/internal/resume"
	"atsResume/internal/storage"
	"atsResume/internal/store"
)

func main() {
	cfg := config.MustLoad()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx := context.Background()

	dict, err := loadDictionary(cfg.Scoring)
	if err != nil {
		log.Fatalf("load keyword dictionary: %v", err)
	}
	logger.Info("keyword dictionary ready",
		slog.Int("keywords", dict.Len()),
		slog.Bool("dedupe", cfg.Scoring.DedupeKeywords),
		slog.Bool("word_boundary", cfg.Scoring.WordBoundary),
	)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error("close redis client failed", slog.Any("error", err))
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("ping redis: %v", err)
	}

	persister, err := newPersister(cfg, redisClient)
	if err != nil {
		log.Fatalf("init snapshot store: %v", err)
	}

	catalog := resume.DefaultCatalog()
	st := store.New(ctx, persister, catalog, store.WithLogger(logger))

	publisher := notify.NewPublisher(redisClient, cfg.Store.Key)
	st.Subscribe(func(state store.State) {
		score := state.Score
		msg := notify.Message{
			Kind:      notify.KindScore,
			Status:    notify.StatusCompleted,
			ResumeID:  state.Resume.ID,
			ErrorCode: errcode.OK,
			Score:     &score,
		}
		if err := publisher.Publish(context.Background(), msg); err != nil {
			logger.Warn("publish score notification failed", slog.Any("error", err))
		}
	})

	analyzer := analysis.New(st, dict, analysis.Options{
		Delay:     cfg.Scoring.AnalysisDelay,
		Match:     resume.MatchOptions{WordBoundary: cfg.Scoring.WordBoundary},
		Publisher: publisher,
		Logger:    logger,
	})

	storageClient, err := storage.NewClient(ctx, cfg.MinIO)
	if err != nil {
		log.Fatalf("init storage client: %v", err)
	}
	logger.Info("storage client ready", slog.String("bucket", cfg.MinIO.Bucket))

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer asynqClient.Close()

	router := api.NewRouter(logger)
	api.RegisterRoutes(router, api.Dependencies{
		Store:          st,
		Catalog:        catalog,
		Dictionary:     dict,
		Analyzer:       analyzer,
		Queue:          asynqClient,
		Storage:        storageClient,
		RateCounter:    redisClient,
		Redis:          redisClient,
		StoreKey:       cfg.Store.Key,
		MaxRetry:       cfg.Worker.MaxRetry,
		AllowedOrigins: cfg.API.AllowedOrigins,
		Logger:         logger,
	})

	address := fmt.Sprintf(":%d", cfg.API.Port)
	logger.Info("api listening",
		slog.String("addr", address),
		slog.String("store_backend", cfg.Store.Backend),
		slog.String("store_key", cfg.Store.Key),
	)
	if err := router.Run(address); err != nil {
		log.Fatalf("failed to start api server: %v", err)
	}
}

func loadDictionary(cfg config.ScoringConfig) (resume.Dictionary, error) {
	if cfg.KeywordsFile == "" {
		return resume.DefaultDictionary(cfg.DedupeKeywords), nil
	}
	return resume.LoadDictionaryFile(cfg.KeywordsFile, cfg.DedupeKeywords)
}

func newPersister(cfg *config.Config, redisClient *redis.Client) (store.Persister, error) {
	switch cfg.Store.Backend {
	case "redis":
		return store.NewRedisPersister(redisClient, cfg.Store.Key), nil
	default:
		db, err := database.InitDatabase(cfg.Database)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(db); err != nil {
			return nil, err
		}
		return store.NewGormPersister(db, cfg.Store.Key), nil
	}
}
