package internal

import (
	"context"
	"fmt"
	"net"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/go-redis/redis/extra/redisotel/v8"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/blogsave/internal/blog"
	"github.com/2beens/blogsave/internal/config"
	"github.com/2beens/blogsave/internal/db"
	"github.com/2beens/blogsave/internal/generation"
	"github.com/2beens/blogsave/internal/store"
)

// RecordStoreSetup is the configured records store together with the
// metrics collectors it exposes and a func releasing its connections.
type RecordStoreSetup struct {
	Store      blog.RecordStore
	Collectors []prometheus.Collector
	Close      func() error
}

type NewRecordStoreParams struct {
	Config         *config.Config
	RedisPassword  string
	TracingEnabled bool
}

func NewRecordStore(ctx context.Context, params NewRecordStoreParams) (*RecordStoreSetup, error) {
	cfg := params.Config
	noopClose := func() error { return nil }

	switch cfg.StoreBackend {
	case config.StoreBackendFirebase:
		firebaseStore, err := store.NewFirebaseStore(ctx, store.NewFirebaseStoreParams{
			DatabaseURL:     cfg.FirebaseDatabaseURL,
			CredentialsFile: cfg.FirebaseCredentialsFile,
			RecordsPath:     cfg.RecordsPath,
		})
		if err != nil {
			return nil, fmt.Errorf("new firebase store: %w", err)
		}
		return &RecordStoreSetup{Store: firebaseStore, Close: noopClose}, nil

	case config.StoreBackendPostgres:
		dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
			DBHost:         cfg.PostgresHost,
			DBPort:         cfg.PostgresPort,
			DBName:         cfg.PostgresDBName,
			TracingEnabled: params.TracingEnabled,
		})
		if err != nil {
			return nil, fmt.Errorf("new db pool: %w", err)
		}

		if err := dbPool.Ping(ctx); err != nil {
			log.Warnf("failed to ping db: %s", err)
		}

		psqlStore := store.NewPsqlStore(dbPool)
		if err := psqlStore.EnsureSchema(ctx); err != nil {
			log.Errorf("ensure blog_record schema: %s", err)
		}

		pgxpoolCollector := pgxpoolprometheus.NewCollector(
			dbPool,
			map[string]string{"db_name": cfg.PostgresDBName},
		)

		return &RecordStoreSetup{
			Store:      psqlStore,
			Collectors: []prometheus.Collector{pgxpoolCollector},
			Close: func() error {
				log.Debugln("closing db pool ...")
				dbPool.Close() // blocking operation
				log.Debugln("db pool closed")
				return nil
			},
		}, nil

	case config.StoreBackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
			Password: params.RedisPassword,
			DB:       0, // use default DB
		})
		if params.TracingEnabled {
			rdb.AddHook(redisotel.NewTracingHook())
		}

		rdbStatus := rdb.Ping(ctx)
		if err := rdbStatus.Err(); err != nil {
			log.Errorf("--> failed to ping redis: %s", err)
		} else {
			log.Debugf("redis ping: %s", rdbStatus.Val())
		}

		return &RecordStoreSetup{
			Store: store.NewRedisStore(rdb, cfg.RecordsPath),
			Close: rdb.Close,
		}, nil

	case config.StoreBackendSqlite:
		sqliteStore, err := store.OpenSqliteStore(ctx, cfg.SqlitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return &RecordStoreSetup{Store: sqliteStore, Close: sqliteStore.Close}, nil

	default:
		return nil, fmt.Errorf("unknown store backend: %s", cfg.StoreBackend)
	}
}

type NewTextModelParams struct {
	Config      *config.Config
	TGIToken    string
	GenAIAPIKey string
}

func NewTextModel(ctx context.Context, params NewTextModelParams) (generation.Model, error) {
	cfg := params.Config

	switch cfg.GenerationBackend {
	case config.GenerationBackendTGI:
		log.Debugf("using tgi model [%s] at %s", cfg.ModelID, cfg.TGIURL)
		return generation.NewTGIModel(cfg.TGIURL, cfg.ModelID, params.TGIToken, cfg.GenerationTimeout), nil

	case config.GenerationBackendGenAI:
		log.Debugf("using genai model [%s]", cfg.GenAIModel)
		model, err := generation.NewGenAIModel(ctx, params.GenAIAPIKey, cfg.GenAIModel)
		if err != nil {
			return nil, fmt.Errorf("new genai model: %w", err)
		}
		return model, nil

	default:
		return nil, fmt.Errorf("unknown generation backend: %s", cfg.GenerationBackend)
	}
}
