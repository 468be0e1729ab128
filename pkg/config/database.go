package config

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/goer-app/goer/backend/pkg/logger"
)

const (
	connectTimeout    = 10 * time.Second
	disconnectTimeout = 5 * time.Second
)

// DB bundles the relational store (sessions, notifications) and the
// document store (accounts and content).
type DB struct {
	Postgres *gorm.DB
	Mongo    *mongo.Client
	Database *mongo.Database
}

// InitDB connects to both stores and verifies each with a ping.
func InitDB(ctx context.Context, cfg *Config) (*DB, error) {
	if cfg.PostgresConnStr == "" {
		return nil, fmt.Errorf("POSTGRES_CONN_STR is not set")
	}
	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("MONGO_URI is not set")
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pg, err := openPostgres(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	client, err := openMongo(ctx, cfg)
	if err != nil {
		if sqlDB, dbErr := pg.DB(); dbErr == nil {
			sqlDB.Close()
		}
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	return &DB{
		Postgres: pg,
		Mongo:    client,
		Database: client.Database(cfg.MongoDatabase),
	}, nil
}

func openPostgres(ctx context.Context, cfg *Config) (*gorm.DB, error) {
	level := gormlogger.Warn
	if cfg.IsProduction() {
		level = gormlogger.Silent
	}
	db, err := gorm.Open(postgres.Open(cfg.PostgresConnStr), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(level),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.PostgresMaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.PostgresMaxOpenConns)
	}
	if cfg.PostgresMaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.PostgresMaxIdleConns)
	}
	if cfg.PostgresConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.PostgresConnMaxLifetime)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, err
	}

	logger.L().Info().Int("max_open_conns", cfg.PostgresMaxOpenConns).Msg("postgres connected")
	return db, nil
}

func openMongo(ctx context.Context, cfg *Config) (*mongo.Client, error) {
	opts := options.Client().ApplyURI(cfg.MongoURI).SetAppName("goer-api")
	if cfg.MongoMaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MongoMaxPoolSize)
	}
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, err
	}

	logger.L().Info().Str("database", cfg.MongoDatabase).Msg("mongo connected")
	return client, nil
}

// PingPostgres reports whether the relational store answers.
func (db *DB) PingPostgres(ctx context.Context) error {
	sqlDB, err := db.Postgres.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// PingMongo reports whether the primary of the document store answers.
func (db *DB) PingMongo(ctx context.Context) error {
	return db.Mongo.Ping(ctx, nil)
}

// Close releases both connections, logging rather than returning failures.
func (db *DB) Close() {
	l := logger.L()
	if db.Postgres != nil {
		sqlDB, err := db.Postgres.DB()
		if err == nil {
			err = sqlDB.Close()
		}
		if err != nil {
			l.Error().Err(err).Msg("closing postgres")
		}
	}
	if db.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
		defer cancel()
		if err := db.Mongo.Disconnect(ctx); err != nil {
			l.Error().Err(err).Msg("closing mongo")
		}
	}
	l.Info().Msg("database connections closed")
}
