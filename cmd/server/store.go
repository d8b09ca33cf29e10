package main

import (
	"context"
	"fmt"
	"time"

	"github.com/dfryer1193/campusnav/internal/bootstrap"
	"github.com/dfryer1193/campusnav/internal/config"
	"github.com/dfryer1193/campusnav/navigation/application"
	"github.com/dfryer1193/campusnav/navigation/persistence"
	"github.com/dfryer1193/campusnav/shared/db"
	"github.com/dfryer1193/campusnav/shared/db/bolt"
	rdb "github.com/dfryer1193/campusnav/shared/db/redis"
	"github.com/dfryer1193/campusnav/shared/db/sqlite"
	"github.com/rs/zerolog/log"
)

const retryBase = 1 * time.Second

// openDirectory connects to the configured store and builds an uninitialized
// Directory over it. The returned func closes the store.
func openDirectory(ctx context.Context, cfg config.StoreConfig) (*application.Directory, func() error, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		sqliteCfg := sqlite.NewSQLiteConfig(cfg.Path)
		database := sqlite.NewSQLiteDB(sqliteCfg)
		if err := database.Connect(); err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite store %s: %w", sqliteCfg.Path, err)
		}
		log.Info().Str("path", sqliteCfg.Path).Msg("Connected to sqlite store")

		sqlDB := database.DB()
		dir := application.NewDirectory(
			persistence.NewClassroomRepository(sqlDB),
			persistence.NewImageRepository(sqlDB),
			db.NewTxManager(sqlDB),
		)
		return dir, database.Close, nil

	case config.DriverRedis:
		database := rdb.NewRedisDB(&rdb.Config{
			Host:     cfg.Host,
			Port:     cfg.Port,
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		})
		if err := bootstrap.ConnectWithRetry(ctx, database.Connect, cfg.ConnectRetries, retryBase); err != nil {
			return nil, nil, fmt.Errorf("failed to connect to redis store %s:%s: %w", cfg.Host, cfg.Port, err)
		}
		log.Info().Str("host", cfg.Host).Str("port", cfg.Port).Int("database", cfg.Database).Msg("Connected to redis store")

		dir := application.NewDirectory(
			persistence.NewRedisClassroomRepository(database),
			persistence.NewRedisImageRepository(database),
			database,
		)
		return dir, database.Close, nil

	case config.DriverBolt:
		database := bolt.NewBoltDB(cfg.Path, persistence.ImagesBucket, persistence.ClassroomsBucket)
		if err := database.Connect(); err != nil {
			return nil, nil, fmt.Errorf("failed to open bolt store %s: %w", database.Path(), err)
		}
		log.Info().Str("path", database.Path()).Msg("Connected to bolt store")

		dir := application.NewDirectory(
			persistence.NewBoltClassroomRepository(database),
			persistence.NewBoltImageRepository(database),
			database,
		)
		return dir, database.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
