package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// PostgresProvider is the gorm counterpart of MongoProvider: one *gorm.DB,
// opened lazily and shared.
type PostgresProvider struct {
	dsn string
	log zerolog.Logger

	once sync.Once
	db   *gorm.DB
	err  error
}

func NewPostgresProvider(dsn string, log zerolog.Logger) *PostgresProvider {
	return &PostgresProvider{dsn: dsn, log: log}
}

func (p *PostgresProvider) DB() (*gorm.DB, error) {
	p.once.Do(func() {
		db, err := gorm.Open(postgres.Open(p.dsn), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Warn),
		})
		if err != nil {
			p.err = fmt.Errorf("postgres connect: %w", err)
			return
		}

		sqlDB, err := db.DB()
		if err != nil {
			p.err = fmt.Errorf("postgres pool: %w", err)
			return
		}
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)

		p.db = db
		p.log.Info().Msg("✅ connected to PostgreSQL")
	})
	return p.db, p.err
}

func (p *PostgresProvider) Ping(ctx context.Context) error {
	db, err := p.DB()
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (p *PostgresProvider) Close(context.Context) error {
	if p.db == nil {
		return nil
	}
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
