package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"

	"github.com/Dosada05/clubhub/config"
)

// Connect открывает пул Postgres с лимитами из конфигурации и проверяет
// соединение в пределах ConnectTimeout.
func Connect(ctx context.Context, dsn string, pool config.DBConfig, logger *slog.Logger) (*sql.DB, error) {
	conn, err := open(dsn, pool)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, pool.ConnectTimeout)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			logger.Error("closing database handle after failed ping", slog.Any("error", closeErr))
		}
		return nil, fmt.Errorf("database unreachable after %v: %w", pool.ConnectTimeout, err)
	}

	logger.Info("database connected",
		slog.Int("max_open_conns", pool.MaxOpenConns),
		slog.Int("max_idle_conns", pool.MaxIdleConns))
	return conn, nil
}

// open не ходит в сеть: sql.Open только готовит пул.
func open(dsn string, pool config.DBConfig) (*sql.DB, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres handle: %w", err)
	}
	conn.SetMaxOpenConns(pool.MaxOpenConns)
	conn.SetMaxIdleConns(pool.MaxIdleConns)
	conn.SetConnMaxLifetime(pool.ConnMaxLifetime)
	conn.SetConnMaxIdleTime(pool.ConnMaxIdleTime)
	return conn, nil
}
