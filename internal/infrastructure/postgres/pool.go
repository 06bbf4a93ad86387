// Package postgres implementa los repositorios sobre PostgreSQL (pgx v5).
package postgres

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"

	"github.com/jhoicas/valoracion-api/pkg/config"
)

// Zona horaria de la sesión: los cortes de mes del dashboard y las fechas de
// finalización se leen en hora de Buenos Aires.
const sessionTimeZone = "America/Argentina/Buenos_Aires"

// NewPool abre el pool, registra el codec NUMERIC ↔ decimal y hace ping.
func NewPool(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	params := poolConfig.ConnConfig.RuntimeParams
	params["application_name"] = "valoracion-api"
	params["timezone"] = sessionTimeZone
	if cfg.StatementTimeoutSeconds > 0 {
		params["statement_timeout"] = strconv.Itoa(cfg.StatementTimeoutSeconds*1000) + "ms"
	}

	// Montos NUMERIC como shopspring/decimal en todas las conexiones.
	poolConfig.AfterConnect = func(_ context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("crear pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping DB: %w", err)
	}
	return pool, nil
}
