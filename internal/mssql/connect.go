// Package mssql provides the SQL Server client and the authentication
// fallback used to reach it: an explicit driver connection string when one
// is configured, then a trusted (SSO) connection, then basic credentials.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/provanalytics/provsync/internal/config"
)

// Strategy identifies one authentication strategy for reaching SQL Server.
type Strategy string

const (
	StrategyDriver Strategy = "driver"
	StrategySSO    Strategy = "sso"
	StrategyBasic  Strategy = "basic"
)

// prober opens a connection for a DSN and verifies it answers.
type prober func(ctx context.Context, dsn string) error

// Connector resolves a usable DSN by probing strategies in order and
// keeping the first one that connects.
type Connector struct {
	cfg    config.DatabaseConfig
	logger *slog.Logger
	probe  prober
}

// NewConnector creates a connector for the given database configuration.
func NewConnector(cfg config.DatabaseConfig, logger *slog.Logger) *Connector {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Connector{cfg: cfg, logger: logger, probe: pingProbe}
}

func pingProbe(ctx context.Context, dsn string) error {
	db, err := sql.Open("sqlserver", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	return db.PingContext(ctx)
}

// BuildDSN returns the connection string for a single strategy without
// probing it.
func (c *Connector) BuildDSN(s Strategy) (string, error) {
	switch s {
	case StrategyDriver:
		if c.cfg.DriverConn == "" {
			return "", fmt.Errorf("driver_conn is not configured")
		}
		return c.cfg.DriverConn, nil
	case StrategySSO:
		return fmt.Sprintf("server=%s;database=%s;trusted_connection=yes", c.cfg.Server, c.cfg.Database), nil
	case StrategyBasic:
		return fmt.Sprintf("server=%s;database=%s;user id=%s;password=%s",
			c.cfg.Server, c.cfg.Database, c.cfg.Username, c.cfg.Password), nil
	}
	return "", fmt.Errorf("unknown strategy %q", s)
}

// Strategies returns the attempt order for the current configuration:
// driver only when driver_conn is set, SSO only when enabled, basic always
// as the last resort.
func (c *Connector) Strategies() []Strategy {
	var order []Strategy
	if c.cfg.DriverConn != "" {
		order = append(order, StrategyDriver)
	}
	if strings.EqualFold(c.cfg.SSO, "yes") {
		order = append(order, StrategySSO)
	}
	return append(order, StrategyBasic)
}

// Probe checks a single strategy without keeping the connection.
func (c *Connector) Probe(ctx context.Context, s Strategy) error {
	dsn, err := c.BuildDSN(s)
	if err != nil {
		return err
	}
	return c.probe(ctx, dsn)
}

// Resolve probes each eligible strategy and returns the first DSN that
// connects, along with the strategy that produced it. When every strategy
// fails, the last error is surfaced.
func (c *Connector) Resolve(ctx context.Context) (string, Strategy, error) {
	var lastErr error
	for _, s := range c.Strategies() {
		dsn, err := c.BuildDSN(s)
		if err != nil {
			lastErr = err
			continue
		}
		if err := c.probe(ctx, dsn); err != nil {
			c.logger.Error("connection attempt failed", "strategy", string(s), "error", err)
			lastErr = err
			continue
		}
		c.logger.Info("connection established", "strategy", string(s))
		return dsn, s, nil
	}
	return "", "", fmt.Errorf("all connection strategies failed: %w", lastErr)
}
