// Package archive persists backtest results to ClickHouse so runs can be
// compared across parameter changes without re-reading the CSV outputs.
package archive

import (
	"context"
	"fmt"
	"time"

	clickhouse "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pritamkhande/nifty500-eod-upstox/services/engine"
)

// Store wraps a native-protocol ClickHouse connection.
type Store struct {
	conn     clickhouse.Conn
	database string
	table    string
}

// Options for opening a Store.
type Options struct {
	Addr     string
	Database string
	Username string
	Password string
	Table    string
}

// Open connects, pings, and makes sure the schema exists.
func Open(ctx context.Context, o Options) (*Store, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{o.Addr},
		Auth: clickhouse.Auth{
			Database: o.Database,
			Username: o.Username,
			Password: o.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": uint64(0),
		},
	})
	if err != nil {
		return nil, err
	}
	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("clickhouse ping: %w", err)
	}
	s := &Store{conn: conn, database: o.Database, table: o.Table}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.conn.Close() }

func (s *Store) ensureSchema(ctx context.Context) error {
	if err := s.conn.Exec(ctx, fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", s.database)); err != nil {
		return fmt.Errorf("create database: %w", err)
	}
	ddl := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s.%s (
			run_id UUID,
			symbol String,
			trade_no UInt32,
			signal_date Date,
			entry_date Date,
			exit_date Date,
			position LowCardinality(String),
			entry_price Decimal(18, 4),
			exit_price Decimal(18, 4),
			initial_stop Decimal(18, 4),
			final_stop Decimal(18, 4),
			pnl Float64,
			r Float64,
			exit_reason LowCardinality(String),
			square_type LowCardinality(String),
			ingested_at DateTime64(3),
			version UInt64
		)
		ENGINE = ReplacingMergeTree(version)
		ORDER BY (symbol, signal_date, trade_no)
		SETTINGS index_granularity = 8192
	`, s.database, s.table)
	return s.conn.Exec(ctx, ddl)
}

// InsertTrades appends one symbol's trades under the given run id.
func (s *Store) InsertTrades(ctx context.Context, runID uuid.UUID, symbol string, trades []engine.Trade) error {
	if len(trades) == 0 {
		return nil
	}
	batch, err := s.conn.PrepareBatch(ctx,
		fmt.Sprintf("INSERT INTO %s.%s SETTINGS insert_deduplicate=1", s.database, s.table))
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	now := time.Now().UTC()
	ver := uint64(now.UnixNano()) // ReplacingMergeTree keeps the newest version

	for _, tr := range trades {
		if err := batch.Append(
			runID,
			symbol,
			uint32(tr.No),
			tr.SignalDate,
			tr.EntryDate,
			tr.ExitDate,
			tr.Side.String(),
			price(tr.EntryPrice),
			price(tr.ExitPrice),
			price(tr.InitialStop),
			price(tr.FinalStop),
			tr.PnL,
			tr.R,
			string(tr.ExitReason),
			string(tr.SquareType),
			now,
			ver,
		); err != nil {
			return fmt.Errorf("batch append: %w", err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("batch send: %w", err)
	}
	return nil
}

func price(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(4)
}
