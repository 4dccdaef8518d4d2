package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sethvargo/go-retry"
	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"github.com/joestump/joe-bookmarks/internal/metrics"
)

// TxConfig bounds the transactions run by the stores.
type TxConfig struct {
	// Timeout caps one logical operation, retries included.
	Timeout time.Duration
	// MaxRetries is how many times a write conflict is retried before the
	// operation fails. Zero disables retries; a negative value means
	// DefaultTxConfig.MaxRetries.
	MaxRetries int
	// Backoff is the base delay before the first retry; it doubles after that.
	Backoff time.Duration
}

// DefaultTxConfig fills a zero Timeout or Backoff and a negative MaxRetries.
var DefaultTxConfig = TxConfig{
	Timeout:    5 * time.Second,
	MaxRetries: 2,
	Backoff:    10 * time.Millisecond,
}

func (c TxConfig) withDefaults() TxConfig {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTxConfig.Timeout
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = DefaultTxConfig.MaxRetries
	}
	if c.Backoff <= 0 {
		c.Backoff = DefaultTxConfig.Backoff
	}
	return c
}

// txRunner runs functions inside a database transaction.
type txRunner struct {
	db  *sqlx.DB
	cfg TxConfig
	log *zap.Logger
}

// withTx runs fn inside a transaction. The transaction commits when fn
// returns nil and rolls back otherwise; it is released on every path. Write
// conflicts are retried up to cfg.MaxRetries times, so fn must not have side
// effects outside the transaction. The whole call, retries included, is bounded
// by cfg.Timeout.
func (r *txRunner) withTx(ctx context.Context, op string, fn func(ctx context.Context, tx *sqlx.Tx) error) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	start := time.Now()
	defer func() {
		metrics.TxDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}()

	backoff := retry.WithMaxRetries(uint64(r.cfg.MaxRetries),
		retry.WithJitter(r.cfg.Backoff/2, retry.NewExponential(r.cfg.Backoff)))

	attempt := 0
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := r.withTxOnce(ctx, fn)
		if isWriteConflict(err) {
			metrics.TxConflictsTotal.WithLabelValues(op).Inc()
			r.log.Debug("transaction conflict",
				zap.String("op", op), zap.Int("attempt", attempt), zap.Error(err))
			return retry.RetryableError(err)
		}
		return err
	})
}

func (r *txRunner) withTxOnce(ctx context.Context, fn func(ctx context.Context, tx *sqlx.Tx) error) (err error) {
	tx, err := r.db.BeginTxx(ctx, r.txOptions())
	if err != nil {
		return err
	}
	defer func() {
		if err == nil {
			err = tx.Commit()
			return
		}
		rbErr := tx.Rollback()
		if rbErr == nil || errors.Is(rbErr, sql.ErrTxDone) {
			return
		}
		r.log.Warn("rollback failed", zap.Error(rbErr))
		if !hasKind(err) {
			err = errs.Combine(err, rbErr)
		}
	}()

	return fn(ctx, tx)
}

// txOptions asks for read committed where the driver supports choosing it.
// MySQL defaults to repeatable read, where a delete that lost a race would
// still see the deleted row in its snapshot.
func (r *txRunner) txOptions() *sql.TxOptions {
	switch r.db.DriverName() {
	case "mysql", "postgres", "pgx":
		return &sql.TxOptions{Isolation: sql.LevelReadCommitted}
	default:
		return nil
	}
}
