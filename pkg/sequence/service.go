// Package sequence provides tenant-scoped number issuance for tracking
// numbers, manifest numbers and payslip numbers.
//
// Every issuance is a single atomic UPDATE ... RETURNING on the counter row,
// so two concurrent callers can never observe the same value. A naive
// read-then-write pattern here would hand out duplicate tracking numbers
// under concurrent request load.
package sequence

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"parceldesk/internal/core/apperror"
)

// Well-known counter names. One row per (tenant, counter).
const (
	CounterTracking = "tracking"
	CounterManifest = "manifest"
	CounterPayslip  = "payslip"
)

// Querier interface for database operations.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Allocator issues sequential numbers from tenant-scoped counters.
type Allocator struct {
	querier Querier

	// retryDelay is the pause before the single retry on a transient
	// persistence failure. Overridable in tests.
	retryDelay time.Duration
}

// New creates an allocator on top of a pool or transaction querier.
func New(querier Querier) *Allocator {
	return &Allocator{
		querier:    querier,
		retryDelay: 50 * time.Millisecond,
	}
}

// IssueNext returns the next number for the tenant's counter, formatted as
// prefix + value (no padding, e.g. "GT100231"). The counter row must exist;
// issuance never provisions counters implicitly.
//
// The stored next_value is bumped in the same statement that reads it, so
// concurrent callers are serialized by the row lock and receive strictly
// increasing, pairwise distinct values.
func (a *Allocator) IssueNext(ctx context.Context, tenantKey, counter string) (string, error) {
	value, prefix, err := a.issue(ctx, tenantKey, counter)
	if err != nil {
		if retriable(err) {
			// One retry at the allocator layer only; everything above
			// surfaces persistence failures immediately.
			select {
			case <-time.After(a.retryDelay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
			value, prefix, err = a.issue(ctx, tenantKey, counter)
		}
		if err != nil {
			return "", err
		}
	}

	return prefix + strconv.FormatInt(value, 10), nil
}

func (a *Allocator) issue(ctx context.Context, tenantKey, counter string) (int64, string, error) {
	var (
		value  int64
		prefix string
	)
	err := a.querier.QueryRow(ctx, `
		UPDATE sys_sequences
		SET next_value = next_value + 1, updated_at = NOW()
		WHERE tenant_key = $1 AND counter = $2
		RETURNING next_value - 1, prefix
	`, tenantKey, counter).Scan(&value, &prefix)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, "", apperror.NewSequenceNotProvisioned(tenantKey, counter)
		}
		if isSerializationFailure(err) {
			return 0, "", apperror.NewConcurrentModification("sys_sequences", tenantKey+"/"+counter).
				WithCause(err)
		}
		return 0, "", err
	}

	return value, prefix, nil
}

// Provision creates the counter row for a tenant, or raises an existing
// counter's start value. It never lowers next_value, so re-running setup is
// safe and already-issued numbers stay unique.
func (a *Allocator) Provision(ctx context.Context, tenantKey, counter, prefix string, start int64) error {
	if start < 1 {
		return apperror.NewValidation("sequence start must be >= 1").
			WithDetail("start", start)
	}

	var next int64
	err := a.querier.QueryRow(ctx, `
		INSERT INTO sys_sequences (tenant_key, counter, prefix, next_value, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (tenant_key, counter) DO UPDATE SET
			prefix = EXCLUDED.prefix,
			next_value = GREATEST(sys_sequences.next_value, EXCLUDED.next_value),
			updated_at = NOW()
		RETURNING next_value
	`, tenantKey, counter, prefix, start).Scan(&next)
	if err != nil {
		return err
	}

	return nil
}

// retriable reports whether the failure is worth one retry: connection-level
// problems, not setup errors or logical conflicts.
func retriable(err error) bool {
	if apperror.IsAppError(err) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}

// isSerializationFailure matches Postgres serialization/deadlock SQLSTATEs.
func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}
