package lock

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrLockHeld is returned when another request holds the period lock.
var ErrLockHeld = errors.New("period_lock_held")

// PeriodLocker serialises lifecycle actions on one (employee, pay period).
type PeriodLocker interface {
	// Acquire returns a release func. The release func is safe to call
	// after ctx is cancelled.
	Acquire(ctx context.Context, employeeID, payPeriod string) (func(), error)
}

type redisPeriodLocker struct {
	locker *Locker
	ttl    time.Duration
}

func NewRedisPeriodLocker(locker *Locker, ttl time.Duration) PeriodLocker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &redisPeriodLocker{locker: locker, ttl: ttl}
}

func (p *redisPeriodLocker) Acquire(ctx context.Context, employeeID, payPeriod string) (func(), error) {
	key := PeriodKey(employeeID, payPeriod)
	token, ok, err := p.locker.TryLock(ctx, key, p.ttl)
	if err != nil {
		return nil, fmt.Errorf("acquire period lock: %w", err)
	}
	if !ok {
		return nil, ErrLockHeld
	}
	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = p.locker.Release(releaseCtx, key, token)
	}, nil
}

// PeriodKey is the Redis key guarding one employee's pay period.
func PeriodKey(employeeID, payPeriod string) string {
	return "payroll:lock:period:" + employeeID + ":" + payPeriod
}

type noopPeriodLocker struct{}

// NewNoopPeriodLocker is used when Redis is not configured; row locks and
// conditional updates are then the only concurrency guard.
func NewNoopPeriodLocker() PeriodLocker { return noopPeriodLocker{} }

func (noopPeriodLocker) Acquire(context.Context, string, string) (func(), error) {
	return func() {}, nil
}
