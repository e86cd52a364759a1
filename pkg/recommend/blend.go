package recommend

import (
	"errors"
	"fmt"
	"math"
	"sync"
)

// ErrNonFinite reports that a blended vector contained NaN or Inf
// components, which would poison every subsequent update.
var ErrNonFinite = errors.New("preference vector has non-finite components")

var errDimensionMismatch = errors.New("vector dimensions differ")

// blend folds an item vector into an existing preference vector:
//
//	v_new = v_old*decay + v_item*factor
//
// then renormalizes to unit length. A zero-norm result is kept as-is rather
// than divided, so a degenerate vector stays a valid neutral query.
func blend(old, item []float32, decay, factor float64) ([]float32, error) {
	if len(old) != len(item) {
		return nil, fmt.Errorf("%w: %d vs %d", errDimensionMismatch, len(old), len(item))
	}

	out := make([]float32, len(old))
	var norm float64
	for i := range old {
		v := float64(old[i])*decay + float64(item[i])*factor
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, ErrNonFinite
		}
		out[i] = float32(v)
		norm += v * v
	}

	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range out {
			out[i] = float32(float64(out[i]) / norm)
		}
	}
	return out, nil
}

// userLocks serializes vector updates per user. Mutexes are never reclaimed;
// the map is bounded by the active user population of one process lifetime.
type userLocks struct {
	mu    sync.Mutex
	users map[uint64]*sync.Mutex
}

func newUserLocks() *userLocks {
	return &userLocks{users: make(map[uint64]*sync.Mutex)}
}

func (l *userLocks) lock(userID uint64) (unlock func()) {
	l.mu.Lock()
	m, ok := l.users[userID]
	if !ok {
		m = &sync.Mutex{}
		l.users[userID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
