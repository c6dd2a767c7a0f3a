package ledger

import (
	"fmt"
	"sync"
	"time"

	"github.com/satlayer/counter-oracle-bvs/aggregator/core"
)

// Ledger owns all operator records. Other components read copies through the
// accessor queries; every mutation happens here, serialized per operator.
// Operators are never destroyed and reward/slash totals never decrease.
type Ledger struct {
	mu        sync.RWMutex
	operators map[string]*operatorEntry
	order     []string
}

type operatorEntry struct {
	mu sync.Mutex
	op core.Operator
}

func New() *Ledger {
	return &Ledger{operators: make(map[string]*operatorEntry)}
}

// RegisterIfAbsent creates the operator on first sight with the given initial
// reputation and zeroed counters. Idempotent: an existing record is returned
// unchanged.
func (l *Ledger) RegisterIfAbsent(address string, initialReputation int64) core.Operator {
	l.mu.RLock()
	e, ok := l.operators[address]
	l.mu.RUnlock()
	if ok {
		e.mu.Lock()
		defer e.mu.Unlock()
		return e.op
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.operators[address]; ok {
		e.mu.Lock()
		defer e.mu.Unlock()
		return e.op
	}
	e = &operatorEntry{op: newOperator(address, initialReputation)}
	l.operators[address] = e
	l.order = append(l.order, address)
	return e.op
}

// Register is the explicit registration entry point used by external
// administration. Unlike RegisterIfAbsent it fails ErrAlreadyRegistered.
func (l *Ledger) Register(address string, initialReputation int64) (core.Operator, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.operators[address]; ok {
		return core.Operator{}, fmt.Errorf("operator %s: %w", address, core.ErrAlreadyRegistered)
	}
	e := &operatorEntry{op: newOperator(address, initialReputation)}
	l.operators[address] = e
	l.order = append(l.order, address)
	return e.op, nil
}

// ApplyVerdict applies one resolved task to the operator record. The caller
// guarantees call-once per task through the registry's terminal-state
// idempotency. Reputation is clamped to [MinReputation, MaxReputation] after
// every update, never overflowed.
func (l *Ledger) ApplyVerdict(address string, success bool, p core.VerdictParams) (core.Operator, error) {
	e, err := l.entry(address)
	if err != nil {
		return core.Operator{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if success {
		e.op.SuccessCount++
		e.op.Reputation = clamp(e.op.Reputation+p.IncreaseStep, p.MinReputation, p.MaxReputation)
		e.op.TotalRewards += p.RewardAmount
	} else {
		e.op.Reputation = clamp(e.op.Reputation-p.DecreaseStep, p.MinReputation, p.MaxReputation)
		e.op.TotalSlashed += p.SlashAmount
	}
	e.op.TaskCount++
	e.op.LastActivityTime = time.Now()
	return e.op, nil
}

// Get returns a copy of the operator record, ErrNotRegistered if unknown.
func (l *Ledger) Get(address string) (core.Operator, error) {
	e, err := l.entry(address)
	if err != nil {
		return core.Operator{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.op, nil
}

// SuccessRate returns floor(successCount * 100 / taskCount), 0 when the
// operator has no resolved tasks yet.
func (l *Ledger) SuccessRate(address string) (uint64, error) {
	e, err := l.entry(address)
	if err != nil {
		return 0, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.op.TaskCount == 0 {
		return 0, nil
	}
	return e.op.SuccessCount * 100 / e.op.TaskCount, nil
}

// ListOperators returns operator addresses in insertion order.
func (l *Ledger) ListOperators() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]string, len(l.order))
	copy(out, l.order)
	return out
}

func (l *Ledger) entry(address string) (*operatorEntry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	e, ok := l.operators[address]
	if !ok {
		return nil, fmt.Errorf("operator %s: %w", address, core.ErrNotRegistered)
	}
	return e, nil
}

func newOperator(address string, initialReputation int64) core.Operator {
	return core.Operator{
		Address:          address,
		Reputation:       initialReputation,
		LastActivityTime: time.Now(),
		Active:           true,
	}
}

func clamp(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
