package registry

import (
	"fmt"
	"sync"
	"time"

	"github.com/satlayer/counter-oracle-bvs/aggregator/core"
)

// Registry is the authoritative task store. It owns the task state machine:
// Created -> Submitted -> Validating -> {Validated | Failed}, never backwards,
// and the one-to-one correlation from oracle request id to task id.
//
// Access is serialized per task, not globally, so unrelated tasks progress
// concurrently. Tasks are never deleted; the registry is an audit trail.
type Registry struct {
	mu    sync.RWMutex
	tasks map[uint64]*taskEntry

	reqMu    sync.RWMutex
	requests map[string]uint64
}

type taskEntry struct {
	mu   sync.Mutex
	task core.Task
}

func New() *Registry {
	return &Registry{
		tasks:    make(map[uint64]*taskEntry),
		requests: make(map[string]uint64),
	}
}

// Create registers a new task at status Created.
// A task id is created at most once; duplicates fail with ErrAlreadyExists.
func (r *Registry) Create(taskId uint64, targetVersion int64) (core.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[taskId]; ok {
		return core.Task{}, fmt.Errorf("task %d: %w", taskId, core.ErrAlreadyExists)
	}
	e := &taskEntry{task: core.Task{
		TaskId:        taskId,
		TargetVersion: targetVersion,
		Status:        core.TaskCreated,
		CreatedAt:     time.Now(),
	}}
	r.tasks[taskId] = e
	return e.task, nil
}

// RecordSubmission attaches the operator's claim and advances Created -> Submitted.
func (r *Registry) RecordSubmission(taskId uint64, claimedValue int64, submitter string) (core.Task, error) {
	e, err := r.entry(taskId)
	if err != nil {
		return core.Task{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.task.Status != core.TaskCreated {
		return core.Task{}, fmt.Errorf("task %d is %s: %w", taskId, e.task.Status, core.ErrInvalidTransition)
	}
	e.task.ClaimedValue = claimedValue
	e.task.Submitter = submitter
	e.task.Status = core.TaskSubmitted
	return e.task, nil
}

// BeginValidation installs the request correlation and advances
// Submitted -> Validating atomically. When two dispatchers race on one task,
// exactly one succeeds; the other fails ErrInvalidTransition. A request id
// is never bound to a second task (ErrDuplicateRequest).
func (r *Registry) BeginValidation(taskId uint64, requestId string) (core.Task, error) {
	e, err := r.entry(taskId)
	if err != nil {
		return core.Task{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.task.Status != core.TaskSubmitted {
		return core.Task{}, fmt.Errorf("task %d is %s: %w", taskId, e.task.Status, core.ErrInvalidTransition)
	}
	r.reqMu.Lock()
	defer r.reqMu.Unlock()
	if boundTo, ok := r.requests[requestId]; ok {
		return core.Task{}, fmt.Errorf("request %s bound to task %d: %w", requestId, boundTo, core.ErrDuplicateRequest)
	}
	r.requests[requestId] = taskId
	e.task.OracleRequestId = requestId
	e.task.Status = core.TaskValidating
	return e.task, nil
}

// Resolve advances Validating -> Validated (matched) or Failed. A second
// resolve on a terminal task fails ErrAlreadyResolved with no side effect,
// which is what makes duplicate oracle delivery harmless.
func (r *Registry) Resolve(taskId uint64, resolvedValue *int64, matched bool) (core.Task, error) {
	e, err := r.entry(taskId)
	if err != nil {
		return core.Task{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.task.Status.Terminal() {
		return core.Task{}, fmt.Errorf("task %d is %s: %w", taskId, e.task.Status, core.ErrAlreadyResolved)
	}
	if e.task.Status != core.TaskValidating {
		return core.Task{}, fmt.Errorf("task %d is %s: %w", taskId, e.task.Status, core.ErrInvalidTransition)
	}
	e.task.ResolvedValue = resolvedValue
	if matched {
		e.task.Status = core.TaskValidated
	} else {
		e.task.Status = core.TaskFailed
	}
	e.task.ResolvedAt = time.Now()
	return e.task, nil
}

// Get returns a copy of the task record.
func (r *Registry) Get(taskId uint64) (core.Task, error) {
	e, err := r.entry(taskId)
	if err != nil {
		return core.Task{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.task, nil
}

// TaskForRequest maps an oracle request id back to its task. A request id
// that was never issued is a protocol violation, not a task error.
// Correlations are retained after use so a replayed response surfaces
// ErrAlreadyResolved at resolve time instead of ErrUnknownRequest here.
func (r *Registry) TaskForRequest(requestId string) (uint64, error) {
	r.reqMu.RLock()
	defer r.reqMu.RUnlock()
	taskId, ok := r.requests[requestId]
	if !ok {
		return 0, fmt.Errorf("request %s: %w", requestId, core.ErrUnknownRequest)
	}
	return taskId, nil
}

// Count returns the number of tasks ever created.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tasks)
}

func (r *Registry) entry(taskId uint64) (*taskEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.tasks[taskId]
	if !ok {
		return nil, fmt.Errorf("task %d: %w", taskId, core.ErrNotFound)
	}
	return e, nil
}
