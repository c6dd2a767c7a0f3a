package svc

import (
	"context"
	"errors"
	"fmt"

	"github.com/satlayer/satlayer-api/logger"

	"github.com/satlayer/counter-oracle-bvs/aggregator/core"
	"github.com/satlayer/counter-oracle-bvs/aggregator/ledger"
	"github.com/satlayer/counter-oracle-bvs/aggregator/oracle"
	"github.com/satlayer/counter-oracle-bvs/aggregator/registry"
)

// Coordinator drives a claim from submission through oracle dispatch to the
// verdict. It is safe for concurrent invocation: the registry serializes
// transitions per task, and the registry's terminal-state idempotency is what
// guarantees the ledger sees exactly one verdict per resolved task.
type Coordinator struct {
	registry    *registry.Registry
	ledger      *ledger.Ledger
	channel     oracle.Channel
	params      *core.ParamStore
	counterAddr string
	log         logger.Logger
}

func NewCoordinator(reg *registry.Registry, led *ledger.Ledger, channel oracle.Channel, params *core.ParamStore, counterAddr string, log logger.Logger) *Coordinator {
	return &Coordinator{
		registry:    reg,
		ledger:      led,
		channel:     channel,
		params:      params,
		counterAddr: counterAddr,
		log:         log,
	}
}

// SubmitTask records the operator's claim and lazily registers the operator.
// The task is created if absent, then advanced Created -> Submitted.
func (c *Coordinator) SubmitTask(ctx context.Context, taskId uint64, targetVersion int64, claimedValue int64, submitter string) (core.Task, error) {
	if _, err := c.registry.Create(taskId, targetVersion); err != nil && !errors.Is(err, core.ErrAlreadyExists) {
		return core.Task{}, err
	}
	task, err := c.registry.RecordSubmission(taskId, claimedValue, submitter)
	if err != nil {
		return core.Task{}, err
	}
	c.ledger.RegisterIfAbsent(submitter, c.params.InitialReputation())
	c.log.Info(fmt.Sprintf("Task {%d} submitted by {%s}, claimed value {%d} at height {%d}", taskId, submitter, claimedValue, targetVersion))
	return task, nil
}

// DispatchValidation issues the oracle request for a submitted task. A
// synchronous channel rejection leaves the task Submitted with no partial
// state, so the caller may retry.
func (c *Coordinator) DispatchValidation(ctx context.Context, taskId uint64) (core.Task, error) {
	task, err := c.registry.Get(taskId)
	if err != nil {
		return core.Task{}, err
	}
	if task.Status != core.TaskSubmitted {
		return core.Task{}, fmt.Errorf("task %d is %s: %w", taskId, task.Status, core.ErrInvalidTransition)
	}
	requestId, err := c.channel.Request(ctx, c.counterAddr, task.TargetVersion)
	if err != nil {
		return core.Task{}, fmt.Errorf("oracle channel rejected task %d: %w", taskId, err)
	}
	task, err = c.registry.BeginValidation(taskId, requestId)
	if err != nil {
		// lost a dispatch race; the winning request stands
		c.log.Error(fmt.Sprintf("Failed to begin validation for task {%d}, due to {%s}", taskId, err))
		return core.Task{}, err
	}
	c.log.Info(fmt.Sprintf("Task {%d} validating via oracle request {%s}", taskId, requestId))
	return task, nil
}

// OnOracleResponse resolves the correlated task and applies the verdict.
// An oracle execution error is a domain event, not a retry: the task fails
// and the operator is slashed, exactly as for a value mismatch.
func (c *Coordinator) OnOracleResponse(ctx context.Context, result core.OracleResult) (core.Task, error) {
	taskId, err := c.registry.TaskForRequest(result.RequestId)
	if err != nil {
		return core.Task{}, err
	}
	task, err := c.registry.Get(taskId)
	if err != nil {
		return core.Task{}, err
	}

	matched := false
	var resolvedValue *int64
	if result.Err == "" && result.Value != nil {
		resolvedValue = result.Value
		matched = *result.Value == task.ClaimedValue
	}
	task, err = c.registry.Resolve(taskId, resolvedValue, matched)
	if err != nil {
		return core.Task{}, err
	}

	op, err := c.ledger.ApplyVerdict(task.Submitter, matched, c.params.Verdict())
	if err != nil {
		return core.Task{}, fmt.Errorf("verdict for task %d: %w", taskId, err)
	}
	c.log.Info(fmt.Sprintf("Task {%d} resolved as {%s}. Operator {%s} reputation is {%d}", taskId, task.Status, op.Address, op.Reputation))
	return task, nil
}

// GetTask exposes the task record for the query surface.
func (c *Coordinator) GetTask(taskId uint64) (core.Task, error) {
	return c.registry.Get(taskId)
}
