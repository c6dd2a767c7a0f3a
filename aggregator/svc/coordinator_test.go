package svc

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/satlayer/satlayer-api/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satlayer/counter-oracle-bvs/aggregator/core"
	"github.com/satlayer/counter-oracle-bvs/aggregator/ledger"
	"github.com/satlayer/counter-oracle-bvs/aggregator/registry"
)

// fakeChannel accepts requests in memory, standing in for the oracle contract.
type fakeChannel struct {
	mu      sync.Mutex
	nextErr error
	n       int
}

func (f *fakeChannel) Request(ctx context.Context, counterAddr string, targetVersion int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.nextErr != nil {
		return "", f.nextErr
	}
	f.n++
	return fmt.Sprintf("req-%d", f.n), nil
}

func newTestCoordinator() (*Coordinator, *fakeChannel, *registry.Registry, *ledger.Ledger) {
	reg := registry.New()
	led := ledger.New()
	channel := &fakeChannel{}
	params := core.NewParamStore(core.Params{})
	c := NewCoordinator(reg, led, channel, params, "0xcounter", logger.NewMockELKLogger())
	return c, channel, reg, led
}

func submitAndDispatch(t *testing.T, c *Coordinator, taskId uint64, claimed int64, submitter string) core.Task {
	t.Helper()
	ctx := context.Background()
	_, err := c.SubmitTask(ctx, taskId, 100, claimed, submitter)
	require.NoError(t, err)
	task, err := c.DispatchValidation(ctx, taskId)
	require.NoError(t, err)
	require.Equal(t, core.TaskValidating, task.Status)
	return task
}

func value(v int64) *int64 { return &v }

func TestMatchingClaimValidatesAndRewards(t *testing.T) {
	c, _, _, led := newTestCoordinator()
	task := submitAndDispatch(t, c, 1, 5, "bbn1operator")

	resolved, err := c.OnOracleResponse(context.Background(), core.OracleResult{
		RequestId: task.OracleRequestId,
		Value:     value(5),
	})
	require.NoError(t, err)
	assert.Equal(t, core.TaskValidated, resolved.Status)
	assert.Equal(t, int64(5), *resolved.ResolvedValue)

	op, err := led.Get("bbn1operator")
	require.NoError(t, err)
	assert.Equal(t, int64(110), op.Reputation)
	assert.Equal(t, uint64(1000000), op.TotalRewards)
	assert.Equal(t, uint64(0), op.TotalSlashed)
}

func TestMismatchedClaimFailsAndSlashes(t *testing.T) {
	c, _, _, led := newTestCoordinator()
	task := submitAndDispatch(t, c, 2, 7, "bbn1operator")

	resolved, err := c.OnOracleResponse(context.Background(), core.OracleResult{
		RequestId: task.OracleRequestId,
		Value:     value(5),
	})
	require.NoError(t, err)
	assert.Equal(t, core.TaskFailed, resolved.Status)
	assert.Equal(t, int64(5), *resolved.ResolvedValue)

	op, err := led.Get("bbn1operator")
	require.NoError(t, err)
	assert.Equal(t, int64(75), op.Reputation)
	assert.Equal(t, uint64(0), op.TotalRewards)
	assert.Equal(t, uint64(500000), op.TotalSlashed)
}

func TestOracleErrorFailsLikeMismatch(t *testing.T) {
	c, _, _, led := newTestCoordinator()
	task := submitAndDispatch(t, c, 3, 5, "bbn1operator")

	resolved, err := c.OnOracleResponse(context.Background(), core.OracleResult{
		RequestId: task.OracleRequestId,
		Err:       "execution reverted",
	})
	require.NoError(t, err)
	assert.Equal(t, core.TaskFailed, resolved.Status)
	assert.Nil(t, resolved.ResolvedValue)

	op, err := led.Get("bbn1operator")
	require.NoError(t, err)
	assert.Equal(t, int64(75), op.Reputation)
	assert.Equal(t, uint64(500000), op.TotalSlashed)
}

func TestDuplicateResponseLeavesLedgerUnchanged(t *testing.T) {
	c, _, _, led := newTestCoordinator()
	task := submitAndDispatch(t, c, 4, 5, "bbn1operator")

	result := core.OracleResult{RequestId: task.OracleRequestId, Value: value(5)}
	_, err := c.OnOracleResponse(context.Background(), result)
	require.NoError(t, err)

	_, err = c.OnOracleResponse(context.Background(), result)
	assert.ErrorIs(t, err, core.ErrAlreadyResolved)

	op, err := led.Get("bbn1operator")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), op.TaskCount)
	assert.Equal(t, int64(110), op.Reputation)
	assert.Equal(t, uint64(1000000), op.TotalRewards)
}

func TestUnknownRequestIdMutatesNothing(t *testing.T) {
	c, _, reg, _ := newTestCoordinator()
	submitAndDispatch(t, c, 5, 5, "bbn1operator")

	_, err := c.OnOracleResponse(context.Background(), core.OracleResult{
		RequestId: "req-never-issued",
		Value:     value(5),
	})
	assert.ErrorIs(t, err, core.ErrUnknownRequest)

	task, err := reg.Get(5)
	require.NoError(t, err)
	assert.Equal(t, core.TaskValidating, task.Status)
}

func TestChannelRejectionLeavesTaskSubmitted(t *testing.T) {
	c, channel, reg, _ := newTestCoordinator()
	_, err := c.SubmitTask(context.Background(), 6, 100, 5, "bbn1operator")
	require.NoError(t, err)

	channel.nextErr = errors.New("sequence mismatch")
	_, err = c.DispatchValidation(context.Background(), 6)
	require.Error(t, err)

	task, err := reg.Get(6)
	require.NoError(t, err)
	assert.Equal(t, core.TaskSubmitted, task.Status)
	assert.Empty(t, task.OracleRequestId)

	// retry succeeds once the channel accepts
	channel.nextErr = nil
	task, err = c.DispatchValidation(context.Background(), 6)
	require.NoError(t, err)
	assert.Equal(t, core.TaskValidating, task.Status)
}

func TestDispatchRequiresSubmittedTask(t *testing.T) {
	c, _, _, _ := newTestCoordinator()
	_, err := c.DispatchValidation(context.Background(), 99)
	assert.ErrorIs(t, err, core.ErrNotFound)

	task := submitAndDispatch(t, c, 7, 5, "bbn1operator")
	_, err = c.DispatchValidation(context.Background(), task.TaskId)
	assert.ErrorIs(t, err, core.ErrInvalidTransition)
}

func TestResubmissionRejected(t *testing.T) {
	c, _, _, _ := newTestCoordinator()
	_, err := c.SubmitTask(context.Background(), 8, 100, 5, "bbn1operator")
	require.NoError(t, err)
	_, err = c.SubmitTask(context.Background(), 8, 100, 6, "bbn1other")
	assert.ErrorIs(t, err, core.ErrInvalidTransition)
}

func TestConcurrentResponsesApplyOneVerdict(t *testing.T) {
	c, _, _, led := newTestCoordinator()
	task := submitAndDispatch(t, c, 9, 5, "bbn1operator")

	const deliveries = 10
	var wg sync.WaitGroup
	applied := make(chan core.TaskStatus, deliveries)
	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resolved, err := c.OnOracleResponse(context.Background(), core.OracleResult{
				RequestId: task.OracleRequestId,
				Value:     value(5),
			})
			if err == nil {
				applied <- resolved.Status
			}
		}()
	}
	wg.Wait()
	close(applied)

	count := 0
	for range applied {
		count++
	}
	require.Equal(t, 1, count, "exactly one delivery must apply")

	op, err := led.Get("bbn1operator")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), op.TaskCount)
	assert.Equal(t, uint64(1000000), op.TotalRewards)
}

func TestVerdictUsesParamsCurrentAtResolveTime(t *testing.T) {
	reg := registry.New()
	led := ledger.New()
	channel := &fakeChannel{}
	params := core.NewParamStore(core.Params{})
	c := NewCoordinator(reg, led, channel, params, "0xcounter", logger.NewMockELKLogger())

	task := submitAndDispatch(t, c, 10, 5, "bbn1operator")

	// params change while the task is in flight
	p := params.Snapshot()
	p.RewardAmount = 42
	p.ReputationIncreaseStep = 1
	params.Update(p)

	_, err := c.OnOracleResponse(context.Background(), core.OracleResult{
		RequestId: task.OracleRequestId,
		Value:     value(5),
	})
	require.NoError(t, err)

	op, err := led.Get("bbn1operator")
	require.NoError(t, err)
	assert.Equal(t, int64(101), op.Reputation)
	assert.Equal(t, uint64(42), op.TotalRewards)
}
