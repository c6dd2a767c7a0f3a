package registry

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"github.com/satlayer/counter-oracle-bvs/aggregator/core"
)

func TestTaskLifecycle(t *testing.T) {
	r := New()

	task, err := r.Create(1, 100)
	require.NoError(t, err)
	assert.Equal(t, core.TaskCreated, task.Status)
	assert.False(t, task.CreatedAt.IsZero())

	task, err = r.RecordSubmission(1, 5, "bbn1operator")
	require.NoError(t, err)
	assert.Equal(t, core.TaskSubmitted, task.Status)
	assert.Equal(t, int64(5), task.ClaimedValue)
	assert.Equal(t, "bbn1operator", task.Submitter)

	task, err = r.BeginValidation(1, "req-1")
	require.NoError(t, err)
	assert.Equal(t, core.TaskValidating, task.Status)
	assert.Equal(t, "req-1", task.OracleRequestId)

	value := int64(5)
	task, err = r.Resolve(1, &value, true)
	require.NoError(t, err)
	assert.Equal(t, core.TaskValidated, task.Status)
	require.NotNil(t, task.ResolvedValue)
	assert.Equal(t, int64(5), *task.ResolvedValue)
	assert.False(t, task.ResolvedAt.IsZero())
}

func TestCreateDuplicate(t *testing.T) {
	r := New()
	_, err := r.Create(7, 100)
	require.NoError(t, err)
	_, err = r.Create(7, 200)
	assert.ErrorIs(t, err, core.ErrAlreadyExists)

	// the original record is untouched
	task, err := r.Get(7)
	require.NoError(t, err)
	assert.Equal(t, int64(100), task.TargetVersion)
}

func TestTransitionsNeverSkipStates(t *testing.T) {
	r := New()
	_, err := r.Create(1, 100)
	require.NoError(t, err)

	// Created task cannot begin validation or resolve
	_, err = r.BeginValidation(1, "req-1")
	assert.ErrorIs(t, err, core.ErrInvalidTransition)
	_, err = r.Resolve(1, nil, true)
	assert.ErrorIs(t, err, core.ErrInvalidTransition)

	_, err = r.RecordSubmission(1, 5, "bbn1operator")
	require.NoError(t, err)

	// Submitted task cannot be re-submitted or resolved
	_, err = r.RecordSubmission(1, 6, "bbn1other")
	assert.ErrorIs(t, err, core.ErrInvalidTransition)
	_, err = r.Resolve(1, nil, true)
	assert.ErrorIs(t, err, core.ErrInvalidTransition)

	// failed transitions leave the record unchanged
	task, err := r.Get(1)
	require.NoError(t, err)
	assert.Equal(t, core.TaskSubmitted, task.Status)
	assert.Equal(t, int64(5), task.ClaimedValue)
	assert.Equal(t, "bbn1operator", task.Submitter)
}

func TestUnknownTask(t *testing.T) {
	r := New()
	_, err := r.Get(99)
	assert.ErrorIs(t, err, core.ErrNotFound)
	_, err = r.RecordSubmission(99, 5, "bbn1operator")
	assert.ErrorIs(t, err, core.ErrNotFound)
	_, err = r.Resolve(99, nil, false)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestDuplicateRequestId(t *testing.T) {
	r := New()
	for _, id := range []uint64{1, 2} {
		_, err := r.Create(id, 100)
		require.NoError(t, err)
		_, err = r.RecordSubmission(id, 5, "bbn1operator")
		require.NoError(t, err)
	}

	_, err := r.BeginValidation(1, "req-1")
	require.NoError(t, err)
	_, err = r.BeginValidation(2, "req-1")
	assert.ErrorIs(t, err, core.ErrDuplicateRequest)

	// task 2 stays submitted and can be dispatched with a fresh request id
	task, err := r.Get(2)
	require.NoError(t, err)
	assert.Equal(t, core.TaskSubmitted, task.Status)
	assert.Empty(t, task.OracleRequestId)
	_, err = r.BeginValidation(2, "req-2")
	assert.NoError(t, err)
}

func TestResolveIdempotency(t *testing.T) {
	r := New()
	_, err := r.Create(1, 100)
	require.NoError(t, err)
	_, err = r.RecordSubmission(1, 5, "bbn1operator")
	require.NoError(t, err)
	_, err = r.BeginValidation(1, "req-1")
	require.NoError(t, err)

	value := int64(5)
	first, err := r.Resolve(1, &value, true)
	require.NoError(t, err)

	other := int64(9)
	_, err = r.Resolve(1, &other, false)
	assert.ErrorIs(t, err, core.ErrAlreadyResolved)

	// the first result stands unchanged
	task, err := r.Get(1)
	require.NoError(t, err)
	assert.Equal(t, first.Status, task.Status)
	assert.Equal(t, int64(5), *task.ResolvedValue)
}

func TestTaskForRequest(t *testing.T) {
	r := New()
	_, err := r.TaskForRequest("req-unknown")
	assert.ErrorIs(t, err, core.ErrUnknownRequest)

	_, err = r.Create(3, 100)
	require.NoError(t, err)
	_, err = r.RecordSubmission(3, 5, "bbn1operator")
	require.NoError(t, err)
	_, err = r.BeginValidation(3, "req-3")
	require.NoError(t, err)

	taskId, err := r.TaskForRequest("req-3")
	require.NoError(t, err)
	assert.Equal(t, uint64(3), taskId)

	// correlation survives resolution so replays surface AlreadyResolved
	_, err = r.Resolve(3, nil, false)
	require.NoError(t, err)
	taskId, err = r.TaskForRequest("req-3")
	require.NoError(t, err)
	assert.Equal(t, uint64(3), taskId)
}

func TestConcurrentResolveExactlyOnce(t *testing.T) {
	r := New()
	taskId := uint64(rand.Intn(100000))
	_, err := r.Create(taskId, 100)
	require.NoError(t, err)
	_, err = r.RecordSubmission(taskId, 5, "bbn1operator")
	require.NoError(t, err)
	_, err = r.BeginValidation(taskId, "req-race")
	require.NoError(t, err)

	const attempts = 16
	var wg sync.WaitGroup
	successes := make(chan core.TaskStatus, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		matched := i%2 == 0
		go func(matched bool) {
			defer wg.Done()
			value := int64(5)
			if task, err := r.Resolve(taskId, &value, matched); err == nil {
				successes <- task.Status
			}
		}(matched)
	}
	wg.Wait()
	close(successes)

	var won []core.TaskStatus
	for s := range successes {
		won = append(won, s)
	}
	require.Len(t, won, 1, "exactly one resolve must win")

	task, err := r.Get(taskId)
	require.NoError(t, err)
	assert.Equal(t, won[0], task.Status)
	assert.True(t, task.Status.Terminal())
}

func TestConcurrentBeginValidationExactlyOnce(t *testing.T) {
	r := New()
	_, err := r.Create(1, 100)
	require.NoError(t, err)
	_, err = r.RecordSubmission(1, 5, "bbn1operator")
	require.NoError(t, err)

	const attempts = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	var winners []string
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			requestId := "req-" + string(rune('a'+i))
			if _, err := r.BeginValidation(1, requestId); err == nil {
				mu.Lock()
				winners = append(winners, requestId)
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	require.Len(t, winners, 1, "exactly one dispatch must win")
	task, err := r.Get(1)
	require.NoError(t, err)
	assert.Equal(t, core.TaskValidating, task.Status)
	assert.Equal(t, winners[0], task.OracleRequestId)
}
