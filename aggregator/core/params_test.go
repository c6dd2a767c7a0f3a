package core

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParamsDefaults(t *testing.T) {
	s := NewParamStore(Params{})
	p := s.Snapshot()
	assert.Equal(t, uint64(1000000), p.RewardAmount)
	assert.Equal(t, uint64(500000), p.SlashAmount)
	assert.Equal(t, int64(10), p.ReputationIncreaseStep)
	assert.Equal(t, int64(25), p.ReputationDecreaseStep)
	assert.Equal(t, int64(100), p.InitialReputation)
	assert.Equal(t, int64(0), p.MinReputation)
	assert.Equal(t, int64(1000), p.MaxReputation)
	assert.Equal(t, []string{"wasm-VerificationAnswered"}, p.OracleEventTypes)
}

func TestParamStoreUpdateVisibleToVerdict(t *testing.T) {
	s := NewParamStore(Params{})

	p := s.Snapshot()
	p.SlashAmount = 123
	p.ReputationDecreaseStep = 7
	s.Update(p)

	v := s.Verdict()
	assert.Equal(t, uint64(123), v.SlashAmount)
	assert.Equal(t, int64(7), v.DecreaseStep)
	assert.Equal(t, int64(100), s.InitialReputation())
}

func TestParamStoreConcurrentReaders(t *testing.T) {
	s := NewParamStore(Params{})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = s.Verdict()
				p := s.Snapshot()
				s.Update(p)
			}
		}()
	}
	wg.Wait()
}

func TestTaskStatusString(t *testing.T) {
	assert.Equal(t, "created", TaskCreated.String())
	assert.Equal(t, "validating", TaskValidating.String())
	assert.Equal(t, "failed", TaskFailed.String())
	assert.False(t, TaskValidating.Terminal())
	assert.True(t, TaskValidated.Terminal())
	assert.True(t, TaskFailed.Terminal())

	b, err := TaskSubmitted.MarshalJSON()
	assert.NoError(t, err)
	assert.Equal(t, `"submitted"`, string(b))
}
