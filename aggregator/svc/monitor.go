package svc

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/satlayer/counter-oracle-bvs/aggregator/core"
)

// Monitor drains the oracle response queue and feeds the coordinator.
type Monitor struct {
	coordinator *Coordinator
}

func NewMonitor(coordinator *Coordinator) *Monitor {
	return &Monitor{coordinator: coordinator}
}

// Run blocks on the response queue. Replayed deliveries are dropped by the
// seen-set before they reach the state machine; anything that slips past is
// still rejected there as already resolved.
func (m *Monitor) Run(ctx context.Context) {
	core.L.Info("Start to monitor oracle response queue")
	for {
		results, err := core.S.RedisConn.BLPop(ctx, 0, core.PkOracleResponseQueue).Result()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			core.L.Error(fmt.Sprintf("Failed to read response queue, due to {%s}", err))
			continue
		}
		var result core.OracleResult
		if err := json.Unmarshal([]byte(results[1]), &result); err != nil {
			core.L.Error(fmt.Sprintf("Failed to parse oracle response, due to {%s}", err))
			continue
		}
		added, err := core.S.RedisConn.SAdd(ctx, core.PkOracleResponseSeen, result.RequestId).Result()
		if err == nil && added == 0 {
			core.L.Info(fmt.Sprintf("Duplicate oracle response {%s} dropped", result.RequestId))
			continue
		}
		task, err := m.coordinator.OnOracleResponse(ctx, result)
		if err != nil {
			core.L.Error(fmt.Sprintf("Failed to apply oracle response {%s}, due to {%s}", result.RequestId, err))
			continue
		}
		pkTaskFinished := fmt.Sprintf("%s%d", core.PkTaskFinished, task.TaskId)
		if err := core.S.RedisConn.Set(ctx, pkTaskFinished, task.Status.String(), 24*time.Hour).Err(); err != nil {
			core.L.Error(fmt.Sprintf("Failed to mark task {%d} finished, due to {%s}", task.TaskId, err))
		}
	}
}
