package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/satlayer/satlayer-api/chainio/api"
	"github.com/satlayer/satlayer-api/chainio/indexer"
	"github.com/satlayer/satlayer-api/chainio/io"
	"github.com/satlayer/satlayer-api/chainio/types"
	"github.com/satlayer/satlayer-api/logger"
	transactionprocess "github.com/satlayer/satlayer-api/metrics/indicators/transaction_process"

	"github.com/satlayer/counter-oracle-bvs/aggregator/core"
)

// Listener watches the oracle contract for answered verifications and pushes
// them onto the redis response queue, where the svc monitor picks them up.
type Listener struct {
	bvsContract string
	chainIO     io.ChainIO
}

// NewListener creates a new Listener instance with a chain client and the
// BVS contract resolved from the directory.
func NewListener() *Listener {
	elkLogger := logger.NewELKLogger("counter_oracle_bvs")
	elkLogger.SetLogLevel("info")
	reg := prometheus.NewRegistry()
	metricsIndicators := transactionprocess.NewPromIndicators(reg, "counter_oracle_bvs")
	chainIO, err := io.NewChainIO(core.C.Chain.Id, core.C.Chain.Rpc, core.C.Owner.KeyDir, core.C.Owner.Bech32Prefix, elkLogger, metricsIndicators, types.TxManagerParams{
		MaxRetries:             3,
		RetryInterval:          1 * time.Second,
		ConfirmationTimeout:    60 * time.Second,
		GasPriceAdjustmentRate: "1.1",
	})
	if err != nil {
		panic(err)
	}
	chainIO, err = chainIO.SetupKeyring(core.C.Owner.KeyName, core.C.Owner.KeyringBackend)
	if err != nil {
		panic(err)
	}
	txResp, err := api.NewBVSDirectoryImpl(chainIO, core.C.Chain.BvsDirectory).GetBVSInfo(core.C.Chain.BvsHash)
	if err != nil {
		panic(err)
	}
	return &Listener{
		bvsContract: txResp.BVSContract,
		chainIO:     chainIO,
	}
}

// Run starts the event indexer and forwards oracle answers to the response
// queue. Malformed events are logged and dropped; they never reach the
// state machine.
func (l *Listener) Run(ctx context.Context) {
	res, err := l.chainIO.QueryNodeStatus(ctx)
	if err != nil {
		panic(err)
	}
	latestBlock := res.SyncInfo.LatestBlockHeight
	params := core.P.Snapshot()
	evtIndexer := indexer.NewEventIndexer(
		l.chainIO.GetClientCtx(),
		l.bvsContract,
		latestBlock,
		params.OracleEventTypes,
		params.OracleRateLimit,
		params.OracleMaxWorkers)
	evtChain, err := evtIndexer.Run(ctx)
	if err != nil {
		panic(err)
	}
	core.L.Info("Start to listen for oracle answers")
	for evt := range evtChain {
		switch evt.EventType {
		case "wasm-VerificationAnswered":
			result, err := resultFromEvent(evt.AttrMap)
			if err != nil {
				core.L.Error(fmt.Sprintf("Failed to parse oracle answer, due to {%s}", err))
				continue
			}
			payload, err := json.Marshal(result)
			if err != nil {
				core.L.Error(fmt.Sprintf("Failed to marshal oracle answer, due to {%s}", err))
				continue
			}
			if err := core.S.RedisConn.LPush(ctx, core.PkOracleResponseQueue, payload).Err(); err != nil {
				core.L.Error(fmt.Sprintf("Failed to enqueue oracle answer, due to {%s}", err))
			}
		default:
			core.L.Info(fmt.Sprintf("Unknown event type {%s}", evt.EventType))
		}
	}
}

func resultFromEvent(attrs map[string]string) (core.OracleResult, error) {
	requestId := attrs["request_id"]
	if requestId == "" {
		return core.OracleResult{}, fmt.Errorf("missing request_id attribute")
	}
	result := core.OracleResult{RequestId: requestId, Err: attrs["error"]}
	if result.Err == "" {
		value, err := strconv.ParseInt(attrs["value"], 10, 64)
		if err != nil {
			return core.OracleResult{}, fmt.Errorf("bad value attribute: %w", err)
		}
		result.Value = &value
	}
	return result, nil
}
