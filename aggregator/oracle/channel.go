package oracle

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/satlayer/satlayer-api/chainio/api"
	"github.com/satlayer/satlayer-api/chainio/io"
	"github.com/satlayer/satlayer-api/chainio/types"
	"github.com/satlayer/satlayer-api/logger"
	transactionprocess "github.com/satlayer/satlayer-api/metrics/indicators/transaction_process"

	"github.com/satlayer/counter-oracle-bvs/aggregator/core"
	BvsCounterApi "github.com/satlayer/counter-oracle-bvs/bvs_counter_api"
)

// Channel is the asynchronous oracle boundary. Request issues exactly one
// verification request for the counter value at targetVersion and returns the
// request id used to correlate the eventual response. Responses arrive out of
// band through the Listener.
type Channel interface {
	Request(ctx context.Context, counterAddr string, targetVersion int64) (string, error)
}

type chainChannel struct {
	counterApi BvsCounterApi.BVSCounter
}

// NewChainChannel creates the oracle channel backed by the counter oracle
// contract. It sets up its own chain client from the global config.
func NewChainChannel() Channel {
	elkLogger := logger.NewELKLogger("counter_oracle_bvs")
	elkLogger.SetLogLevel("info")
	reg := prometheus.NewRegistry()
	metricsIndicators := transactionprocess.NewPromIndicators(reg, "counter_oracle_bvs")
	chainIO, err := io.NewChainIO(core.C.Chain.Id, core.C.Chain.Rpc, core.C.Owner.KeyDir, core.C.Owner.Bech32Prefix, elkLogger, metricsIndicators, types.TxManagerParams{
		MaxRetries:             5,
		RetryInterval:          3 * time.Second,
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
	counterApi := BvsCounterApi.NewBVSCounter(chainIO)
	counterApi.BindClient(txResp.BVSContract)

	return &chainChannel{counterApi: counterApi}
}

// Request submits the verification request on-chain. The request id is minted
// here and bound to the task by the caller only after the send is accepted,
// so a synchronous rejection commits no state.
func (c *chainChannel) Request(ctx context.Context, counterAddr string, targetVersion int64) (string, error) {
	requestId := uuid.NewString()
	if _, err := c.counterApi.RequestVerification(ctx, requestId, counterAddr, targetVersion); err != nil {
		return "", fmt.Errorf("request verification: %w", err)
	}
	return requestId, nil
}
