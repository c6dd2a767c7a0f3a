package test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/satlayer/satlayer-api/chainio/types"
	"github.com/satlayer/satlayer-api/logger"
	transactionprocess "github.com/satlayer/satlayer-api/metrics/indicators/transaction_process"

	"github.com/satlayer/satlayer-api/chainio/io"

	BvsCounterApi "github.com/satlayer/counter-oracle-bvs/bvs_counter_api"
	"github.com/stretchr/testify/assert"
)

// Exercises the full request/answer round trip against a live testnet
// deployment. Renamed from TestVerificationRoundTrip so it does not run in
// CI; it needs a funded key under homeDir.
func testVerificationRoundTrip(t *testing.T) {
	contrAddr := "bbn1mzq6xzynh002x090rzt6us37scfexpu8ca4sllc3p3scn5mvsp0q5cs73s"
	chainID := "sat-bbn-testnet1"
	rpcURI := "https://rpc.sat-bbn-testnet1.satlayer.net"
	homeDir := "../../.babylond"
	keyName := "wallet1"

	elkLogger := logger.NewMockELKLogger()
	reg := prometheus.NewRegistry()
	metricsIndicators := transactionprocess.NewPromIndicators(reg, "counter_oracle_bvs")
	chainIO, err := io.NewChainIO(chainID, rpcURI, homeDir, "bbn", elkLogger, metricsIndicators, types.TxManagerParams{
		MaxRetries:             3,
		RetryInterval:          1 * time.Second,
		ConfirmationTimeout:    60 * time.Second,
		GasPriceAdjustmentRate: "1.1",
	})
	assert.NoError(t, err, "failed to create chain IO")
	chainIO, err = chainIO.SetupKeyring(keyName, "test")
	assert.NoError(t, err, "failed to setup keyring")

	bvsCounter := BvsCounterApi.NewBVSCounter(chainIO)
	bvsCounter.BindClient(contrAddr)

	txResp, err := bvsCounter.RequestVerification(context.Background(), "req-test-1", "0x0000000000000000000000000000000000000000", 100)
	assert.NoError(t, err, "failed to request verification")
	t.Logf("RequestVerification txn: %s", txResp.Hash.String())

	txResp, err = bvsCounter.AnswerVerification(context.Background(), "req-test-1", 5, "")
	assert.NoError(t, err, "failed to answer verification")
	t.Logf("AnswerVerification txn: %s", txResp.Hash.String())

	resp, err := bvsCounter.GetVerificationResult("req-test-1")
	assert.NoError(t, err, "failed to query verification result")
	t.Logf("verification result: %s", resp.Data)
}
