package task

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	rio "io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/satlayer/satlayer-api/chainio/types"
	"github.com/satlayer/satlayer-api/logger"
	transactionprocess "github.com/satlayer/satlayer-api/metrics/indicators/transaction_process"

	"github.com/satlayer/satlayer-api/chainio/io"

	BvsCounterApi "github.com/satlayer/counter-oracle-bvs/bvs_counter_api"
	"github.com/satlayer/counter-oracle-bvs/task/core"
	"github.com/satlayer/satlayer-api/chainio/api"
)

type Caller struct {
	bvsContract string
	chainIO     io.ChainIO
}

// RunCaller runs the caller by creating a new caller and executing its Run method.
//
// No parameters.
// No return.
func RunCaller() {
	c := NewCaller()
	c.Run()
}

// NewCaller creates a new Caller instance.
//
// Returns a pointer to Caller.
func NewCaller() *Caller {
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
	client, err := chainIO.SetupKeyring(core.C.Owner.KeyName, core.C.Owner.KeyringBackend)
	if err != nil {
		panic(err)
	}
	txResp, err := api.NewBVSDirectoryImpl(client, core.C.Chain.BvsDirectory).GetBVSInfo(core.C.Chain.BvsHash)
	if err != nil {
		panic(err)
	}
	fmt.Printf("txResp: %+v\n", txResp)
	return &Caller{
		bvsContract: txResp.BVSContract,
		chainIO:     client,
	}
}

// Run runs the caller in an infinite loop, creating a new counter task at the
// latest observed block every 30 seconds.
//
// No parameters.
// No return.
func (c *Caller) Run() {
	bvsCounter := BvsCounterApi.NewBVSCounter(c.chainIO)
	bvsCounter.BindClient(c.bvsContract)

	for {
		blockNumber, err := c.fetchLatestBlockNumber()
		if err != nil {
			fmt.Printf("Error fetching latest block: %v\n", err)
			time.Sleep(30 * time.Second)
			continue
		}
		resp, err := bvsCounter.CreateNewTask(context.Background(), core.C.Chain.CounterAddr, blockNumber)
		if err != nil {
			fmt.Printf("Error creating task at block %d: %v\n", blockNumber, err)
			continue
		}
		fmt.Printf("Created task at block %d with tx hash: %s\n", blockNumber, resp.Hash.String())

		time.Sleep(30 * time.Second)
	}
}

// fetchLatestBlockNumber retrieves the latest block number from the configured RPC endpoint.
//
// Returns the block number as an int64.
// If there is an error during the retrieval, an error will be returned.
func (c *Caller) fetchLatestBlockNumber() (int64, error) {
	payload := map[string]interface{}{
		"jsonrpc": "2.0",
		"method":  "eth_blockNumber",
		"params":  []interface{}{},
		"id":      1,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal JSON payload: %v", err)
	}

	resp, err := http.Post(core.C.Rpc.Endpoint, "application/json", bytes.NewBuffer(data))
	if err != nil {
		return 0, fmt.Errorf("failed to send request to RPC endpoint: %v", err)
	}
	defer resp.Body.Close()

	body, err := rio.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read response body: %v", err)
	}

	var result struct {
		Result string `json:"result"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return 0, fmt.Errorf("failed to parse JSON response: %v", err)
	}

	var latestBlockNumber int64
	if _, err := fmt.Sscanf(result.Result, "0x%x", &latestBlockNumber); err != nil {
		return 0, fmt.Errorf("failed to parse block number: %v", err)
	}
	return latestBlockNumber, nil
}
