package node

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	rio "io"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/satlayer/satlayer-api/chainio/types"
	"github.com/satlayer/satlayer-api/logger"
	transactionprocess "github.com/satlayer/satlayer-api/metrics/indicators/transaction_process"

	"github.com/satlayer/satlayer-api/chainio/io"

	BvsCounterApi "github.com/satlayer/counter-oracle-bvs/bvs_counter_api"
	"github.com/satlayer/counter-oracle-bvs/bvs_offchain/core"
	"github.com/satlayer/satlayer-api/chainio/api"
	"github.com/satlayer/satlayer-api/chainio/indexer"
)

// Node is the offchain worker. It plays two roles against the counter oracle
// contract: operator (claims the counter value when a task is created) and
// oracle executor (answers verification requests with the value read at the
// requested height).
type Node struct {
	bvsContract string
	pubKeyStr   string
	chainIO     io.ChainIO
	counterApi  BvsCounterApi.BVSCounter
}

type Payload struct {
	TaskId      uint64 `json:"taskID"`
	BlockNumber int64  `json:"blockNumber"`
	Value       int64  `json:"value"`
	Timestamp   int64  `json:"timestamp"`
	Signature   string `json:"signature"`
	PubKey      string `json:"pubKey"`
}

// NewNode creates a new Node instance with the given configuration.
//
// It initializes a new Cosmos client, retrieves the account, and binds the counter oracle contract.
// Returns a pointer to the newly created Node instance.
func NewNode() *Node {
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
	account, err := chainIO.GetCurrentAccount()
	if err != nil {
		panic(err)
	}
	pubKeyStr := base64.StdEncoding.EncodeToString(account.GetPubKey().Bytes())
	txResp, err := api.NewBVSDirectoryImpl(chainIO, core.C.Chain.BvsDirectory).GetBVSInfo(core.C.Chain.BvsHash)
	if err != nil {
		panic(err)
	}
	counterApi := BvsCounterApi.NewBVSCounter(chainIO)
	counterApi.BindClient(txResp.BVSContract)

	return &Node{
		bvsContract: txResp.BVSContract,
		chainIO:     chainIO,
		pubKeyStr:   pubKeyStr,
		counterApi:  counterApi,
	}
}

// Run starts the node's main execution loop.
//
// ctx is the context for the Run function.
// No return value.
func (n *Node) Run(ctx context.Context) {
	if err := n.monitorContract(ctx); err != nil {
		panic(err)
	}
}

// monitorContract watches the counter oracle contract and reacts to new tasks
// and verification requests.
//
// ctx is the context for the monitorContract function.
// Returns an error if there is an issue with the monitoring process.
func (n *Node) monitorContract(ctx context.Context) (err error) {
	res, err := n.chainIO.QueryNodeStatus(ctx)
	if err != nil {
		panic(err)
	}
	latestBlock := res.SyncInfo.LatestBlockHeight
	fmt.Println("latestBlock: ", latestBlock)
	evtIndexer := indexer.NewEventIndexer(
		n.chainIO.GetClientCtx(),
		n.bvsContract,
		latestBlock,
		[]string{"wasm-NewTaskCreated", "wasm-VerificationRequested"},
		1,
		10)
	evtChain, err := evtIndexer.Run(ctx)
	if err != nil {
		panic(err)
	}
	for evt := range evtChain {
		switch evt.EventType {
		case "wasm-NewTaskCreated":
			if err := n.claimTask(evt.AttrMap); err != nil {
				core.L.Error(fmt.Sprintf("Failed to claim task, due to {%s}", err))
			}
		case "wasm-VerificationRequested":
			if err := n.answerVerification(ctx, evt.AttrMap); err != nil {
				core.L.Error(fmt.Sprintf("Failed to answer verification, due to {%s}", err))
			}
		default:
			fmt.Println("unhandled event: ", evt.EventType)
		}
	}
	return
}

// claimTask reads the counter at the task's height and submits the signed
// claim to the aggregator.
//
// attrs is the event attribute map of the NewTaskCreated event.
// Returns an error if the read or the submission fails.
func (n *Node) claimTask(attrs map[string]string) error {
	taskId, err := strconv.ParseUint(attrs["task_id"], 10, 64)
	if err != nil {
		return fmt.Errorf("bad task_id: %w", err)
	}
	blockNumber, err := strconv.ParseInt(attrs["block_number"], 10, 64)
	if err != nil {
		return fmt.Errorf("bad block_number: %w", err)
	}
	value, err := n.readCounterAt(attrs["counter_addr"], blockNumber)
	if err != nil {
		return fmt.Errorf("read counter: %w", err)
	}
	fmt.Printf("task %d: counter value %d at block %d\n", taskId, value, blockNumber)
	return n.sendAggregator(taskId, blockNumber, value)
}

// answerVerification reads the counter at the requested height and answers
// on-chain. A read failure is reported as an execution error answer, not
// swallowed, so the aggregator can fail the task.
//
// ctx is the context used for the on-chain answer.
// attrs is the event attribute map of the VerificationRequested event.
// Returns an error if the answer transaction fails.
func (n *Node) answerVerification(ctx context.Context, attrs map[string]string) error {
	requestId := attrs["request_id"]
	blockNumber, err := strconv.ParseInt(attrs["block_number"], 10, 64)
	if err != nil {
		return fmt.Errorf("bad block_number: %w", err)
	}
	value, readErr := n.readCounterAt(attrs["counter_addr"], blockNumber)
	if readErr != nil {
		core.L.Error(fmt.Sprintf("Counter read failed for request {%s}, due to {%s}", requestId, readErr))
		_, err := n.counterApi.AnswerVerification(ctx, requestId, 0, readErr.Error())
		return err
	}
	_, err = n.counterApi.AnswerVerification(ctx, requestId, value, "")
	return err
}

// readCounterAt reads the counter value at a specific block from the
// configured RPC endpoint. The counter lives in storage slot 0, so a plain
// eth_getStorageAt is enough.
//
// counterAddr is the counter contract address.
// blockNumber is the height the value must be read at.
// Returns the counter value as an int64.
func (n *Node) readCounterAt(counterAddr string, blockNumber int64) (int64, error) {
	payload := map[string]interface{}{
		"jsonrpc": "2.0",
		"method":  "eth_getStorageAt",
		"params":  []interface{}{counterAddr, "0x0", fmt.Sprintf("0x%x", blockNumber)},
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
		Error  *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return 0, fmt.Errorf("failed to parse JSON response: %v", err)
	}
	if result.Error != nil {
		return 0, fmt.Errorf("rpc error: %s", result.Error.Message)
	}

	var value int64
	if _, err := fmt.Sscanf(result.Result, "0x%x", &value); err != nil {
		return 0, fmt.Errorf("failed to parse counter value: %v", err)
	}
	return value, nil
}

// sendAggregator sends the signed claim to the aggregator.
//
// taskId is the unique identifier of the task.
// blockNumber is the height the counter was read at.
// value is the claimed counter value.
// Returns an error if there is an issue with the sending process.
func (n *Node) sendAggregator(taskId uint64, blockNumber int64, value int64) (err error) {
	nowTs := time.Now().Unix()
	msgPayload := fmt.Sprintf("%s-%d-%d-%d", core.C.Chain.BvsHash, nowTs, taskId, value)
	core.L.Info(fmt.Sprintf("msgPayload: %s", msgPayload))
	signature, err := n.chainIO.GetSigner().Sign([]byte(msgPayload))
	if err != nil {
		return
	}

	payload := Payload{
		TaskId:      taskId,
		BlockNumber: blockNumber,
		Value:       value,
		Timestamp:   nowTs,
		Signature:   signature,
		PubKey:      n.pubKeyStr,
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		fmt.Printf("Error marshaling JSON: %s", err)
		return
	}

	resp, err := http.Post(core.C.Aggregator.Url, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		fmt.Printf("Error sending aggregator : %s\n", err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		body, _ := rio.ReadAll(resp.Body)
		fmt.Printf("Error sending aggregator : %s\n", string(body))
		return
	}
	return
}
