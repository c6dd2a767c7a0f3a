package BvsCounterApi

import (
	"context"
	"encoding/json"

	wasmtypes "github.com/CosmWasm/wasmd/x/wasm/types"
	coretypes "github.com/cometbft/cometbft/rpc/core/types"
	sdktypes "github.com/cosmos/cosmos-sdk/types"
	"github.com/satlayer/satlayer-api/chainio/io"
	"github.com/satlayer/satlayer-api/chainio/types"
)

// BVSCounter wraps the counter oracle BVS contract: task creation,
// verification request dispatch, and the performer's on-chain answer.
type BVSCounter interface {
	BindClient(string)
	CreateNewTask(ctx context.Context, counterAddr string, blockNumber int64) (*coretypes.ResultTx, error)
	RequestVerification(ctx context.Context, requestId string, counterAddr string, blockNumber int64) (*coretypes.ResultTx, error)
	AnswerVerification(ctx context.Context, requestId string, value int64, execError string) (*coretypes.ResultTx, error)
	GetTask(taskId int64) (*wasmtypes.QuerySmartContractStateResponse, error)
	GetVerificationResult(requestId string) (*wasmtypes.QuerySmartContractStateResponse, error)
}

type createNewTaskReq struct {
	CreateNewTask createNewTask `json:"create_new_task"`
}

type createNewTask struct {
	CounterAddr string `json:"counter_addr"`
	BlockNumber int64  `json:"block_number"`
}

type requestVerificationReq struct {
	RequestVerification requestVerification `json:"request_verification"`
}

type requestVerification struct {
	RequestId   string `json:"request_id"`
	CounterAddr string `json:"counter_addr"`
	BlockNumber int64  `json:"block_number"`
}

type answerVerificationReq struct {
	AnswerVerification answerVerification `json:"answer_verification"`
}

type answerVerification struct {
	RequestId string `json:"request_id"`
	Value     int64  `json:"value"`
	Error     string `json:"error"`
}

type getTaskReq struct {
	GetTask getTask `json:"get_task"`
}

type getTask struct {
	TaskId int64 `json:"task_id"`
}

type getVerificationResultReq struct {
	GetVerificationResult getVerificationResult `json:"get_verification_result"`
}

type getVerificationResult struct {
	RequestId string `json:"request_id"`
}

type bvsCounterImpl struct {
	io             io.ChainIO
	executeOptions *types.ExecuteOptions
	queryOptions   *types.QueryOptions
}

func (a *bvsCounterImpl) BindClient(contractAddress string) {
	a.executeOptions = &types.ExecuteOptions{
		ContractAddr:  contractAddress,
		ExecuteMsg:    []byte{},
		Funds:         "",
		GasAdjustment: 1.2,
		GasPrice:      sdktypes.NewInt64DecCoin("ubbn", 1),
		Gas:           300000,
		Memo:          "counter oracle bvs",
		Simulate:      true,
	}

	a.queryOptions = &types.QueryOptions{
		ContractAddr: contractAddress,
		QueryMsg:     []byte{},
	}
}

func (a *bvsCounterImpl) CreateNewTask(ctx context.Context, counterAddr string, blockNumber int64) (*coretypes.ResultTx, error) {
	msg := createNewTaskReq{
		CreateNewTask: createNewTask{
			CounterAddr: counterAddr,
			BlockNumber: blockNumber,
		},
	}

	msgBytes, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	(*a.executeOptions).ExecuteMsg = msgBytes

	return a.io.SendTransaction(ctx, *a.executeOptions)
}

func (a *bvsCounterImpl) RequestVerification(ctx context.Context, requestId string, counterAddr string, blockNumber int64) (*coretypes.ResultTx, error) {
	msg := requestVerificationReq{
		RequestVerification: requestVerification{
			RequestId:   requestId,
			CounterAddr: counterAddr,
			BlockNumber: blockNumber,
		},
	}

	msgBytes, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	(*a.executeOptions).ExecuteMsg = msgBytes

	return a.io.SendTransaction(ctx, *a.executeOptions)
}

func (a *bvsCounterImpl) AnswerVerification(ctx context.Context, requestId string, value int64, execError string) (*coretypes.ResultTx, error) {
	msg := answerVerificationReq{
		AnswerVerification: answerVerification{
			RequestId: requestId,
			Value:     value,
			Error:     execError,
		},
	}

	msgBytes, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	(*a.executeOptions).ExecuteMsg = msgBytes

	return a.io.SendTransaction(ctx, *a.executeOptions)
}

func (a *bvsCounterImpl) GetTask(taskId int64) (*wasmtypes.QuerySmartContractStateResponse, error) {
	msg := getTaskReq{
		GetTask: getTask{
			TaskId: taskId,
		},
	}

	msgBytes, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	(*a.queryOptions).QueryMsg = msgBytes

	return a.io.QueryContract(*a.queryOptions)
}

func (a *bvsCounterImpl) GetVerificationResult(requestId string) (*wasmtypes.QuerySmartContractStateResponse, error) {
	msg := getVerificationResultReq{
		GetVerificationResult: getVerificationResult{
			RequestId: requestId,
		},
	}

	msgBytes, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	(*a.queryOptions).QueryMsg = msgBytes

	return a.io.QueryContract(*a.queryOptions)
}

func NewBVSCounter(chainIO io.ChainIO) BVSCounter {
	return &bvsCounterImpl{
		io: chainIO,
	}
}
