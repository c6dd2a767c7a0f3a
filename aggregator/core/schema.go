package core

import (
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// TaskStatus tracks a task through the validation state machine.
// Transitions only move forward: Created -> Submitted -> Validating -> {Validated | Failed}.
type TaskStatus uint8

const (
	TaskCreated TaskStatus = iota
	TaskSubmitted
	TaskValidating
	TaskValidated
	TaskFailed
)

func (s TaskStatus) String() string {
	switch s {
	case TaskCreated:
		return "created"
	case TaskSubmitted:
		return "submitted"
	case TaskValidating:
		return "validating"
	case TaskValidated:
		return "validated"
	case TaskFailed:
		return "failed"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

// Terminal reports whether the status can no longer advance.
func (s TaskStatus) Terminal() bool {
	return s == TaskValidated || s == TaskFailed
}

func (s TaskStatus) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// Task is one unit of claim-and-verify work.
type Task struct {
	TaskId          uint64     `json:"taskID"`
	TargetVersion   int64      `json:"targetVersion"`
	ClaimedValue    int64      `json:"claimedValue"`
	Submitter       string     `json:"submitter"`
	Status          TaskStatus `json:"status"`
	OracleRequestId string     `json:"oracleRequestID,omitempty"`
	ResolvedValue   *int64     `json:"resolvedValue,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	ResolvedAt      time.Time  `json:"resolvedAt,omitempty"`
}

// Operator is the ledger entry for one claim submitter.
type Operator struct {
	Address          string    `json:"address"`
	Reputation       int64     `json:"reputation"`
	TaskCount        uint64    `json:"taskCount"`
	SuccessCount     uint64    `json:"successCount"`
	TotalRewards     uint64    `json:"totalRewards"`
	TotalSlashed     uint64    `json:"totalSlashed"`
	LastActivityTime time.Time `json:"lastActivityTime"`
	Active           bool      `json:"active"`
}

// OracleResult is one oracle response, correlated by request id.
// Exactly one of Value and Err is set.
type OracleResult struct {
	RequestId string `json:"requestID"`
	Value     *int64 `json:"value,omitempty"`
	Err       string `json:"error,omitempty"`
}

type Config struct {
	App      App
	Database Database
	Chain    Chain
	Owner    Owner
	Params   Params
}

type App struct {
	Env  string `json:"env"`
	Host string `json:"host"`
}

type Database struct {
	RedisHost     string `json:"redisHost"`
	RedisPassword string `json:"redisPassword"`
	RedisDb       int    `json:"redisDb"`
}

type Chain struct {
	Id             string `json:"id"`
	Rpc            string `json:"rpc"`
	BvsHash        string `json:"bvsHash"`
	BvsDirectory   string `json:"bvsDirectory"`
	OracleContract string `json:"oracleContract"`
	CounterAddr    string `json:"counterAddr"`
}

type Owner struct {
	KeyDir         string `json:"keyDir"`
	KeyName        string `json:"keyName"`
	KeyringBackend string `json:"keyringBackend"`
	Bech32Prefix   string `json:"bech32Prefix"`
}

type Store struct {
	RedisConn *redis.Client
}
