package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/satlayer/satlayer-api/signer"

	"github.com/satlayer/counter-oracle-bvs/aggregator/core"
	"github.com/satlayer/counter-oracle-bvs/aggregator/ledger"
	"github.com/satlayer/counter-oracle-bvs/aggregator/registry"
	"github.com/satlayer/counter-oracle-bvs/aggregator/svc"
	"github.com/satlayer/counter-oracle-bvs/aggregator/util"
)

// Server holds the components behind the HTTP surface.
type Server struct {
	Coordinator *svc.Coordinator
	Registry    *registry.Registry
	Ledger      *ledger.Ledger
	Params      *core.ParamStore
}

func NewServer(coordinator *svc.Coordinator, reg *registry.Registry, led *ledger.Ledger, params *core.ParamStore) *Server {
	return &Server{
		Coordinator: coordinator,
		Registry:    reg,
		Ledger:      led,
		Params:      params,
	}
}

type SubmissionPayload struct {
	TaskId      uint64 `json:"taskID" binding:"required"`
	BlockNumber int64  `json:"blockNumber" binding:"required"`
	Value       int64  `json:"value"`
	Timestamp   int64  `json:"timestamp" binding:"required"`
	Signature   string `json:"signature" binding:"required"`
	PubKey      string `json:"pubKey" binding:"required"`
}

// Submission handles one signed operator claim.
//
// It parses the payload from the request body and verifies the signature.
// It checks if the timestamp is within the allowed range and rejects claims
// for finished tasks and duplicate claims from the same operator.
// If all checks pass, it records the claim and dispatches oracle validation.
// It returns an HTTP response with the status of the operation.
//
// Parameters:
// - c: The gin.Context object representing the HTTP request and response.
//
// Returns:
// - None.
func (s *Server) Submission(c *gin.Context) {
	var payload SubmissionPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	nowTs := time.Now().Unix()
	if payload.Timestamp > nowTs || payload.Timestamp < nowTs-60*2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "timestamp out of range"})
		return
	}

	pubKey, address, err := util.PubKeyToAddress(payload.PubKey)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msgPayload := fmt.Sprintf("%s-%d-%d-%d", core.C.Chain.BvsHash, payload.Timestamp, payload.TaskId, payload.Value)
	msgBytes := []byte(msgPayload)
	if isValid, err := signer.VerifySignature(pubKey, msgBytes, payload.Signature); err != nil || !isValid {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
		return
	}

	pkTaskFinished := fmt.Sprintf("%s%d", core.PkTaskFinished, payload.TaskId)
	if isExist, err := core.S.RedisConn.Exists(c, pkTaskFinished).Result(); err != nil || isExist == 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "task already finished"})
		return
	}

	pkTaskSubmission := fmt.Sprintf("%s%d", core.PkTaskSubmission, payload.TaskId)
	isDuplicate, err := core.S.RedisConn.Eval(c, core.LuaScript, []string{pkTaskSubmission}, address).Int()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check submission"})
		return
	}
	if isDuplicate == 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "operator already submitted"})
		return
	}

	if _, err := s.Coordinator.SubmitTask(c, payload.TaskId, payload.BlockNumber, payload.Value, address); err != nil {
		if errors.Is(err, core.ErrInvalidTransition) {
			c.JSON(http.StatusConflict, gin.H{"error": "task already submitted"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if _, err := s.Coordinator.DispatchValidation(c, payload.TaskId); err != nil {
		// task stays submitted; dispatch can be retried
		core.L.Error(fmt.Sprintf("Failed to dispatch validation for task {%d}, due to {%s}", payload.TaskId, err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "oracle dispatch failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}
