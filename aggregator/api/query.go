package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/satlayer/counter-oracle-bvs/aggregator/core"
)

// GetTask returns the task record for the given id, 404 if it was never
// created. Missing entities are reported as errors, never as zero values.
func (s *Server) GetTask(c *gin.Context) {
	taskId, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}
	task, err := s.Registry.Get(taskId)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, task)
}

// GetOperator returns the ledger record for the given operator address.
func (s *Server) GetOperator(c *gin.Context) {
	operator, err := s.Ledger.Get(c.Param("address"))
	if err != nil {
		if errors.Is(err, core.ErrNotRegistered) {
			c.JSON(http.StatusNotFound, gin.H{"error": "operator not registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, operator)
}

// GetSuccessRate returns floor(successCount * 100 / taskCount) for the operator.
func (s *Server) GetSuccessRate(c *gin.Context) {
	address := c.Param("address")
	rate, err := s.Ledger.SuccessRate(address)
	if err != nil {
		if errors.Is(err, core.ErrNotRegistered) {
			c.JSON(http.StatusNotFound, gin.H{"error": "operator not registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"address": address, "successRate": rate})
}

// ListOperators returns all registered operator addresses in insertion order.
func (s *Server) ListOperators(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"operators": s.Ledger.ListOperators()})
}
