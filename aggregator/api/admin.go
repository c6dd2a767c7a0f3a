package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/satlayer/counter-oracle-bvs/aggregator/core"
)

// GetParams returns the current reward/slash/reputation parameters.
func (s *Server) GetParams(c *gin.Context) {
	c.JSON(http.StatusOK, s.Params.Snapshot())
}

// UpdateParams replaces the mutable parameters. Changes take effect on the
// next verdict; in-flight tasks use whatever is current at resolve time.
func (s *Server) UpdateParams(c *gin.Context) {
	var params core.Params
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if params.MinReputation > params.MaxReputation {
		c.JSON(http.StatusBadRequest, gin.H{"error": "minReputation above maxReputation"})
		return
	}
	if params.ReputationIncreaseStep < 0 || params.ReputationDecreaseStep < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reputation steps must be non-negative"})
		return
	}
	if params.InitialReputation < params.MinReputation || params.InitialReputation > params.MaxReputation {
		c.JSON(http.StatusBadRequest, gin.H{"error": "initialReputation out of bounds"})
		return
	}
	s.Params.Update(params)
	c.JSON(http.StatusOK, s.Params.Snapshot())
}
