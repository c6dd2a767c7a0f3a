package api

import "github.com/gin-gonic/gin"

// SetupRoutes sets up routes for the aggregator API.
//
// router is the Gin Engine instance used to set up the routes.
// s holds the coordinator, registry, ledger and param store handles.
// No return values.
func SetupRoutes(router *gin.Engine, s *Server) {
	router.POST("api/submission", s.Submission)
	router.GET("api/task/:id", s.GetTask)
	router.GET("api/operator/:address", s.GetOperator)
	router.GET("api/operator/:address/success-rate", s.GetSuccessRate)
	router.GET("api/operators", s.ListOperators)
	router.GET("api/admin/params", s.GetParams)
	router.PUT("api/admin/params", s.UpdateParams)
}
