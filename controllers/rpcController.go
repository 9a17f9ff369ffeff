package controllers

import (
	"MediLedger/handlers"

	"github.com/gin-gonic/gin"
)

// SetupRPCRoutes registers the ledger node's RPC endpoints behind the bearer
// token check.
func SetupRPCRoutes(router *gin.Engine, bearerAuth gin.HandlerFunc, rpcHandler *handlers.RPCHandler) {
	rpc := router.Group("/rpc", bearerAuth)
	{
		rpc.POST("/call", rpcHandler.Call)
		rpc.POST("/send", rpcHandler.Send)
		rpc.GET("/receipts/:hash", rpcHandler.Receipt)
	}
}
