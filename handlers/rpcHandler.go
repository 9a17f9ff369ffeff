package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"MediLedger/contract"
	"MediLedger/ledger"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Executor is the ledger node as seen by its RPC endpoints.
type Executor interface {
	Call(ctx context.Context, op string, args []json.RawMessage) (interface{}, error)
	Submit(ctx context.Context, op string, args []json.RawMessage, fee ledger.FeeTier) (string, error)
	Receipt(ctx context.Context, hash string) (*ledger.Receipt, error)
}

// RPCHandler serves the node's JSON RPC endpoints. A revert answers 409
// with the reason, which the portal's transport turns back into a revert.
type RPCHandler struct {
	node   Executor
	logger *zap.Logger
}

func NewRPCHandler(node Executor, logger *zap.Logger) *RPCHandler {
	return &RPCHandler{node: node, logger: logger}
}

func (h *RPCHandler) Call(c *gin.Context) {
	var req ledger.CallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ledger.RPCResponse{Error: err.Error()})
		return
	}

	result, err := h.node.Call(c.Request.Context(), req.Op, req.Args)
	if err != nil {
		h.fail(c, req.Op, err)
		return
	}
	raw, err := json.Marshal(result)
	if err != nil {
		h.fail(c, req.Op, err)
		return
	}
	c.JSON(http.StatusOK, ledger.RPCResponse{Result: raw})
}

func (h *RPCHandler) Send(c *gin.Context) {
	var req ledger.SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ledger.RPCResponse{Error: err.Error()})
		return
	}

	hash, err := h.node.Submit(c.Request.Context(), req.Op, req.Args, req.Fee)
	if err != nil {
		h.fail(c, req.Op, err)
		return
	}
	c.JSON(http.StatusAccepted, ledger.RPCResponse{TxHash: hash})
}

func (h *RPCHandler) Receipt(c *gin.Context) {
	receipt, err := h.node.Receipt(c.Request.Context(), c.Param("hash"))
	if errors.Is(err, contract.ErrUnknownTransaction) {
		c.JSON(http.StatusNotFound, ledger.RPCResponse{Error: err.Error()})
		return
	}
	if err != nil {
		h.fail(c, "receipt", err)
		return
	}
	raw, err := json.Marshal(receipt)
	if err != nil {
		h.fail(c, "receipt", err)
		return
	}
	c.JSON(http.StatusOK, ledger.RPCResponse{Result: raw})
}

func (h *RPCHandler) fail(c *gin.Context, op string, err error) {
	var reverted *ledger.RevertError
	if errors.As(err, &reverted) {
		c.JSON(http.StatusConflict, ledger.RPCResponse{Error: reverted.Reason})
		return
	}
	h.logger.Error("rpc failed", zap.String("op", op), zap.Error(err))
	c.JSON(http.StatusInternalServerError, ledger.RPCResponse{Error: "internal error"})
}
