// Package contract is the ledger node: it holds the authoritative portal
// state in Postgres and executes contract operations submitted over RPC.
// Reads answer immediately. Writes are priced, recorded as pending
// transactions and executed one at a time; their outcome is published as a
// receipt.
package contract

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"sync"

	"MediLedger/ledger"
	"MediLedger/utils"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrUnknownTransaction is returned for a receipt of a hash the node never
// accepted.
var ErrUnknownTransaction = errors.New("unknown transaction")

type Node struct {
	db     *gorm.DB
	fees   FeeSchedule
	clock  utils.Clock
	logger *zap.Logger

	execMu sync.Mutex
	wg     sync.WaitGroup
}

func NewNode(db *gorm.DB, fees FeeSchedule, clock utils.Clock, logger *zap.Logger) *Node {
	return &Node{db: db, fees: fees, clock: clock, logger: logger}
}

// Call runs a read-only operation.
func (n *Node) Call(ctx context.Context, op string, args []json.RawMessage) (interface{}, error) {
	if IsWrite(op) {
		return nil, revert(op + " must be submitted as a transaction")
	}
	return query(n.db.WithContext(ctx), op, args)
}

// Submit prices a write and queues it for execution. It returns the
// transaction hash to poll for the receipt.
func (n *Node) Submit(ctx context.Context, op string, args []json.RawMessage, fee ledger.FeeTier) (string, error) {
	if !IsWrite(op) {
		return "", revert("unknown operation " + op)
	}
	accepted, err := n.fees.Accept(op, args, fee)
	if err != nil {
		n.logger.Info("submission refused",
			zap.String("op", op), zap.Stringer("fee", fee), zap.Error(err))
		return "", err
	}

	encoded, err := json.Marshal(args)
	if err != nil {
		return "", errors.Wrap(err, "failed to encode arguments")
	}
	id := uuid.New()
	tx := TxRow{
		Hash:         "0x" + hex.EncodeToString(id[:]),
		Op:           op,
		Args:         string(encoded),
		Status:       string(ledger.ReceiptPending),
		GasLimit:     accepted.GasLimit,
		GasPriceGwei: accepted.GasPriceGwei,
		SubmittedAt:  n.clock.Now(),
	}
	if err := n.db.WithContext(ctx).Create(&tx).Error; err != nil {
		return "", errors.Wrap(err, "failed to record transaction")
	}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		n.execute(tx.Hash, op, args)
	}()
	return tx.Hash, nil
}

// execute applies a pending transaction and records its receipt. A revert
// rolls back every change the operation made.
func (n *Node) execute(hash, op string, args []json.RawMessage) {
	n.execMu.Lock()
	defer n.execMu.Unlock()

	now := n.clock.Now()
	var entityID string
	err := n.db.Transaction(func(tx *gorm.DB) error {
		var err error
		entityID, err = apply(tx, op, args, now)
		return err
	})

	updates := map[string]interface{}{"confirmed_at": now}
	var reverted *ledger.RevertError
	switch {
	case err == nil:
		updates["status"] = string(ledger.ReceiptSuccess)
		updates["entity_id"] = entityID
	case errors.As(err, &reverted):
		updates["status"] = string(ledger.ReceiptReverted)
		updates["reason"] = reverted.Reason
	default:
		n.logger.Error("transaction execution failed", zap.String("tx_hash", hash), zap.String("op", op), zap.Error(err))
		updates["status"] = string(ledger.ReceiptReverted)
		updates["reason"] = "execution failed"
	}
	if err := n.db.Model(&TxRow{}).Where("hash = ?", hash).Updates(updates).Error; err != nil {
		n.logger.Error("failed to record receipt", zap.String("tx_hash", hash), zap.Error(err))
		return
	}
	n.logger.Info("transaction executed",
		zap.String("tx_hash", hash),
		zap.String("op", op),
		zap.Any("status", updates["status"]),
		zap.String("entity_id", entityID))
}

// Receipt returns the current state of a submitted transaction.
func (n *Node) Receipt(ctx context.Context, hash string) (*ledger.Receipt, error) {
	var tx TxRow
	err := n.db.WithContext(ctx).Where("hash = ?", hash).First(&tx).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUnknownTransaction
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load transaction")
	}
	return tx.receipt(), nil
}

// Close waits for queued transactions to finish executing.
func (n *Node) Close() {
	n.wg.Wait()
}
