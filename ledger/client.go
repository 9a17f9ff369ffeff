package ledger

import (
	"context"
	"encoding/json"
	"time"

	"MediLedger/apperrors"
	"MediLedger/utils"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Options bounds the client's calls and configures write retries.
type Options struct {
	ReadTimeout    time.Duration
	LoginTimeout   time.Duration
	SubmitTimeout  time.Duration
	ConfirmTimeout time.Duration
	FeePolicy      []FeeTier
	Clock          utils.Clock
}

// DefaultOptions returns the production timeouts.
func DefaultOptions() Options {
	return Options{
		ReadTimeout:    30 * time.Second,
		LoginTimeout:   60 * time.Second,
		SubmitTimeout:  30 * time.Second,
		ConfirmTimeout: 5 * time.Minute,
		FeePolicy:      DefaultFeePolicy(),
		Clock:          utils.SystemClock{},
	}
}

// Client implements Ledger over a Transport.
type Client struct {
	transport Transport
	opts      Options
	logger    *zap.Logger
}

var _ Ledger = (*Client)(nil)

// NewClient creates a ledger client. Zero options fall back to the defaults.
func NewClient(transport Transport, opts Options, logger *zap.Logger) *Client {
	def := DefaultOptions()
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = def.ReadTimeout
	}
	if opts.LoginTimeout <= 0 {
		opts.LoginTimeout = def.LoginTimeout
	}
	if opts.SubmitTimeout <= 0 {
		opts.SubmitTimeout = def.SubmitTimeout
	}
	if opts.ConfirmTimeout <= 0 {
		opts.ConfirmTimeout = def.ConfirmTimeout
	}
	if len(opts.FeePolicy) == 0 {
		opts.FeePolicy = def.FeePolicy
	}
	if opts.Clock == nil {
		opts.Clock = def.Clock
	}
	return &Client{transport: transport, opts: opts, logger: logger}
}

// race runs fn and returns its result, or ErrTimeout if the timer fires
// first. The abandoned call is cancelled locally only; the remote may still
// complete it.
func race[T any](ctx context.Context, clock utils.Clock, op string, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	type outcome struct {
		val T
		err error
	}
	callCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan outcome, 1)
	go func() {
		v, err := fn(callCtx)
		done <- outcome{val: v, err: err}
	}()

	var zero T
	select {
	case o := <-done:
		return o.val, o.err
	case <-clock.After(timeout):
		return zero, errors.Wrapf(apperrors.ErrTimeout, "%s exceeded %s", op, timeout)
	case <-ctx.Done():
		return zero, errors.Wrapf(apperrors.ErrTimeout, "%s: %v", op, ctx.Err())
	}
}

// classify maps a transport error to the error taxonomy.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var revert *RevertError
	switch {
	case errors.As(err, &revert):
		return errors.Wrap(apperrors.Rejected(revert.Reason), op)
	case errors.Is(err, apperrors.ErrTimeout),
		errors.Is(err, apperrors.ErrRemoteRejected),
		errors.Is(err, apperrors.ErrRemoteUnavailable):
		return err
	default:
		return errors.Wrapf(apperrors.ErrRemoteUnavailable, "%s: %v", op, err)
	}
}

func (c *Client) read(ctx context.Context, op string, timeout time.Duration, out interface{}, args ...interface{}) error {
	raw, err := race(ctx, c.opts.Clock, op, timeout, func(ctx context.Context) (json.RawMessage, error) {
		return c.transport.Call(ctx, op, args)
	})
	if err != nil {
		err = classify(op, err)
		c.logger.Warn("ledger read failed", zap.String("op", op), zap.Error(err))
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Wrapf(apperrors.ErrRemoteUnavailable, "%s: malformed result: %v", op, err)
	}
	return nil
}

// write submits op under the fee policy and waits for its receipt. Each
// tier is tried in order while the submission is rejected; a timeout or an
// unreachable node stops the escalation at once.
func (c *Client) write(ctx context.Context, op string, args ...interface{}) (*Receipt, error) {
	var (
		hash    string
		lastErr error
	)
	for i, fee := range c.opts.FeePolicy {
		fee := fee
		h, err := race(ctx, c.opts.Clock, op, c.opts.SubmitTimeout, func(ctx context.Context) (string, error) {
			return c.transport.Send(ctx, op, args, fee)
		})
		if err == nil {
			hash = h
			break
		}
		err = classify(op, err)
		if !errors.Is(err, apperrors.ErrRemoteRejected) {
			c.logger.Error("ledger submission failed", zap.String("op", op), zap.Stringer("fee", fee), zap.Error(err))
			return nil, err
		}
		c.logger.Warn("ledger submission rejected, escalating fee",
			zap.String("op", op), zap.Int("tier", i), zap.Stringer("fee", fee), zap.Error(err))
		lastErr = err
	}
	if hash == "" {
		return nil, errors.Wrapf(lastErr, "%s rejected at all %d fee tiers", op, len(c.opts.FeePolicy))
	}

	receipt, err := race(ctx, c.opts.Clock, op, c.opts.ConfirmTimeout, func(ctx context.Context) (*Receipt, error) {
		return c.transport.Receipt(ctx, hash)
	})
	if err != nil {
		err = classify(op, err)
		c.logger.Error("ledger confirmation failed", zap.String("op", op), zap.String("tx", hash), zap.Error(err))
		return nil, err
	}
	if receipt.Status == ReceiptReverted {
		c.logger.Warn("ledger transaction reverted", zap.String("op", op), zap.String("tx", hash), zap.String("reason", receipt.Reason))
		return receipt, errors.Wrap(apperrors.Rejected(receipt.Reason), op)
	}
	c.logger.Debug("ledger transaction confirmed", zap.String("op", op), zap.String("tx", hash), zap.String("entity", receipt.EntityID))
	return receipt, nil
}
