package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// CallRequest is the body of a read call on the node's RPC endpoint.
type CallRequest struct {
	Op   string            `json:"op"`
	Args []json.RawMessage `json:"args"`
}

// SendRequest is the body of a write submission.
type SendRequest struct {
	Op   string            `json:"op"`
	Args []json.RawMessage `json:"args"`
	Fee  FeeTier           `json:"fee"`
}

// RPCResponse is the envelope every RPC endpoint answers with.
type RPCResponse struct {
	Result json.RawMessage `json:"result,omitempty"`
	TxHash string          `json:"tx_hash,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// HTTPTransport talks to a ledger node over its JSON RPC endpoints.
type HTTPTransport struct {
	baseURL      string
	token        string
	client       *http.Client
	pollInterval time.Duration
}

// NewHTTPTransport creates a transport for the node at baseURL. The token is
// sent as a bearer token on every request.
func NewHTTPTransport(baseURL, token string, pollInterval time.Duration) *HTTPTransport {
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	return &HTTPTransport{
		baseURL:      strings.TrimRight(baseURL, "/"),
		token:        token,
		client:       &http.Client{},
		pollInterval: pollInterval,
	}
}

func (t *HTTPTransport) Call(ctx context.Context, op string, args []interface{}) (json.RawMessage, error) {
	encoded, err := encodeArgs(args)
	if err != nil {
		return nil, err
	}
	resp, err := t.do(ctx, http.MethodPost, "/rpc/call", CallRequest{Op: op, Args: encoded})
	if err != nil {
		return nil, err
	}
	return resp.Result, nil
}

func (t *HTTPTransport) Send(ctx context.Context, op string, args []interface{}, fee FeeTier) (string, error) {
	encoded, err := encodeArgs(args)
	if err != nil {
		return "", err
	}
	resp, err := t.do(ctx, http.MethodPost, "/rpc/send", SendRequest{Op: op, Args: encoded, Fee: fee})
	if err != nil {
		return "", err
	}
	if resp.TxHash == "" {
		return "", errors.New("node accepted the submission without a transaction hash")
	}
	return resp.TxHash, nil
}

// Receipt polls the node until the transaction leaves the pending state or
// ctx is done.
func (t *HTTPTransport) Receipt(ctx context.Context, txHash string) (*Receipt, error) {
	ticker := time.NewTicker(t.pollInterval)
	defer ticker.Stop()
	for {
		resp, err := t.do(ctx, http.MethodGet, "/rpc/receipts/"+txHash, nil)
		if err != nil {
			return nil, err
		}
		var receipt Receipt
		if err := json.Unmarshal(resp.Result, &receipt); err != nil {
			return nil, errors.Wrap(err, "failed to decode receipt")
		}
		if receipt.Status != ReceiptPending {
			return &receipt, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (t *HTTPTransport) do(ctx context.Context, method, path string, body interface{}) (*RPCResponse, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "failed to encode request")
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")
	if t.token != "" {
		req.Header.Set("Authorization", "Bearer "+t.token)
	}

	res, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	var out RPCResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil && err != io.EOF {
		return nil, fmt.Errorf("node answered %d with an unreadable body: %w", res.StatusCode, err)
	}
	switch {
	case res.StatusCode == http.StatusConflict:
		return nil, &RevertError{Reason: out.Error}
	case res.StatusCode >= 300:
		return nil, fmt.Errorf("node answered %d: %s", res.StatusCode, out.Error)
	}
	return &out, nil
}

func encodeArgs(args []interface{}) ([]json.RawMessage, error) {
	encoded := make([]json.RawMessage, len(args))
	for i, a := range args {
		raw, err := json.Marshal(a)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to encode argument %d", i)
		}
		encoded[i] = raw
	}
	return encoded, nil
}
