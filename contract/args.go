package contract

import (
	"encoding/json"
	"fmt"

	"MediLedger/ledger"
)

// decodeArgs unpacks positional arguments into dst. A count or type mismatch
// reverts the call, as an ABI mismatch would.
func decodeArgs(args []json.RawMessage, dst ...interface{}) error {
	if len(args) != len(dst) {
		return &ledger.RevertError{Reason: fmt.Sprintf("expected %d arguments, got %d", len(dst), len(args))}
	}
	for i, raw := range args {
		if err := json.Unmarshal(raw, dst[i]); err != nil {
			return &ledger.RevertError{Reason: fmt.Sprintf("invalid argument %d: %v", i, err)}
		}
	}
	return nil
}

func revert(reason string) error {
	return &ledger.RevertError{Reason: reason}
}
