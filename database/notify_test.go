package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotifyStatementQuotes(t *testing.T) {
	stmt := NotifyStatement("portal events", `{"summary":"it's booked"}`)
	assert.Equal(t, `NOTIFY "portal events", '{"summary":"it''s booked"}'`, stmt)
}
