package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"MediLedger/models"

	"github.com/lib/pq"
)

// PGNotifier publishes notifications on a Postgres NOTIFY channel so other
// services can LISTEN for portal events.
type PGNotifier struct {
	DB      *sql.DB
	Channel string
}

// OpenNotifier opens a lib/pq connection for the notifier.
func OpenNotifier(dsn, channel string) (*PGNotifier, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open notify connection: %w", err)
	}
	db.SetMaxOpenConns(2)
	return &PGNotifier{DB: db, Channel: channel}, nil
}

// Send publishes the notification as a JSON payload.
func (n *PGNotifier) Send(ctx context.Context, note models.Notification) error {
	payload, err := json.Marshal(note)
	if err != nil {
		return err
	}
	_, err = n.DB.ExecContext(ctx, NotifyStatement(n.Channel, string(payload)))
	return err
}

// NotifyStatement builds the NOTIFY statement. NOTIFY takes no bind
// parameters, so the channel and payload are quoted.
func NotifyStatement(channel, payload string) string {
	return fmt.Sprintf("NOTIFY %s, %s", pq.QuoteIdentifier(channel), pq.QuoteLiteral(payload))
}

func (n *PGNotifier) Close() error {
	return n.DB.Close()
}
