package amqp

import (
	"encoding/json"
	"time"

	"ledger/internal/core"
)

// Message types carried in the AMQP "type" property
const (
	TypeTransactionCreated   = "transaction.created"
	TypeTransactionsImported = "transactions.imported"
)

// TransactionCreatedMessage announces a single committed transaction
type TransactionCreatedMessage struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Type       string    `json:"type"`
	ValueCents int64     `json:"value_cents"`
	CategoryID string    `json:"category_id"`
	Timestamp  time.Time `json:"timestamp"`
}

// TransactionsImportedMessage summarizes a committed CSV import. Consumers
// fetch the transactions themselves by ID.
type TransactionsImportedMessage struct {
	Source       string    `json:"source"`
	Count        int       `json:"count"`
	IDs          []string  `json:"ids"`
	IncomeCents  int64     `json:"income_cents"`
	OutcomeCents int64     `json:"outcome_cents"`
	Timestamp    time.Time `json:"timestamp"`
}

func NewTransactionCreatedMessage(tx core.Transaction) *TransactionCreatedMessage {
	return &TransactionCreatedMessage{
		ID:         tx.ID,
		Title:      tx.Title,
		Type:       tx.Type.String(),
		ValueCents: tx.Value.Cents,
		CategoryID: tx.CategoryID,
		Timestamp:  time.Now(),
	}
}

func NewTransactionsImportedMessage(source string, txs []core.Transaction) *TransactionsImportedMessage {
	b := core.CalculateBalance(txs)
	ids := make([]string, len(txs))
	for i, tx := range txs {
		ids[i] = tx.ID
	}
	return &TransactionsImportedMessage{
		Source:       source,
		Count:        len(txs),
		IDs:          ids,
		IncomeCents:  b.Income.Cents,
		OutcomeCents: b.Outcome.Cents,
		Timestamp:    time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionCreatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ToJSON converts the message to JSON bytes
func (m *TransactionsImportedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}
