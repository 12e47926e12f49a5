package domain

import "context"

// TableStatus is one table's health as seen by the validator and the read API.
type TableStatus struct {
	Name    string `json:"name"`
	Present bool   `json:"present"`
	Rows    int64  `json:"rows"`
}

// Store persists the clean and fact layers. Writes are whole-table
// replacements, atomic per table; there is no row-level mutation API.
type Store interface {
	ReplaceClean(ctx context.Context, snapshot CleanSnapshot) error
	ReplaceFacts(ctx context.Context, snapshot FactSnapshot) error

	Accounts(ctx context.Context) ([]Account, error)
	AccountFacts(ctx context.Context) ([]AccountFact, error)

	RowCount(ctx context.Context, table string) (int64, error)
	ListTables(ctx context.Context, tables []string) ([]TableStatus, error)
}
