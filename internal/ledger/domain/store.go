package domain

// Tx is one atomic unit of work against the ledger store. The SQL
// repositories hand out *sql.Tx; the in-memory mocks hand out their own.
// Every write that belongs to the same unit must be passed the same Tx.
type Tx interface {
	Commit() error
	Rollback() error
}
