package txstore

import "errors"

var (
	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("txstore: required parameter is nil")

	// ErrNotFound indicates no transaction with the given txid is stored.
	ErrNotFound = errors.New("txstore: transaction not found")

	// ErrNoSerialization indicates the transaction has no raw-bytes cache;
	// call Serialize before storing a field-built transaction.
	ErrNoSerialization = errors.New("txstore: transaction has no serialization")
)
