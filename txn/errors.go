package txn

import "errors"

var (
	// ErrEmptyData indicates NewFromBytes was given no bytes.
	ErrEmptyData = errors.New("txn: empty transaction data")

	// ErrTruncated indicates a field read ran past the end of the buffer.
	ErrTruncated = errors.New("txn: truncated transaction data")

	// ErrTrailingData indicates bytes remained after the locktime field
	// when an exact-length decode was required.
	ErrTrailingData = errors.New("txn: trailing data after transaction")

	// ErrConsistency indicates the decoder's tracked byte count disagrees
	// with the buffer actually consumed. This is a bookkeeping bug in the
	// decoder, not malformed input.
	ErrConsistency = errors.New("txn: decoder position out of sync")
)
