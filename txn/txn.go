// Package txn implements the canonical binary encoding, decoding, and
// identity-hash computation for a single Bitcoin-style transaction.
//
// A Transaction carries the structured fields (version, inputs, outputs,
// locktime) together with two derived caches: the last-known canonical
// serialization and its double-SHA256 identity hash (txid). The txid is
// always computed over serialized bytes, never from field values directly.
// Serialize is the only operation that refreshes the txid from field state,
// so it must be called after mutating fields before the txid is read.
//
// The codec performs no validation beyond structural decoding: signature
// checking, script execution, and value conservation are the caller's
// concern.
package txn

import (
	"github.com/bsv-blockchain/go-sdk/chainhash"

	"github.com/poolcore/libtxn-go/script"
)

const (
	// HashSize is the byte length of a transaction identity hash.
	HashSize = 32

	// DefaultSequence is the conventional final sequence number for inputs.
	DefaultSequence = 0xffffffff

	// NullIndex is the previous-output index of a coinbase input.
	NullIndex = 0xffffffff
)

// OutPoint identifies the transaction output an input spends, by the txid
// of the funding transaction and the output's position within it.
type OutPoint struct {
	Hash  [HashSize]byte
	Index uint32
}

// nullOutPoint is the sentinel previous-output reference of a coinbase
// input: an all-zero hash with index 0xffffffff.
var nullOutPoint = OutPoint{Index: NullIndex}

// IsNull reports whether o is the coinbase sentinel.
func (o OutPoint) IsNull() bool {
	return o == nullOutPoint
}

// Input is one transaction input.
type Input struct {
	PreviousOutPoint OutPoint
	UnlockingScript  []byte
	Sequence         uint32
}

// Output is one transaction output.
type Output struct {
	Amount        uint64
	LockingScript []byte
}

// Transaction is an in-memory Bitcoin-style transaction. Input and output
// order is semantically significant and preserved exactly through
// decode/encode. A Transaction is not safe for concurrent mutation.
type Transaction struct {
	Version  int32
	Inputs   []*Input
	Outputs  []*Output
	LockTime uint32

	// raw is the last-known canonical serialization; txid is its
	// double-SHA256. Both are valid only for the bytes of the last
	// NewFromBytes or Serialize call.
	raw  []byte
	txid chainhash.Hash
}

// New returns an empty transaction with version 1, no inputs or outputs,
// and locktime 0, ready to be populated and serialized.
func New() *Transaction {
	return &Transaction{Version: 1}
}

// NewFromBytes wraps an existing canonical serialization. The bytes are
// stored verbatim and the txid is computed over them immediately; the
// structured fields stay empty until Deserialize is called. Returns
// ErrEmptyData if data is empty.
func NewFromBytes(data []byte) (*Transaction, error) {
	if len(data) == 0 {
		return nil, ErrEmptyData
	}
	t := &Transaction{raw: data}
	t.txid = chainhash.DoubleHashH(data)
	return t, nil
}

// Parse decodes one complete transaction from data, rejecting trailing
// bytes.
func Parse(data []byte) (*Transaction, error) {
	t, err := NewFromBytes(data)
	if err != nil {
		return nil, err
	}
	if err := t.Deserialize(); err != nil {
		return nil, err
	}
	return t, nil
}

// ParseAll decodes back-to-back transactions until data is exhausted.
// Each returned transaction's identity hash covers its own serialization,
// not the shared buffer.
func ParseAll(data []byte) ([]*Transaction, error) {
	var txns []*Transaction
	for len(data) > 0 {
		t, err := NewFromBytes(data)
		if err != nil {
			return nil, err
		}
		rest, err := t.DeserializeTrailing()
		if err != nil {
			return nil, err
		}
		t.ComputeTxID()
		txns = append(txns, t)
		data = rest
	}
	return txns, nil
}

// TxID returns the cached identity hash: the double-SHA256 of the bytes
// from the last NewFromBytes or Serialize call.
func (t *Transaction) TxID() chainhash.Hash {
	return t.txid
}

// Raw returns the cached canonical serialization. Callers must not modify
// the returned slice. The cache reflects the last NewFromBytes or
// Serialize call, not any field mutations made since.
func (t *Transaction) Raw() []byte {
	return t.raw
}

// ComputeTxID recomputes and returns the identity hash over the cached
// serialization. Call Serialize first if fields were mutated.
func (t *Transaction) ComputeTxID() chainhash.Hash {
	t.txid = chainhash.DoubleHashH(t.raw)
	return t.txid
}

// SetCoinbase replaces the entire input sequence with a single coinbase
// input carrying the given unlocking script and sequence number. The
// previous-output reference is forced to the null sentinel.
func (t *Transaction) SetCoinbase(unlockingScript []byte, sequence uint32) {
	t.Inputs = []*Input{{
		PreviousOutPoint: nullOutPoint,
		UnlockingScript:  unlockingScript,
		Sequence:         sequence,
	}}
}

// SetCoinbaseWithHeight is SetCoinbase with the block height prepended to
// the unlocking script as the minimal-length push BIP 34 requires.
func (t *Transaction) SetCoinbaseWithHeight(height uint64, unlockingScript []byte, sequence uint32) {
	t.SetCoinbase(append(script.EncodeHeight(height), unlockingScript...), sequence)
}

// AddInput appends one input spending prev. Inputs keep insertion order.
func (t *Transaction) AddInput(prev OutPoint, unlockingScript []byte, sequence uint32) {
	t.Inputs = append(t.Inputs, &Input{
		PreviousOutPoint: prev,
		UnlockingScript:  unlockingScript,
		Sequence:         sequence,
	})
}

// AddOutput appends one output. Outputs keep insertion order. Amount is in
// the chain's base unit; no bounds checking is performed.
func (t *Transaction) AddOutput(amount uint64, lockingScript []byte) {
	t.Outputs = append(t.Outputs, &Output{
		Amount:        amount,
		LockingScript: lockingScript,
	})
}

// IsCoinbase reports whether the transaction has exactly one input and
// that input's previous-output reference is the null sentinel.
func (t *Transaction) IsCoinbase() bool {
	return len(t.Inputs) == 1 && t.Inputs[0].PreviousOutPoint.IsNull()
}

// CoinbaseScript returns the unlocking script of input 0. Callers must
// establish IsCoinbase first; the method does not check and panics on a
// transaction with no inputs.
func (t *Transaction) CoinbaseScript() []byte {
	return t.Inputs[0].UnlockingScript
}
