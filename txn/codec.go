package txn

import (
	"encoding/binary"
	"fmt"

	"github.com/bsv-blockchain/go-sdk/chainhash"

	"github.com/poolcore/libtxn-go/varint"
)

// Minimum serialized sizes, used to sanity-check counts before allocating.
// An input is 32+4 bytes of outpoint, at least 1 byte of script length, and
// 4 bytes of sequence; an output is 8 bytes of amount plus at least 1 byte
// of script length.
const (
	minInputSize  = 41
	minOutputSize = 9
)

// reader is a cursor over a byte buffer. Every read advances the offset;
// reads past the end fail with ErrTruncated.
type reader struct {
	buf []byte
	off int
}

func (r *reader) remaining() int {
	return len(r.buf) - r.off
}

func (r *reader) readBytes(n int) ([]byte, error) {
	if r.remaining() < n {
		return nil, ErrTruncated
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *reader) readUint32() (uint32, error) {
	b, err := r.readBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *reader) readUint64() (uint64, error) {
	b, err := r.readBytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// readVarInt also reports the encoded width, which callers use to keep an
// independent count of consumed bytes. Non-minimal encodings are accepted,
// so the width cannot be re-derived from the value.
func (r *reader) readVarInt() (uint64, int, error) {
	v, n, err := varint.Decode(r.buf[r.off:])
	if err != nil {
		return 0, 0, ErrTruncated
	}
	r.off += n
	return v, n, nil
}

// Deserialize parses the cached raw bytes into the structured fields,
// requiring the buffer to contain exactly one transaction. Bytes left over
// after the locktime field fail with ErrTrailingData. On any error the
// fields are left untouched. The identity hash is not recomputed; it was
// already taken over the raw bytes at construction.
func (t *Transaction) Deserialize() error {
	r := &reader{buf: t.raw}
	d, _, err := decode(r)
	if err != nil {
		return err
	}
	if n := r.remaining(); n != 0 {
		return fmt.Errorf("%w: %d bytes after locktime", ErrTrailingData, n)
	}
	t.adopt(d)
	return nil
}

// DeserializeTrailing parses one transaction from the front of the cached
// raw bytes and returns the unconsumed suffix, for buffers holding several
// transactions back-to-back. The raw cache is truncated to the consumed
// prefix. The identity hash is not recomputed; callers that need the txid
// of the truncated serialization must call ComputeTxID. On any error the
// fields and the raw cache are left untouched.
func (t *Transaction) DeserializeTrailing() ([]byte, error) {
	r := &reader{buf: t.raw}
	d, counted, err := decode(r)
	if err != nil {
		return nil, err
	}
	// The field-by-field byte count must agree with the cursor offset;
	// a mismatch is a length-bookkeeping bug in this package.
	if counted != r.off {
		return nil, fmt.Errorf("%w: fields counted %d bytes, cursor consumed %d", ErrConsistency, counted, r.off)
	}
	rest := t.raw[r.off:]
	t.raw = t.raw[:r.off:r.off]
	t.adopt(d)
	return rest, nil
}

// decode parses one transaction's fields from r into a scratch value,
// leaving the caller to decide what to do with any remaining bytes. It
// also returns an independently accumulated count of the bytes the fields
// occupy, using the varint widths actually read (non-minimal encodings are
// accepted, so widths cannot be re-derived from values).
func decode(r *reader) (*Transaction, int, error) {
	d := &Transaction{}
	counted := 4 // version

	version, err := r.readUint32()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: version", ErrTruncated)
	}
	d.Version = int32(version)

	inputCount, n, err := r.readVarInt()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: input count", ErrTruncated)
	}
	counted += n
	if inputCount > uint64(r.remaining()/minInputSize) {
		return nil, 0, fmt.Errorf("%w: input count %d exceeds buffer", ErrTruncated, inputCount)
	}
	d.Inputs = make([]*Input, 0, inputCount)
	for i := uint64(0); i < inputCount; i++ {
		in, n, err := decodeInput(r)
		if err != nil {
			return nil, 0, fmt.Errorf("input %d: %w", i, err)
		}
		counted += n
		d.Inputs = append(d.Inputs, in)
	}

	outputCount, n, err := r.readVarInt()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: output count", ErrTruncated)
	}
	counted += n
	if outputCount > uint64(r.remaining()/minOutputSize) {
		return nil, 0, fmt.Errorf("%w: output count %d exceeds buffer", ErrTruncated, outputCount)
	}
	d.Outputs = make([]*Output, 0, outputCount)
	for i := uint64(0); i < outputCount; i++ {
		out, n, err := decodeOutput(r)
		if err != nil {
			return nil, 0, fmt.Errorf("output %d: %w", i, err)
		}
		counted += n
		d.Outputs = append(d.Outputs, out)
	}

	if d.LockTime, err = r.readUint32(); err != nil {
		return nil, 0, fmt.Errorf("%w: locktime", ErrTruncated)
	}
	counted += 4
	return d, counted, nil
}

func decodeInput(r *reader) (*Input, int, error) {
	in := &Input{}
	hash, err := r.readBytes(HashSize)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: previous output hash", ErrTruncated)
	}
	copy(in.PreviousOutPoint.Hash[:], hash)
	if in.PreviousOutPoint.Index, err = r.readUint32(); err != nil {
		return nil, 0, fmt.Errorf("%w: previous output index", ErrTruncated)
	}
	scriptLen, n, err := r.readVarInt()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: script length", ErrTruncated)
	}
	if scriptLen > uint64(r.remaining()) {
		return nil, 0, fmt.Errorf("%w: script length %d exceeds buffer", ErrTruncated, scriptLen)
	}
	s, err := r.readBytes(int(scriptLen))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: unlocking script", ErrTruncated)
	}
	in.UnlockingScript = cloneBytes(s)
	if in.Sequence, err = r.readUint32(); err != nil {
		return nil, 0, fmt.Errorf("%w: sequence", ErrTruncated)
	}
	return in, HashSize + 8 + n + int(scriptLen), nil
}

func decodeOutput(r *reader) (*Output, int, error) {
	out := &Output{}
	var err error
	if out.Amount, err = r.readUint64(); err != nil {
		return nil, 0, fmt.Errorf("%w: amount", ErrTruncated)
	}
	scriptLen, n, err := r.readVarInt()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: script length", ErrTruncated)
	}
	if scriptLen > uint64(r.remaining()) {
		return nil, 0, fmt.Errorf("%w: script length %d exceeds buffer", ErrTruncated, scriptLen)
	}
	s, err := r.readBytes(int(scriptLen))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: locking script", ErrTruncated)
	}
	out.LockingScript = cloneBytes(s)
	return out, 8 + n + int(scriptLen), nil
}

// adopt installs decoded fields, after which the transaction's structured
// view matches its raw cache.
func (t *Transaction) adopt(d *Transaction) {
	t.Version = d.Version
	t.Inputs = d.Inputs
	t.Outputs = d.Outputs
	t.LockTime = d.LockTime
}

// cloneBytes copies a decoded slice so the transaction owns its scripts
// independently of the buffer it was parsed from.
func cloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// Serialize produces the canonical byte encoding of the current fields,
// stores it as the raw cache, and recomputes the identity hash over it.
// This is the only operation that refreshes the txid from field state.
func (t *Transaction) Serialize() []byte {
	buf := make([]byte, 0, t.SerializeSize())

	buf = binary.LittleEndian.AppendUint32(buf, uint32(t.Version))

	buf = varint.Append(buf, uint64(len(t.Inputs)))
	for _, in := range t.Inputs {
		buf = append(buf, in.PreviousOutPoint.Hash[:]...)
		buf = binary.LittleEndian.AppendUint32(buf, in.PreviousOutPoint.Index)
		buf = varint.Append(buf, uint64(len(in.UnlockingScript)))
		buf = append(buf, in.UnlockingScript...)
		buf = binary.LittleEndian.AppendUint32(buf, in.Sequence)
	}

	buf = varint.Append(buf, uint64(len(t.Outputs)))
	for _, out := range t.Outputs {
		buf = binary.LittleEndian.AppendUint64(buf, out.Amount)
		buf = varint.Append(buf, uint64(len(out.LockingScript)))
		buf = append(buf, out.LockingScript...)
	}

	buf = binary.LittleEndian.AppendUint32(buf, t.LockTime)

	t.raw = buf
	t.txid = chainhash.DoubleHashH(buf)
	return buf
}

// SerializeSize returns the byte length Serialize would produce for the
// current fields.
func (t *Transaction) SerializeSize() int {
	return serializedSize(t.Inputs, t.Outputs)
}

func serializedSize(inputs []*Input, outputs []*Output) int {
	// version + locktime + the two counts
	n := 8 + varint.Size(uint64(len(inputs))) + varint.Size(uint64(len(outputs)))
	for _, in := range inputs {
		n += HashSize + 8 + varint.Size(uint64(len(in.UnlockingScript))) + len(in.UnlockingScript)
	}
	for _, out := range outputs {
		n += 8 + varint.Size(uint64(len(out.LockingScript))) + len(out.LockingScript)
	}
	return n
}
