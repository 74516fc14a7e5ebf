// Package script provides the minimal script encoding helpers the codec
// needs for coinbase construction.
package script

// EncodeHeight returns the minimal-length numeric push of a block height
// for a coinbase unlocking script, as required by BIP 34: a push-length
// byte followed by the height as a little-endian integer, with a trailing
// zero byte appended when the most significant byte would otherwise set
// the sign bit. Height 0 encodes as a single zero byte push.
func EncodeHeight(height uint64) []byte {
	out := []byte{1}
	for height > 0x7f {
		out[0]++
		out = append(out, byte(height))
		height >>= 8
	}
	return append(out, byte(height))
}
