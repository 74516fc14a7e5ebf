// Package varint implements Bitcoin's CompactSize variable-length integer
// encoding, used on the wire for counts and script lengths. Values encode
// to 1, 3, 5 or 9 bytes depending on magnitude.
package varint

import "encoding/binary"

// Discriminator bytes for the multi-byte forms.
const (
	tagUint16 = 0xfd
	tagUint32 = 0xfe
	tagUint64 = 0xff
)

// Size returns the number of bytes Encode produces for v.
func Size(v uint64) int {
	switch {
	case v < tagUint16:
		return 1
	case v <= 0xffff:
		return 3
	case v <= 0xffffffff:
		return 5
	default:
		return 9
	}
}

// Encode returns the minimal-length CompactSize encoding of v.
func Encode(v uint64) []byte {
	return Append(nil, v)
}

// Append appends the minimal-length CompactSize encoding of v to dst and
// returns the extended slice.
func Append(dst []byte, v uint64) []byte {
	switch {
	case v < tagUint16:
		return append(dst, byte(v))
	case v <= 0xffff:
		dst = append(dst, tagUint16)
		return binary.LittleEndian.AppendUint16(dst, uint16(v))
	case v <= 0xffffffff:
		dst = append(dst, tagUint32)
		return binary.LittleEndian.AppendUint32(dst, uint32(v))
	default:
		dst = append(dst, tagUint64)
		return binary.LittleEndian.AppendUint64(dst, v)
	}
}

// Decode reads one CompactSize integer from the front of buf. It returns
// the decoded value and the number of bytes consumed. Non-minimal encodings
// are accepted. Returns ErrTruncated if buf is too short to hold the value
// its discriminator byte announces.
func Decode(buf []byte) (uint64, int, error) {
	if len(buf) == 0 {
		return 0, 0, ErrTruncated
	}
	switch buf[0] {
	case tagUint16:
		if len(buf) < 3 {
			return 0, 0, ErrTruncated
		}
		return uint64(binary.LittleEndian.Uint16(buf[1:3])), 3, nil
	case tagUint32:
		if len(buf) < 5 {
			return 0, 0, ErrTruncated
		}
		return uint64(binary.LittleEndian.Uint32(buf[1:5])), 5, nil
	case tagUint64:
		if len(buf) < 9 {
			return 0, 0, ErrTruncated
		}
		return binary.LittleEndian.Uint64(buf[1:9]), 9, nil
	default:
		return uint64(buf[0]), 1, nil
	}
}
