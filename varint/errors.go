package varint

import "errors"

// ErrTruncated indicates the buffer ends before the announced value.
var ErrTruncated = errors.New("varint: buffer too short")
