package cache

import (
	"time"

	"github.com/klauspost/compress/zstd"
)

// DefaultCompressionThreshold is how long a bin sits idle before
// CompressIdle folds it down.
const DefaultCompressionThreshold = 5 * time.Minute

var (
	sharedEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	sharedDecoder, _ = zstd.NewReader(nil)
)

// ZstdCompress compresses data with zstd. Empty input is returned
// unchanged; CompressIdle's byte-count bookkeeping counts a compression
// that does not shrink the data as zero savings.
func ZstdCompress(data []byte) []byte {
	if len(data) == 0 {
		return data
	}
	return sharedEncoder.EncodeAll(data, make([]byte, 0, len(data)))
}

// ZstdDecompress reverses ZstdCompress. If data does not decode as a
// zstd frame, it is returned unchanged.
func ZstdDecompress(data []byte) []byte {
	out, err := sharedDecoder.DecodeAll(data, nil)
	if err != nil {
		return data
	}
	return out
}
