// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package filestore

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies how a block file's payload is compressed.
// None, LZ4 and Zstd are written as the first byte of every block
// file; changing their values breaks existing stores.
type Compression uint8

const (
	// CompressionNone stores the payload as is.
	CompressionNone Compression = 0

	// CompressionLZ4 is LZ4 block compression.
	CompressionLZ4 Compression = 1

	// CompressionZstd is zstd at the default level.
	CompressionZstd Compression = 2

	// CompressionAuto probes each block with zstd and picks zstd, LZ4
	// or none by the ratio achieved. It is a store setting only and
	// never appears in a block file.
	CompressionAuto Compression = 0xff
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	case CompressionAuto:
		return "auto"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// ParseCompression parses a compression setting by name.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "none", "":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZstd, nil
	case "auto":
		return CompressionAuto, nil
	default:
		return 0, fmt.Errorf("unknown compression %q", name)
	}
}

var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("filestore: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("filestore: zstd decoder initialization failed: " + err.Error())
	}
}

// maxBlockSize bounds the uncompressed size read from a block header.
const maxBlockSize = 1 << 30

// errIncompressible means the compressed form was not smaller than
// the input; the caller stores the block uncompressed.
var errIncompressible = errors.New("data is incompressible")

// selectCompression resolves CompressionAuto for one block. A zstd
// ratio of at least 1.5 selects zstd, at least 1.1 selects LZ4, and
// anything less stores the block uncompressed.
func selectCompression(data []byte) Compression {
	if len(data) == 0 {
		return CompressionNone
	}
	compressed := zstdEncoder.EncodeAll(data, nil)
	ratio := float64(len(data)) / float64(len(compressed))
	switch {
	case ratio >= 1.5:
		return CompressionZstd
	case ratio >= 1.1:
		return CompressionLZ4
	default:
		return CompressionNone
	}
}

// encodeBlock produces the on-disk form of data:
//
//	none:      0x00 ‖ data
//	lz4, zstd: tag ‖ uvarint(len(data)) ‖ compressed
//
// A block that does not shrink is written as none.
func encodeBlock(data []byte, compression Compression) ([]byte, error) {
	if compression == CompressionAuto {
		compression = selectCompression(data)
	}

	var compressed []byte
	var err error
	switch compression {
	case CompressionNone:
	case CompressionLZ4:
		compressed, err = compressLZ4(data)
	case CompressionZstd:
		compressed, err = compressZstd(data)
	default:
		return nil, fmt.Errorf("unsupported compression %s", compression)
	}
	if errors.Is(err, errIncompressible) {
		compression = CompressionNone
	} else if err != nil {
		return nil, err
	}

	if compression == CompressionNone {
		block := make([]byte, 0, 1+len(data))
		block = append(block, byte(CompressionNone))
		return append(block, data...), nil
	}
	block := make([]byte, 0, 1+binary.MaxVarintLen64+len(compressed))
	block = append(block, byte(compression))
	block = binary.AppendUvarint(block, uint64(len(data)))
	return append(block, compressed...), nil
}

// decodeBlock reverses encodeBlock. It reports the compression the
// block was written with.
func decodeBlock(block []byte) ([]byte, Compression, error) {
	if len(block) == 0 {
		return nil, 0, errors.New("empty block file")
	}
	compression, rest := Compression(block[0]), block[1:]
	if compression == CompressionNone {
		return rest, compression, nil
	}

	size, n := binary.Uvarint(rest)
	if n <= 0 || size > maxBlockSize {
		return nil, compression, errors.New("bad uncompressed size")
	}
	payload := rest[n:]

	var data []byte
	var err error
	switch compression {
	case CompressionLZ4:
		data, err = decompressLZ4(payload, int(size))
	case CompressionZstd:
		data, err = decompressZstd(payload, int(size))
	default:
		return nil, compression, fmt.Errorf("unknown compression tag %d", uint8(compression))
	}
	return data, compression, err
}

func compressLZ4(data []byte) ([]byte, error) {
	destination := make([]byte, lz4.CompressBlockBound(len(data)))
	written, err := lz4.CompressBlock(data, destination, nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	// CompressBlock returns 0 for incompressible input.
	if written == 0 || written >= len(data) {
		return nil, errIncompressible
	}
	return destination[:written], nil
}

func decompressLZ4(compressed []byte, size int) ([]byte, error) {
	destination := make([]byte, size)
	read, err := lz4.UncompressBlock(compressed, destination)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompress: %w", err)
	}
	if read != size {
		return nil, fmt.Errorf("lz4 decompress: got %d bytes, expected %d", read, size)
	}
	return destination, nil
}

func compressZstd(data []byte) ([]byte, error) {
	compressed := zstdEncoder.EncodeAll(data, nil)
	if len(compressed) >= len(data) {
		return nil, errIncompressible
	}
	return compressed, nil
}

func decompressZstd(compressed []byte, size int) ([]byte, error) {
	result, err := zstdDecoder.DecodeAll(compressed, make([]byte, 0, size))
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", err)
	}
	if len(result) != size {
		return nil, fmt.Errorf("zstd decompress: got %d bytes, expected %d", len(result), size)
	}
	return result, nil
}
