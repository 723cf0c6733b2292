// Package memory implements the Memory Bridge: the small set of helpers
// every WASM host import uses to read guest linear memory into Go values
// and write Go values back out, plus the length-prefixed string/byte
// layout the guest and host agree on at the ABI boundary.
package memory

import (
	"encoding/binary"
	"fmt"

	"github.com/tetratelabs/wazero/api"
)

// Absent is the sentinel the ABI uses in place of a pointer or length to
// mean "no value" (Rust's None) wherever a guest import returns an
// optional string, byte buffer, or date.
const Absent int32 = -1

// ReadBytes copies length bytes starting at offset out of guest memory.
func ReadBytes(mem api.Memory, offset, length uint32) ([]byte, error) {
	buf, ok := mem.Read(offset, length)
	if !ok {
		return nil, fmt.Errorf("memory: read out of bounds at offset %d length %d", offset, length)
	}
	// mem.Read returns a view into the guest's backing array; copy it so
	// callers can hold on to the bytes past the current host call.
	out := make([]byte, len(buf))
	copy(out, buf)
	return out, nil
}

// ReadString decodes length bytes at offset as a UTF-8 string.
func ReadString(mem api.Memory, offset, length uint32) (string, error) {
	b, err := ReadBytes(mem, offset, length)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ReadLengthPrefixedString reads a little-endian uint32 length at
// offset-4 followed by that many bytes of UTF-8 data at offset, the
// layout the guest uses when it hands the host a single pointer into a
// string it allocated (e.g. env.abort's message argument).
func ReadLengthPrefixedString(mem api.Memory, offset uint32) (string, error) {
	if offset < 4 {
		return "", fmt.Errorf("memory: length-prefixed string offset %d too small for a 4-byte prefix", offset)
	}
	lengthBytes, ok := mem.Read(offset-4, 4)
	if !ok {
		return "", fmt.Errorf("memory: read out of bounds for length prefix at offset %d", offset-4)
	}
	length := binary.LittleEndian.Uint32(lengthBytes)
	return ReadString(mem, offset, length)
}

// WriteBytes writes data into guest memory starting at offset.
func WriteBytes(mem api.Memory, offset uint32, data []byte) error {
	if !mem.Write(offset, data) {
		return fmt.Errorf("memory: write out of bounds at offset %d length %d", offset, len(data))
	}
	return nil
}

// ReadInt32 and ReadUint32 read a single little-endian 4-byte value.

func ReadInt32(mem api.Memory, offset uint32) (int32, error) {
	v, ok := mem.ReadUint32Le(offset)
	if !ok {
		return 0, fmt.Errorf("memory: read out of bounds at offset %d", offset)
	}
	return int32(v), nil
}

func ReadUint32(mem api.Memory, offset uint32) (uint32, error) {
	v, ok := mem.ReadUint32Le(offset)
	if !ok {
		return 0, fmt.Errorf("memory: read out of bounds at offset %d", offset)
	}
	return v, nil
}
