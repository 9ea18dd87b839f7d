// Binary encoding for cached report entries.
//
// Entry format (little-endian):
//
//	version:  uint8   (entryVersion)
//	storedAt: int64   unix nanoseconds
//	report:   gob-encoded ports.Report
package bbolt

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"time"

	"github.com/corey/lintpipe/internal/ports"
)

const (
	entryVersion    = 1
	entryHeaderSize = 1 + 8
)

type entry struct {
	storedAt time.Time
	report   *ports.Report
}

func encodeEntry(e entry) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(entryHeaderSize + 256)

	var header [entryHeaderSize]byte
	header[0] = entryVersion
	binary.LittleEndian.PutUint64(header[1:], uint64(e.storedAt.UnixNano()))
	buf.Write(header[:])

	if err := gob.NewEncoder(&buf).Encode(e.report); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeStoredAt reads only the header. Used when pruning.
func decodeStoredAt(data []byte) (time.Time, error) {
	if len(data) < entryHeaderSize {
		return time.Time{}, fmt.Errorf("entry too short: %d bytes", len(data))
	}
	if data[0] != entryVersion {
		return time.Time{}, fmt.Errorf("unknown entry version %d", data[0])
	}
	return time.Unix(0, int64(binary.LittleEndian.Uint64(data[1:]))), nil
}

func decodeEntry(data []byte) (entry, error) {
	storedAt, err := decodeStoredAt(data)
	if err != nil {
		return entry{}, err
	}
	var report ports.Report
	if err := gob.NewDecoder(bytes.NewReader(data[entryHeaderSize:])).Decode(&report); err != nil {
		return entry{}, fmt.Errorf("decode report: %w", err)
	}
	if report.Paths == nil {
		report.Paths = make(map[string][]ports.Diagnostic)
	}
	return entry{storedAt: storedAt, report: &report}, nil
}
