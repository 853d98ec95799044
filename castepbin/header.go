package castepbin

import (
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/zhubonan/castepxbin/internal/fortran"
)

// sentinelTitle is the first record of a plain .castep_bin file. Checkpoint
// (.check) files carry extra state and start straight with data records, so
// a missing sentinel selects the checkpoint layout rather than failing.
const sentinelTitle = "CASTEP_BIN"

// endHeader terminates the header scan.
const endHeader = "END"

// headerIndex maps each section header to the offset of the record that
// immediately follows it. Headers that occur more than once are stored
// under a numeric suffix after the first occurrence.
type headerIndex struct {
	offsets    map[string]int64
	checkpoint bool
}

// ScanHeaders builds the header offset map of a stream without decoding
// any data, and reports whether the checkpoint layout was detected. A nil
// order means big-endian.
func ScanHeaders(rs io.ReadSeeker, order binary.ByteOrder) (map[string]int64, bool, error) {
	idx, err := buildHeaderIndex(fortran.NewReader(rs, order))
	if err != nil {
		return nil, false, err
	}
	return idx.offsets, idx.checkpoint, nil
}

// buildHeaderIndex scans the whole file once in skip mode, recording every
// record whose payload looks like an uppercase ASCII section header.
func buildHeaderIndex(r *fortran.Reader) (*headerIndex, error) {
	idx := &headerIndex{offsets: map[string]int64{}}

	payload, _, err := r.ReadRecord()
	if err != nil {
		return nil, fmt.Errorf("read title record: %w", err)
	}
	if headerText(payload) != sentinelTitle {
		// Not an error: checkpoint files have no title record. Rescan from
		// the start so the first record is not lost.
		idx.checkpoint = true
		if err := r.Seek(0); err != nil {
			return nil, err
		}
	}

	for {
		payload, _, err := r.SkipRecord()
		if err != nil {
			return nil, fmt.Errorf("scan headers: %w", err)
		}
		name := headerText(payload)
		if !isHeader(name) {
			continue
		}
		if name == endHeader {
			return idx, nil
		}
		if _, exists := idx.offsets[name]; exists {
			name = suffixedName(name, idx.offsets)
		}
		off, err := r.Offset()
		if err != nil {
			return nil, err
		}
		idx.offsets[name] = off
	}
}

// headerText decodes a candidate header payload: quote- and space-trimmed
// ASCII. Large records skipped by the scanner arrive as nil and yield "".
func headerText(payload []byte) string {
	if payload == nil || !utf8.Valid(payload) {
		return ""
	}
	return strings.TrimSpace(strings.Trim(string(payload), "'"))
}

// isHeader reports whether s looks like a section header: nonempty, leading
// letter, and entirely uppercase. Most record payloads are numeric and fail
// the uppercase test by containing arbitrary bytes.
func isHeader(s string) bool {
	if s == "" {
		return false
	}
	first, _ := utf8.DecodeRuneInString(s)
	if !unicode.IsLetter(first) {
		return false
	}
	return s == strings.ToUpper(s)
}

// suffixedName synthesizes "<name>_NN" for a repeated header, with NN one
// past the highest suffix already present for that base name.
func suffixedName(name string, existing map[string]int64) string {
	counter := 1
	prefix := name + "_"
	for key := range existing {
		rest, ok := strings.CutPrefix(key, prefix)
		if !ok {
			continue
		}
		if num, err := strconv.Atoi(rest); err == nil && num >= counter {
			counter = num + 1
		}
	}
	return fmt.Sprintf("%s_%02d", name, counter)
}
