package castepbin

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/zhubonan/castepxbin/internal/fortran"
)

// Decoder decodes one castep_bin or checkpoint file per call. The zero
// value decodes every known section with big-endian byte order.
type Decoder struct {
	// Order is the byte order of the file. Nil means big-endian, which is
	// what CASTEP builds default to.
	Order binary.ByteOrder

	// Headers optionally restricts decoding to the named section headers.
	// The CELL% family is always decoded regardless, since it supplies the
	// dimension values most other sections need. A listed header that is
	// missing from the file is an ErrHeaderNotFound.
	Headers []string
}

// Decode reads the whole stream: it builds the header index, selects the
// standard or checkpoint layout table, decodes every matching section in
// table order into one flat namespace, and finally runs the deferred
// shape-solving pass.
func (d *Decoder) Decode(rs io.ReadSeeker) (Namespace, error) {
	order := d.Order
	if order == nil {
		order = binary.BigEndian
	}
	r := fortran.NewReader(rs, order)

	idx, err := buildHeaderIndex(r)
	if err != nil {
		return nil, err
	}
	table := standardSpec
	if idx.checkpoint {
		table = checkpointSpec
	}

	requested := make(map[string]bool, len(d.Headers))
	for _, h := range d.Headers {
		requested[h] = true
	}

	ns := Namespace{}
	pending := &ledger{}
	for _, entry := range table {
		if len(requested) > 0 && !requested[entry.header] && !strings.HasPrefix(entry.header, "CELL%") {
			continue
		}
		off, ok := idx.offsets[entry.header]
		if !ok {
			if requested[entry.header] {
				return nil, fmt.Errorf("%w: %s", ErrHeaderNotFound, entry.header)
			}
			continue
		}
		if err := r.Seek(off); err != nil {
			return nil, fmt.Errorf("seek to %s: %w", entry.header, err)
		}
		for _, f := range entry.fields {
			if err := decodeField(r, order, f, ns, pending); err != nil {
				return nil, fmt.Errorf("section %s: %w", entry.header, err)
			}
		}
	}

	if err := resolvePending(ns, pending); err != nil {
		return nil, err
	}
	return ns, nil
}

// decodeField consumes the records belonging to one field specification.
func decodeField(r *fortran.Reader, order binary.ByteOrder, f Field, ns Namespace, pending *ledger) error {
	switch f.Kind {
	case KindSkip:
		_, _, err := r.SkipRecord()
		return err
	case KindScalar, KindString, KindBool:
		payload, _, err := r.ReadRecord()
		if err != nil {
			return fmt.Errorf("field %s: %w", f.Name, err)
		}
		v, err := f.decodeScalar(payload, order)
		if err != nil {
			return err
		}
		ns[f.Name] = v
		return nil
	case KindArray:
		payload, _, err := r.ReadRecord()
		if err != nil {
			return fmt.Errorf("field %s: %w", f.Name, err)
		}
		v, err := f.decodeArray(payload, order, ns, pending)
		if err != nil {
			return err
		}
		ns[f.Name] = v
		return nil
	case KindComposite:
		return decodeComposite(r, order, f, ns)
	case KindStructured:
		switch f.Proto {
		case protoEigen:
			return decodeEigenBlock(r, order, ns)
		case protoDensity:
			return decodeDensityBlock(r, order, ns)
		case protoWave:
			return decodeWaveBlock(r, order, ns)
		}
		return fmt.Errorf("unknown structured protocol %d", f.Proto)
	default:
		return fmt.Errorf("unknown field kind %d", f.Kind)
	}
}

// decodeComposite splits one physical record into its declared sub-fields
// by walking a byte cursor. Each sub-field consumes element-width times its
// resolved element count; anything non-positive means the shape could not
// be resolved against what has been decoded so far.
func decodeComposite(r *fortran.Reader, order binary.ByteOrder, f Field, ns Namespace) error {
	payload, _, err := r.ReadRecord()
	if err != nil {
		return fmt.Errorf("composite record: %w", err)
	}
	cursor := 0
	for _, sub := range f.Sub {
		size, err := sub.byteSize(ns)
		if err != nil {
			return err
		}
		if cursor+size > len(payload) {
			return fmt.Errorf("%w: %s overruns record (%d+%d > %d)",
				ErrInvalidCompositeLayout, sub.Name, cursor, size, len(payload))
		}
		chunk := payload[cursor : cursor+size]
		switch sub.Kind {
		case KindScalar, KindString, KindBool:
			v, err := sub.decodeScalar(chunk, order)
			if err != nil {
				return err
			}
			ns[sub.Name] = v
		case KindArray:
			v, err := sub.decodeArray(chunk, order, ns, nil)
			if err != nil {
				return err
			}
			ns[sub.Name] = v
		default:
			return fmt.Errorf("%w: field kind %d cannot be nested in a composite",
				ErrInvalidCompositeLayout, sub.Kind)
		}
		cursor += size
	}
	return nil
}

// Read decodes a castep_bin or checkpoint stream with big-endian byte
// order, optionally restricted to the given section headers.
func Read(rs io.ReadSeeker, headers ...string) (Namespace, error) {
	d := Decoder{Headers: headers}
	return d.Decode(rs)
}

// ReadFile opens and decodes a file. The layout (standard vs. checkpoint)
// is detected from the leading title record.
func ReadFile(path string, headers ...string) (Namespace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f, headers...)
}
