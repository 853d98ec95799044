package castepbin

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// DType enumerates the element types CASTEP writes.
type DType uint8

const (
	DTypeInt     DType = iota // 4-byte integer
	DTypeFloat                // 8-byte float
	DTypeComplex              // 16-byte complex
	DTypeString               // fixed-width ASCII block
	DTypeBool                 // Fortran LOGICAL stored as 4-byte integer
)

// Dim is one array axis: either a literal extent or a reference to a named
// scalar resolved from the namespace at decode time.
type Dim struct {
	N   int
	Ref string
}

func lit(n int) Dim { return Dim{N: n} }

func ref(name string) Dim { return Dim{Ref: name} }

// FieldKind tags the closed set of field variants.
type FieldKind uint8

const (
	KindScalar FieldKind = iota
	KindArray
	KindString
	KindBool
	KindSkip
	KindComposite
	KindStructured
)

// Field is one entry of a section specification. It is plain data; decode
// behaviour is selected by an exhaustive switch on Kind.
type Field struct {
	Name  string
	Kind  FieldKind
	Type  DType
	Width int // byte width of one string element
	Shape []Dim
	Sub   []Field // composite members
	Proto protocol // structured decoding protocol
}

func scalar(name string, t DType) Field {
	return Field{Name: name, Kind: KindScalar, Type: t}
}

func array(name string, t DType, shape ...Dim) Field {
	return Field{Name: name, Kind: KindArray, Type: t, Shape: shape}
}

func strArray(name string, width int, shape ...Dim) Field {
	return Field{Name: name, Kind: KindArray, Type: DTypeString, Width: width, Shape: shape}
}

func str(name string, width int) Field {
	return Field{Name: name, Kind: KindString, Type: DTypeString, Width: width}
}

func boolean(name string) Field {
	return Field{Name: name, Kind: KindBool, Type: DTypeBool}
}

func skip() Field {
	return Field{Kind: KindSkip}
}

func composite(sub ...Field) Field {
	return Field{Kind: KindComposite, Sub: sub}
}

func structured(proto protocol) Field {
	return Field{Kind: KindStructured, Proto: proto}
}

// elemWidth returns the byte width of one element.
func (f Field) elemWidth() int {
	switch f.Type {
	case DTypeFloat:
		return 8
	case DTypeComplex:
		return 16
	case DTypeString:
		return f.Width
	default:
		return 4
	}
}

// resolveShape looks the named axes up in the namespace. Unresolved axes
// come back as -1 in dims; missing lists their distinct names.
func resolveShape(shape []Dim, ns Namespace) (dims []int, missing []string) {
	dims = make([]int, len(shape))
	seen := map[string]bool{}
	for i, d := range shape {
		if d.Ref == "" {
			dims[i] = d.N
			continue
		}
		if n, ok := GetInt(ns, d.Ref); ok {
			dims[i] = n
			continue
		}
		dims[i] = -1
		if !seen[d.Ref] {
			seen[d.Ref] = true
			missing = append(missing, d.Ref)
		}
	}
	return dims, missing
}

// byteSize returns how many bytes the field consumes inside a composite
// record: element width times the fully resolved element count.
func (f Field) byteSize(ns Namespace) (int, error) {
	n := 1
	if f.Kind == KindArray {
		dims, missing := resolveShape(f.Shape, ns)
		if len(missing) > 0 {
			return 0, fmt.Errorf("%w: %s depends on %v", ErrInvalidCompositeLayout, f.Name, missing)
		}
		n = product(dims)
	}
	size := f.elemWidth() * n
	if size <= 0 {
		return 0, fmt.Errorf("%w: %s would consume %d bytes", ErrInvalidCompositeLayout, f.Name, size)
	}
	return size, nil
}

// decodeScalar decodes a single value from the front of payload. A record
// shorter than one element is malformed even when its markers agree.
func (f Field) decodeScalar(payload []byte, order binary.ByteOrder) (any, error) {
	if f.Type != DTypeString && len(payload) < f.elemWidth() {
		return nil, fmt.Errorf("field %s: record has %d bytes, expected %d",
			f.Name, len(payload), f.elemWidth())
	}
	switch f.Type {
	case DTypeFloat:
		return decodeFloats(payload, order, 1)[0], nil
	case DTypeComplex:
		return decodeComplexes(payload, order, 1)[0], nil
	case DTypeString:
		w := f.Width
		if w == 0 || w > len(payload) {
			w = len(payload)
		}
		return trimText(payload[:w]), nil
	case DTypeBool:
		return decodeInts(payload, order, 1)[0] != 0, nil
	default:
		return int(decodeInts(payload, order, 1)[0]), nil
	}
}

// decodeArray decodes an array field from one record payload, resolving at
// most one unknown axis from the payload size. The solved axis is written
// back into the namespace under its reference name. When more than one axis
// is unresolved the behaviour depends on defer mode: top-level fields hand
// the flat data to the pending ledger, composite members fail outright.
func (f Field) decodeArray(payload []byte, order binary.ByteOrder, ns Namespace, pending *ledger) (any, error) {
	dims, missing := resolveShape(f.Shape, ns)
	width := f.elemWidth()
	if width <= 0 || len(payload)%width != 0 {
		return nil, fmt.Errorf("%w: %s: record of %d bytes is not a multiple of element width %d",
			ErrUnresolvableShape, f.Name, len(payload), width)
	}
	total := len(payload) / width

	unresolved := 0
	for _, d := range dims {
		if d < 0 {
			unresolved++
		}
	}

	switch {
	case unresolved == 0:
		count := product(dims)
		return f.buildArray(payload, order, dims, count)
	case unresolved == 1:
		known := 1
		var name string
		for i, d := range dims {
			if d >= 0 {
				known *= d
			} else {
				name = f.Shape[i].Ref
			}
		}
		if known <= 0 || total%known != 0 {
			return nil, fmt.Errorf("%w: %s: %d elements do not divide by known axes %v",
				ErrUnresolvableShape, f.Name, total, dims)
		}
		n := total / known
		for i, d := range dims {
			if d < 0 {
				dims[i] = n
			}
		}
		ns[name] = n
		return f.buildArray(payload, order, dims, total)
	default:
		if pending == nil {
			return nil, fmt.Errorf("%w: %s needs %v", ErrAmbiguousShape, f.Name, missing)
		}
		// Decode flat now; the fixed-point pass reshapes once enough of the
		// named axes are known.
		flat, err := f.buildArray(payload, order, []int{total}, total)
		if err != nil {
			return nil, err
		}
		pending.add(f)
		return flat, nil
	}
}

// buildArray materializes count elements with the given shape. 1-D string
// arrays come back as a slice of trimmed strings and are never reshaped.
func (f Field) buildArray(payload []byte, order binary.ByteOrder, dims []int, count int) (any, error) {
	if need := count * f.elemWidth(); need > len(payload) {
		return nil, fmt.Errorf("%w: %s: shape %v needs %d bytes, record has %d",
			ErrUnresolvableShape, f.Name, dims, need, len(payload))
	}
	shape := append([]int(nil), dims...)
	switch f.Type {
	case DTypeFloat:
		return &FloatArray{Shape: shape, Data: decodeFloats(payload, order, count)}, nil
	case DTypeComplex:
		return &ComplexArray{Shape: shape, Data: decodeComplexes(payload, order, count)}, nil
	case DTypeString:
		out := make([]string, count)
		for i := range out {
			out[i] = trimText(payload[i*f.Width : (i+1)*f.Width])
		}
		return out, nil
	default:
		return &IntArray{Shape: shape, Data: decodeInts(payload, order, count)}, nil
	}
}

func trimText(b []byte) string {
	return strings.TrimSpace(strings.TrimRight(string(b), "\x00"))
}
