// Package castepbin decodes CASTEP .castep_bin and .check binary files.
//
// The files are Fortran unformatted streams organised into sections marked
// by short uppercase text records. Array dimensions are frequently not
// stored next to the data and have to be recovered from scalars decoded
// elsewhere in the file; the decoder threads a growing namespace of decoded
// values through every section for exactly that purpose.
package castepbin

import (
	"errors"

	"github.com/zhubonan/castepxbin/internal/fortran"
)

// Errors reported while decoding. All of them describe deterministic
// properties of the input file; none is worth retrying.
var (
	// ErrRecordMarkerMismatch means the stream is desynchronized.
	ErrRecordMarkerMismatch = fortran.ErrMarkerMismatch

	// ErrHeaderNotFound is returned when an explicitly requested section
	// header is absent from the file.
	ErrHeaderNotFound = errors.New("header not found")

	// ErrAmbiguousShape is returned for an array whose shape carries more
	// than one unresolved axis at a point where deferred solving is not
	// possible.
	ErrAmbiguousShape = errors.New("ambiguous array shape")

	// ErrUnresolvableShape is returned when the deferred shape-solving pass
	// cannot make progress: every remaining field still has two or more
	// distinct unknown axis names.
	ErrUnresolvableShape = errors.New("unresolvable array shape")

	// ErrInvalidCompositeLayout is returned when a composite sub-field
	// would consume zero or a negative number of bytes.
	ErrInvalidCompositeLayout = errors.New("invalid composite record layout")

	// ErrMissingField is returned when a required namespace entry is
	// absent.
	ErrMissingField = errors.New("missing field")
)
