package castepbin

import (
	"fmt"
	"math"
)

// ledger tracks array fields that were decoded flat because more than one
// of their named axes was still unknown. It only lives for the duration of
// one decode pass.
type ledger struct {
	fields []Field
}

func (l *ledger) add(f Field) {
	l.fields = append(l.fields, f)
}

// resolvePending reshapes the deferred arrays to a fixed point. Each
// iteration solves every field whose set of unknown axis names has
// collapsed to a single distinct name; that name may occur in several axes
// of the same field (a square matrix, say), in which case the axis value is
// the appropriate root of the element count. An iteration that solves
// nothing while fields remain is a hard failure: no ordering of the
// remaining fields can make progress.
func resolvePending(ns Namespace, l *ledger) error {
	for len(l.fields) > 0 {
		progressed := false
		var remaining []Field
		for _, f := range l.fields {
			total, ok := flatLen(ns[f.Name])
			if !ok {
				return fmt.Errorf("%w: %s: deferred value missing from namespace",
					ErrUnresolvableShape, f.Name)
			}
			dims, missing := resolveShape(f.Shape, ns)
			switch len(missing) {
			case 0:
				if err := reshape(ns[f.Name], f.Name, dims, total); err != nil {
					return err
				}
				progressed = true
			case 1:
				occurrences := 0
				known := 1
				for _, d := range dims {
					if d < 0 {
						occurrences++
					} else {
						known *= d
					}
				}
				if known <= 0 || total%known != 0 {
					return fmt.Errorf("%w: %s: %d elements do not divide by known axes %v",
						ErrUnresolvableShape, f.Name, total, dims)
				}
				n := int(math.Round(math.Pow(float64(total/known), 1/float64(occurrences))))
				for i, d := range dims {
					if d < 0 {
						dims[i] = n
					}
				}
				if err := reshape(ns[f.Name], f.Name, dims, total); err != nil {
					return err
				}
				ns[missing[0]] = n
				progressed = true
			default:
				remaining = append(remaining, f)
			}
		}
		l.fields = remaining
		if !progressed && len(l.fields) > 0 {
			names := make([]string, len(l.fields))
			for i, f := range l.fields {
				names[i] = f.Name
			}
			return fmt.Errorf("%w: too many unknowns for %v", ErrUnresolvableShape, names)
		}
	}
	return nil
}

func flatLen(v any) (int, bool) {
	switch a := v.(type) {
	case *IntArray:
		return a.Len(), true
	case *FloatArray:
		return a.Len(), true
	case *ComplexArray:
		return a.Len(), true
	default:
		return 0, false
	}
}

// reshape rewrites the shape of a flat column-major array in place.
func reshape(v any, name string, dims []int, total int) error {
	if product(dims) != total {
		return fmt.Errorf("%w: %s: shape %v does not hold %d elements",
			ErrUnresolvableShape, name, dims, total)
	}
	switch a := v.(type) {
	case *IntArray:
		a.Shape = dims
	case *FloatArray:
		a.Shape = dims
	case *ComplexArray:
		a.Shape = dims
	default:
		return fmt.Errorf("%w: %s: not an array", ErrUnresolvableShape, name)
	}
	return nil
}
