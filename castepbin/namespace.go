package castepbin

import "fmt"

// Namespace is the flat accumulator of decoded values, keyed by field name.
// Scalars are stored as int, float64, complex128, string or bool; arrays as
// *IntArray, *FloatArray, *ComplexArray; fixed-width text arrays as
// []string. It is built strictly in header-declaration order so that later
// sections can look up dimensions decoded earlier.
type Namespace map[string]any

func GetInt(ns Namespace, key string) (int, bool) {
	v, ok := ns[key]
	if !ok {
		return 0, false
	}
	n, ok := v.(int)
	return n, ok
}

func GetFloat(ns Namespace, key string) (float64, bool) {
	v, ok := ns[key]
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}

func GetString(ns Namespace, key string) (string, bool) {
	v, ok := ns[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func GetBool(ns Namespace, key string) (bool, bool) {
	v, ok := ns[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

func GetIntArray(ns Namespace, key string) (*IntArray, bool) {
	a, ok := ns[key].(*IntArray)
	return a, ok
}

func GetFloatArray(ns Namespace, key string) (*FloatArray, bool) {
	a, ok := ns[key].(*FloatArray)
	return a, ok
}

func GetComplexArray(ns Namespace, key string) (*ComplexArray, bool) {
	a, ok := ns[key].(*ComplexArray)
	return a, ok
}

func MustGetInt(ns Namespace, key string) (int, error) {
	if n, ok := GetInt(ns, key); ok {
		return n, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrMissingField, key)
}

func MustGetFloat(ns Namespace, key string) (float64, error) {
	if f, ok := GetFloat(ns, key); ok {
		return f, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrMissingField, key)
}

func MustGetFloatArray(ns Namespace, key string) (*FloatArray, error) {
	if a, ok := GetFloatArray(ns, key); ok {
		return a, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrMissingField, key)
}
