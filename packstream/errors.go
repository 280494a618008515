package packstream

import "errors"

// Sentinel errors returned by Serialize/Deserialize. Wrap with fmt.Errorf
// ("%w") when additional context is useful; callers should match with
// errors.Is against these values.
var (
	// ErrInvalidValueMarker reports a leading byte that does not
	// correspond to any known variant.
	ErrInvalidValueMarker = errors.New("packstream: invalid value marker")

	// ErrUnexpectedEndOfInput reports a short read while a value or one
	// of its length extensions was only partially consumed.
	ErrUnexpectedEndOfInput = errors.New("packstream: unexpected end of input")

	// ErrInvalidMapKeyType reports a Map entry whose key was not
	// encoded as a String.
	ErrInvalidMapKeyType = errors.New("packstream: map key is not a string")

	// ErrStructOverflow reports a struct field count that the reader
	// will not materialize (guards against a hostile/corrupt length
	// driving an unbounded allocation).
	ErrStructOverflow = errors.New("packstream: struct field count too large")

	// ErrIoError wraps a short write from the underlying sink.
	ErrIoError = errors.New("packstream: io error")
)
