package png

import "errors"

// ErrorKind is a machine-readable reason for a failed scan. Display layers
// map it to localized text.
type ErrorKind string

const (
	KindBadSignature ErrorKind = "bad_signature"
)

// ErrNotPNG matches any *FormatError via errors.Is.
var ErrNotPNG = errors.New("not a recognized image container")

// FormatError aborts a whole scan. Every other anomaly is absorbed.
type FormatError struct {
	Kind ErrorKind
}

func (e *FormatError) Error() string {
	return "png: " + ErrNotPNG.Error() + " (" + string(e.Kind) + ")"
}

func (e *FormatError) Is(target error) bool {
	return target == ErrNotPNG
}
