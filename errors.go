package sortmerkle

import "strconv"

// InvalidEncodingError is returned when an externally supplied value
// (a leaf, a proof digest, a target leaf, or a root)
// is not a recognized hex or raw digest representation.
type InvalidEncodingError struct {
	// The offending input, as hex text or a hex rendering of raw bytes.
	Input string

	Reason string
}

func (e *InvalidEncodingError) Error() string {
	return "invalid encoding " + strconv.Quote(e.Input) + ": " + e.Reason
}
