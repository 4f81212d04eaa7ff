package variant

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Reader streams Record values from a JSON-lines stream as produced by the
// ingest step. Next returns (nil, nil) at end of input.
type Reader struct {
	dec  *json.Decoder
	line int
}

// NewReader creates a Reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{dec: json.NewDecoder(r)}
}

// Next returns the next record, or (nil, nil) once the stream is exhausted.
func (r *Reader) Next() (*Record, error) {
	var rec Record
	if err := r.dec.Decode(&rec); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode record %d: %w", r.line+1, err)
	}
	r.line++
	return &rec, nil
}
