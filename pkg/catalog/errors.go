package catalog

import (
	"errors"
	"fmt"
)

// ErrNetwork matches every catalog failure: unreachable host, bad status or a
// response that could not be decoded.
var ErrNetwork = errors.New("catalog: network error")

// NetworkError describes a failed catalog request.
type NetworkError struct {
	Op         string
	Query      string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("catalog %s %q: status %d", e.Op, e.Query, e.StatusCode)
	}
	return fmt.Sprintf("catalog %s %q: %v", e.Op, e.Query, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork
}
