package contracts

import (
	"errors"
	"fmt"
)

// DataUnavailableError aborts the whole screening run. It is raised only when
// proceeding would corrupt every downstream figure, e.g. when the unit
// normalization reference revenue is missing.
type DataUnavailableError struct {
	Reason string
}

func (e *DataUnavailableError) Error() string {
	return fmt.Sprintf("data unavailable: %s", e.Reason)
}

// IsDataUnavailable reports whether err wraps a DataUnavailableError.
func IsDataUnavailable(err error) bool {
	var target *DataUnavailableError
	return errors.As(err, &target)
}
