package platform

import (
	"fmt"
)

// ResponseError is returned when a backend answers with a non-2xx status.
type ResponseError struct {
	StatusCode int
	Status     string
	Body       []byte
}

func (err *ResponseError) Error() string {
	if len(err.Body) == 0 {
		return fmt.Sprintf("platform responded with %s", err.Status)
	}
	return fmt.Sprintf("platform responded with %s: %s", err.Status, err.Body)
}
