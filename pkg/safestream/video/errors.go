package video

import "fmt"

// ErrVideoAPI wraps every failure of a video operation. The cause is kept in the chain.
type ErrVideoAPI struct {
	error
}

func NewErrVideoAPI(cause error) *ErrVideoAPI {
	return &ErrVideoAPI{fmt.Errorf("video api: %w", cause)}
}

func (e *ErrVideoAPI) Unwrap() error { return e.error }

type ErrVideoNotFound struct {
	error
	Key string
}

func NewErrVideoNotFound(key string) *ErrVideoNotFound {
	return &ErrVideoNotFound{fmt.Errorf("video with key %q not found", key), key}
}
