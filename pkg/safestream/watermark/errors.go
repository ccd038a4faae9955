package watermark

import "fmt"

// ErrWatermarkAPI wraps every failure of a watermark operation. The cause is kept in the chain.
type ErrWatermarkAPI struct {
	error
}

func NewErrWatermarkAPI(cause error) *ErrWatermarkAPI {
	return &ErrWatermarkAPI{fmt.Errorf("watermark api: %w", cause)}
}

func (e *ErrWatermarkAPI) Unwrap() error { return e.error }
