// Package watermark requests watermarked renditions of ingested videos.
package watermark

import (
	"context"
	"time"

	"github.com/safestream/safestream-go/internal/validator"
	"github.com/safestream/safestream-go/pkg/safestream/client"
)

const (
	resourcePath = "watermark"

	// DefaultTimeout is how long CreateAndWait waits for a rendition to be READY.
	DefaultTimeout = 90 * time.Second
)

type Status string

const (
	StatusUnknown Status = ""
	StatusPending Status = "PENDING"
	StatusReady   Status = "READY"
)

func (s Status) Terminal() bool {
	return s == StatusReady
}

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusReady
}

// Result is a watermarked rendition. Href is its self link, polled until READY.
type Result struct {
	ID     string `json:"id,omitempty"`
	Key    string `json:"key"`
	Status Status `json:"status"`
	Href   string `json:"href"`
}

type request struct {
	Key      string                `json:"key"`
	Settings EncodingConfiguration `json:"settings"`
}

var settingsValidator = validator.NewValidator().Register(validator.NewWatermarkValidationRules()...)

type API struct {
	client *client.Client
}

func NewAPI(c *client.Client) *API {
	return &API{client: c}
}

// Create watermarks the video filed under key and waits up to timeout for the rendition.
// A timeout of zero or less returns right after the submission.
func (a *API) Create(ctx context.Context, key string, settings EncodingConfiguration, timeout time.Duration) (*Result, error) {
	if err := validate(key, settings); err != nil {
		return nil, NewErrWatermarkAPI(err)
	}

	result, err := client.SubmitAndAwait(ctx, a.client, client.Await[Result]{
		Resource: "watermark",
		Endpoint: resourcePath,
		Payload:  request{Key: key, Settings: settings},
		Terminal: func(r *Result) bool { return r.Status.Terminal() },
		Resolve:  a.selfLink(),
		Timeout:  timeout,
	})
	if err != nil {
		return nil, NewErrWatermarkAPI(err)
	}
	return result, nil
}

func (a *API) CreateWithWatermarks(ctx context.Context, key string, timeout time.Duration, watermarks ...Configuration) (*Result, error) {
	return a.Create(ctx, key, NewEncodingConfiguration(watermarks...), timeout)
}

// CreateAndWait waits DefaultTimeout for the rendition.
func (a *API) CreateAndWait(ctx context.Context, key string, watermarks ...Configuration) (*Result, error) {
	return a.CreateWithWatermarks(ctx, key, DefaultTimeout, watermarks...)
}

// CreateAsync returns the PENDING result as soon as the request is accepted.
// Use Refresh to follow it.
func (a *API) CreateAsync(ctx context.Context, key string, watermarks ...Configuration) (*Result, error) {
	return a.CreateWithWatermarks(ctx, key, 0, watermarks...)
}

// Refresh fetches the current state of result from its self link.
func (a *API) Refresh(ctx context.Context, result Result) (*Result, error) {
	next, err := a.selfLink()(ctx, &result)
	if err != nil {
		return nil, NewErrWatermarkAPI(err)
	}
	return next, nil
}

func (a *API) selfLink() client.Resolver[Result] {
	return client.BySelfLink(a.client, func(r *Result) string { return r.Href })
}

func validate(key string, settings EncodingConfiguration) error {
	if key == "" {
		return client.NewErrValidation("a video key is required to watermark a video")
	}
	if err := settingsValidator.Struct(settings); err != nil {
		return client.NewErrValidation("%w", err)
	}
	return nil
}
