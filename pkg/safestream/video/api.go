package video

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/safestream/safestream-go/pkg/safestream/client"
)

const resourcePath = "videos"

// API ingests and finds videos.
type API struct {
	client *client.Client
}

func NewAPI(c *client.Client) *API {
	return &API{client: c}
}

// Create submits v for ingest and returns without waiting for it to finish.
func (a *API) Create(ctx context.Context, v Video) (*Video, error) {
	return a.CreateAndWait(ctx, v, 0)
}

// CreateAndWait submits v for ingest and blocks until SafeStream reports it INGESTED
// or wait elapses. A wait of zero or less returns right after the submission.
func (a *API) CreateAndWait(ctx context.Context, v Video, wait time.Duration) (*Video, error) {
	if err := v.Validate(); err != nil {
		return nil, NewErrVideoAPI(err)
	}

	ingested, err := client.SubmitAndAwait(ctx, a.client, client.Await[Video]{
		Resource: "video",
		Endpoint: resourcePath,
		Payload:  v,
		Terminal: func(v *Video) bool { return v.Status.Terminal() },
		Resolve: client.ByLookup(func(current *Video) string {
			if current.Key != "" {
				return current.Key
			}
			return v.LookupKey()
		}, a.find),
		Timeout: wait,
	})
	if err != nil {
		return nil, NewErrVideoAPI(err)
	}
	return ingested, nil
}

// Find returns the video filed under key.
func (a *API) Find(ctx context.Context, key string) (*Video, error) {
	if key == "" {
		return nil, NewErrVideoAPI(client.NewErrValidation("a key is needed to find a video"))
	}
	v, err := a.find(ctx, key)
	if err != nil {
		return nil, NewErrVideoAPI(err)
	}
	return v, nil
}

func (a *API) find(ctx context.Context, key string) (*Video, error) {
	resp, err := a.client.GetResource(ctx, fmt.Sprintf("%s?key=%s", resourcePath, url.QueryEscape(key)))
	if err != nil {
		return nil, err
	}
	videos, err := client.Decode[[]Video](resp)
	if err != nil {
		return nil, err
	}

	switch len(videos) {
	case 0:
		return nil, NewErrVideoNotFound(key)
	case 1:
	default:
		a.client.Logger().Warnw("several videos share the same key, using the first one", "key", key, "matches", len(videos))
	}
	return &videos[0], nil
}
