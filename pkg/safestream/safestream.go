// Package safestream is the entry point of the SafeStream SDK.
//
//	api, err := safestream.New(apiKey)
//	v, err := api.Video().CreateAndWait(ctx, video.New(sourceURL).WithKey("trailer"), 5*time.Minute)
//	r, err := api.Watermark().CreateAndWait(ctx, v.Key, watermark.NewTextConfiguration("jane@example.com"))
package safestream

import (
	"github.com/safestream/safestream-go/pkg/safestream/client"
	"github.com/safestream/safestream-go/pkg/safestream/video"
	"github.com/safestream/safestream-go/pkg/safestream/watermark"
)

type API struct {
	client    *client.Client
	video     *video.API
	watermark *watermark.API
}

// New returns an API talking to the default SafeStream endpoint.
func New(apiKey string, opts ...client.Option) (*API, error) {
	c, err := client.New(apiKey, opts...)
	if err != nil {
		return nil, err
	}
	return newAPI(c), nil
}

func NewFromConfig(config *client.Config, opts ...client.Option) (*API, error) {
	c, err := client.NewFromConfig(config, opts...)
	if err != nil {
		return nil, err
	}
	return newAPI(c), nil
}

func newAPI(c *client.Client) *API {
	return &API{
		client:    c,
		video:     video.NewAPI(c),
		watermark: watermark.NewAPI(c),
	}
}

func (a *API) Client() *client.Client {
	return a.client
}

func (a *API) Video() *video.API {
	return a.video
}

func (a *API) Watermark() *watermark.API {
	return a.watermark
}
