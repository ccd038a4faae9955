package client_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/safestream/safestream-go/internal/polling"
	"github.com/safestream/safestream-go/internal/testutil/fakeapi"
	"github.com/safestream/safestream-go/pkg/requestid"
	"github.com/safestream/safestream-go/pkg/safestream/client"
)

type job struct {
	ID     string `json:"id"`
	Key    string `json:"key"`
	Status string `json:"status"`
	Href   string `json:"href"`
}

func newClient(server *fakeapi.Server, opts ...client.Option) *client.Client {
	opts = append([]client.Option{
		client.WithCredentialCache(client.NewCredentialCache()),
	}, opts...)
	c, err := client.NewFromConfig(server.ClientConfig(), opts...)
	Expect(err).To(BeNil())
	return c
}

var _ = Describe("client", func() {
	var server *fakeapi.Server

	BeforeEach(func() {
		DeferCleanup(polling.Override(10 * time.Millisecond))
		server = fakeapi.New()
	})

	AfterEach(func() {
		server.Close()
	})

	Context("new", func() {
		It("rejects an invalid configuration", func() {
			_, err := client.New("")
			Expect(err).ToNot(BeNil())
			Expect(err.Error()).To(ContainSubstring("no api key found"))
		})

		It("builds resource urls from the service", func() {
			c, err := client.New("key", client.WithService(client.Service{Protocol: client.ProtocolHTTPS, Host: "api.example.com", Version: "0.2"}))
			Expect(err).To(BeNil())
			Expect(c.ResourceURL("videos")).To(Equal("https://api.example.com/0.2/videos"))
		})

		It("shares the credential between clients of the same endpoint and key", func() {
			first, err := client.NewFromConfig(server.ClientConfig())
			Expect(err).To(BeNil())
			second, err := client.NewFromConfig(server.ClientConfig())
			Expect(err).To(BeNil())
			Expect(first.Credentials()).To(BeIdenticalTo(second.Credentials()))

			_, err = first.GetResource(context.TODO(), "videos?key=a")
			Expect(err).To(BeNil())
			_, err = second.GetResource(context.TODO(), "videos?key=b")
			Expect(err).To(BeNil())
			Expect(server.Requests(fakeapi.RouteToken)).To(Equal(1))
		})
	})

	Context("requests", func() {
		It("authenticates with the api key once and sends the bearer token afterwards", func() {
			c := newClient(server)

			for i := 0; i < 3; i++ {
				_, err := c.GetResource(context.TODO(), "videos?key=k")
				Expect(err).To(BeNil())
			}

			Expect(server.Requests(fakeapi.RouteToken)).To(Equal(1))
			Expect(server.Requests(fakeapi.RouteFindVideos)).To(Equal(3))
			authorizations := server.Authorizations()
			Expect(authorizations).To(HaveLen(4))
			Expect(authorizations[0]).To(BeEmpty())
			for _, a := range authorizations[1:] {
				Expect(a).To(Equal("Bearer " + server.Token()))
			}
		})

		It("collapses concurrent first requests into a single token request", func() {
			server.SetTokenDelay(100 * time.Millisecond)
			c := newClient(server)

			var wg sync.WaitGroup
			for i := 0; i < 10; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					defer GinkgoRecover()
					_, err := c.GetResource(context.TODO(), "videos?key=k")
					Expect(err).To(BeNil())
				}()
			}
			wg.Wait()

			Expect(server.Requests(fakeapi.RouteToken)).To(Equal(1))
			Expect(server.Requests(fakeapi.RouteFindVideos)).To(Equal(10))
		})

		It("sends json bodies and request ids", func() {
			c := newClient(server)
			ctx := requestid.ToContext(context.TODO(), "req-123")

			_, err := c.PostResource(ctx, "watermark", map[string]any{"key": "k"})
			Expect(err).To(BeNil())
			Expect(server.LastContentType()).To(Equal("application/json"))
			Expect(server.LastWatermarkRequest()).To(HaveKeyWithValue("key", "k"))
			Expect(server.RequestIDs()).To(ContainElement("req-123"))
		})

		It("returns error statuses as ErrHTTP with the body verbatim", func() {
			server.Override(fakeapi.RouteFindVideos, http.StatusServiceUnavailable, `{"message":"down for maintenance"}`)
			c := newClient(server)

			_, err := c.GetResource(context.TODO(), "videos?key=k")
			var httpErr *client.ErrHTTP
			Expect(errors.As(err, &httpErr)).To(BeTrue())
			Expect(httpErr.StatusCode).To(Equal(http.StatusServiceUnavailable))
			Expect(httpErr.Body).To(Equal(`{"message":"down for maintenance"}`))
		})

		It("fails with ErrAuth without caching when the api key is refused", func() {
			server.Override(fakeapi.RouteToken, http.StatusUnauthorized, `{"message":"bad key"}`)
			c := newClient(server)

			_, err := c.GetResource(context.TODO(), "videos?key=k")
			var authErr *client.ErrAuth
			Expect(errors.As(err, &authErr)).To(BeTrue())
			var httpErr *client.ErrHTTP
			Expect(errors.As(err, &httpErr)).To(BeTrue())
			Expect(httpErr.StatusCode).To(Equal(http.StatusUnauthorized))
			Expect(server.Requests(fakeapi.RouteFindVideos)).To(Equal(0))
			_, cached := c.Credentials().Cached()
			Expect(cached).To(BeFalse())

			server.ClearOverride(fakeapi.RouteToken)
			_, err = c.GetResource(context.TODO(), "videos?key=k")
			Expect(err).To(BeNil())
			Expect(server.Requests(fakeapi.RouteToken)).To(Equal(2))
		})

		It("fails with ErrAuth when the token response has no token", func() {
			server.Override(fakeapi.RouteToken, http.StatusOK, `{"access":"nope"}`)
			c := newClient(server)

			_, err := c.Token(context.TODO())
			var authErr *client.ErrAuth
			Expect(errors.As(err, &authErr)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("no token field"))
		})

		It("keeps using a token the server no longer accepts", func() {
			c := newClient(server)
			_, err := c.GetResource(context.TODO(), "videos?key=k")
			Expect(err).To(BeNil())

			server.SetToken("rotated")
			_, err = c.GetResource(context.TODO(), "videos?key=k")
			var httpErr *client.ErrHTTP
			Expect(errors.As(err, &httpErr)).To(BeTrue())
			Expect(httpErr.StatusCode).To(Equal(http.StatusUnauthorized))
			Expect(server.Requests(fakeapi.RouteToken)).To(Equal(1))
		})

		It("returns ErrTransport when the server cannot be reached", func() {
			c := newClient(server)
			_, err := c.Token(context.TODO())
			Expect(err).To(BeNil())
			server.Close()

			_, err = c.GetResource(context.TODO(), "videos?key=k")
			var transportErr *client.ErrTransport
			Expect(errors.As(err, &transportErr)).To(BeTrue())
		})
	})

	Context("decode", func() {
		It("distinguishes an empty body from a malformed one", func() {
			c := newClient(server)

			server.Override(fakeapi.RouteFindVideos, http.StatusOK, "")
			resp, err := c.GetResource(context.TODO(), "videos?key=k")
			Expect(err).To(BeNil())
			_, err = client.Decode[[]job](resp)
			var emptyErr *client.ErrEmptyBody
			Expect(errors.As(err, &emptyErr)).To(BeTrue())

			server.Override(fakeapi.RouteFindVideos, http.StatusOK, `{"not":"a list"}`)
			resp, err = c.GetResource(context.TODO(), "videos?key=k")
			Expect(err).To(BeNil())
			_, err = client.Decode[[]job](resp)
			var decodeErr *client.ErrDecode
			Expect(errors.As(err, &decodeErr)).To(BeTrue())
			Expect(errors.As(err, &emptyErr)).To(BeFalse())
		})
	})

	Context("resolve url", func() {
		It("keeps absolute links and resolves relative ones against the api root", func() {
			c := newClient(server)

			abs, err := c.ResolveURL("https://cdn.example.com/watermark/1")
			Expect(err).To(BeNil())
			Expect(abs).To(Equal("https://cdn.example.com/watermark/1"))

			rel, err := c.ResolveURL("watermark/1")
			Expect(err).To(BeNil())
			Expect(rel).To(Equal(server.URL + "/0.1/watermark/1"))
		})
	})
})
