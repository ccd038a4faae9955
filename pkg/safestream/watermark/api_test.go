package watermark_test

import (
	"context"
	"errors"
	"net/http"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/safestream/safestream-go/internal/polling"
	"github.com/safestream/safestream-go/internal/testutil/fakeapi"
	"github.com/safestream/safestream-go/pkg/safestream/client"
	"github.com/safestream/safestream-go/pkg/safestream/watermark"
)

var _ = Describe("watermark api", func() {
	var (
		server *fakeapi.Server
		api    *watermark.API
		text   watermark.Configuration
	)

	BeforeEach(func() {
		DeferCleanup(polling.Override(10 * time.Millisecond))
		server = fakeapi.New()
		c, err := client.NewFromConfig(server.ClientConfig(),
			client.WithCredentialCache(client.NewCredentialCache()),
		)
		Expect(err).To(BeNil())
		api = watermark.NewAPI(c)
		text = watermark.NewTextConfiguration("jane@example.com")
	})

	AfterEach(func() {
		server.Close()
	})

	Context("create", func() {
		It("sends the key and the encoding settings", func() {
			settings := watermark.NewEncodingConfiguration(text).WithSaturation(0.5).WithBitRate("4000k")

			_, err := api.Create(context.TODO(), "trailer", settings, 0)
			Expect(err).To(BeNil())

			body := server.LastWatermarkRequest()
			Expect(body).To(HaveKeyWithValue("key", "trailer"))
			sent, ok := body["settings"].(map[string]any)
			Expect(ok).To(BeTrue())
			Expect(sent).To(HaveKeyWithValue("saturation", 0.5))
			Expect(sent).To(HaveKeyWithValue("bitRate", "4000k"))
			Expect(sent).ToNot(HaveKey("resolution"))
			watermarks, ok := sent["watermarks"].([]any)
			Expect(ok).To(BeTrue())
			Expect(watermarks).To(HaveLen(1))
			Expect(watermarks[0]).To(HaveKeyWithValue("content", "jane@example.com"))
			Expect(watermarks[0]).To(HaveKeyWithValue("fontColor", "0xFFFFFF"))
			Expect(watermarks[0]).To(HaveKeyWithValue("horizontalAlignment", "CENTER"))
		})

		It("waits for the rendition to be ready", func() {
			server.SetWatermarkPendingPolls(2)

			res, err := api.CreateAndWait(context.TODO(), "trailer", text)
			Expect(err).To(BeNil())
			Expect(res.Status).To(Equal(watermark.StatusReady))
			Expect(res.Key).To(Equal("trailer"))
			Expect(server.Requests(fakeapi.RouteCreateWatermark)).To(Equal(1))
			Expect(server.Requests(fakeapi.RouteGetWatermark)).To(Equal(2))
		})

		It("returns the pending result when created asynchronously", func() {
			server.SetWatermarkPendingPolls(1)

			res, err := api.CreateAsync(context.TODO(), "trailer", text)
			Expect(err).To(BeNil())
			Expect(res.Status).To(Equal(watermark.StatusPending))
			Expect(res.Href).ToNot(BeEmpty())
			Expect(server.Requests(fakeapi.RouteGetWatermark)).To(Equal(0))

			refreshed, err := api.Refresh(context.TODO(), *res)
			Expect(err).To(BeNil())
			Expect(refreshed.Status).To(Equal(watermark.StatusReady))
			Expect(refreshed.ID).To(Equal(res.ID))
		})

		It("fails with a timeout when the rendition is never ready", func() {
			server.SetWatermarkPendingPolls(-1)

			_, err := api.CreateWithWatermarks(context.TODO(), "trailer", 50*time.Millisecond, text)
			var apiErr *watermark.ErrWatermarkAPI
			Expect(errors.As(err, &apiErr)).To(BeTrue())
			var timeoutErr *client.ErrTimeout
			Expect(errors.As(err, &timeoutErr)).To(BeTrue())
		})

		It("fails when the self link is gone", func() {
			server.SetWatermarkPendingPolls(-1)
			server.Override(fakeapi.RouteGetWatermark, http.StatusNotFound, `{"message":"gone"}`)

			_, err := api.CreateWithWatermarks(context.TODO(), "trailer", time.Second, text)
			var httpErr *client.ErrHTTP
			Expect(errors.As(err, &httpErr)).To(BeTrue())
			Expect(httpErr.StatusCode).To(Equal(http.StatusNotFound))
		})

		DescribeTable("rejects invalid requests before any network call",
			func(key string, watermarks []watermark.Configuration) {
				_, err := api.CreateWithWatermarks(context.TODO(), key, time.Second, watermarks...)

				var apiErr *watermark.ErrWatermarkAPI
				Expect(errors.As(err, &apiErr)).To(BeTrue())
				var validationErr *client.ErrValidation
				Expect(errors.As(err, &validationErr)).To(BeTrue())
				Expect(server.TotalRequests()).To(Equal(0))
			},
			Entry("empty key", "", []watermark.Configuration{watermark.NewTextConfiguration("x")}),
			Entry("opacity above 1", "trailer", []watermark.Configuration{watermark.NewTextConfiguration("x").WithFontOpacity(1.2)}),
			Entry("negative position", "trailer", []watermark.Configuration{watermark.NewTextConfiguration("x").WithX(-0.1)}),
			Entry("css color", "trailer", []watermark.Configuration{watermark.NewTextConfiguration("x").WithFontColor("#FFFFFF")}),
			Entry("unknown alignment", "trailer", []watermark.Configuration{watermark.NewTextConfiguration("x").WithHorizontalAlignment("JUSTIFY")}),
			Entry("unknown type", "trailer", []watermark.Configuration{watermark.NewTextConfiguration("x").WithType("VIDEO")}),
		)

		It("accepts settings that only change the encoding", func() {
			settings := watermark.NewEncodingConfiguration().WithSaturation(0).WithResolution("1280x720")

			res, err := api.Create(context.TODO(), "trailer", settings, 0)
			Expect(err).To(BeNil())
			Expect(res.Key).To(Equal("trailer"))
			Expect(server.Requests(fakeapi.RouteCreateWatermark)).To(Equal(1))

			sent, ok := server.LastWatermarkRequest()["settings"].(map[string]any)
			Expect(ok).To(BeTrue())
			Expect(sent).To(HaveKeyWithValue("saturation", 0.0))
			Expect(sent).To(HaveKeyWithValue("resolution", "1280x720"))
			Expect(sent).ToNot(HaveKey("watermarks"))
		})

		It("reports an interrupted wait when the context ends during a status request", func() {
			server.SetWatermarkPendingPolls(-1)
			server.HangRoute(fakeapi.RouteGetWatermark)
			ctx, cancel := context.WithTimeout(context.TODO(), 300*time.Millisecond)
			defer cancel()

			_, err := api.Create(ctx, "trailer", watermark.NewEncodingConfiguration(text), time.Minute)
			var apiErr *watermark.ErrWatermarkAPI
			Expect(errors.As(err, &apiErr)).To(BeTrue())
			var interrupted *client.ErrInterrupted
			Expect(errors.As(err, &interrupted)).To(BeTrue())
			var transportErr *client.ErrTransport
			Expect(errors.As(err, &transportErr)).To(BeFalse())
		})

		It("rejects a saturation above 1", func() {
			settings := watermark.NewEncodingConfiguration(text).WithSaturation(2)
			_, err := api.Create(context.TODO(), "trailer", settings, 0)
			var validationErr *client.ErrValidation
			Expect(errors.As(err, &validationErr)).To(BeTrue())
		})
	})

	Context("refresh", func() {
		It("requires a self link", func() {
			_, err := api.Refresh(context.TODO(), watermark.Result{Key: "trailer"})
			var apiErr *watermark.ErrWatermarkAPI
			Expect(errors.As(err, &apiErr)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("no self link"))
		})
	})
})
