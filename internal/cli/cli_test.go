package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/safestream/safestream-go/internal/cli"
	"github.com/safestream/safestream-go/internal/testutil/fakeapi"
	"github.com/safestream/safestream-go/pkg/safestream/client"
	"github.com/safestream/safestream-go/pkg/safestream/video"
	"github.com/safestream/safestream-go/pkg/safestream/watermark"
)

var _ = Describe("cli", func() {
	var (
		server     *fakeapi.Server
		configPath string
		out        *bytes.Buffer
	)

	run := func(cmd *cobra.Command, args ...string) error {
		cmd.SetArgs(append([]string{}, args...))
		cmd.SetOut(out)
		cmd.SetErr(out)
		return cmd.Execute()
	}

	connection := func() []string {
		return []string{"--config", configPath, "--api-key", fakeapi.APIKey, "--host", server.Service().Host}
	}

	BeforeEach(func() {
		server = fakeapi.New()
		configPath = filepath.Join(GinkgoT().TempDir(), "client.yaml")
		out = &bytes.Buffer{}
	})

	AfterEach(func() {
		server.Close()
	})

	Context("video", func() {
		It("creates a video and prints it as json", func() {
			server.SetVideoPendingPolls(0)

			args := append([]string{"create", "--source-url", "https://cdn.example.com/trailer.mp4", "--key", "trailer",
				"--tag", "promo", "--tag", "2024", "--no-encryption", "--wait", "5s", "-o", "json"}, connection()...)
			Expect(run(cli.NewCmdVideo(), args...)).To(Succeed())

			var v video.Video
			Expect(json.Unmarshal(out.Bytes(), &v)).To(Succeed())
			Expect(v.Key).To(Equal("trailer"))
			Expect(v.Status).To(Equal(video.StatusIngested))

			sent := server.LastVideo()
			Expect(sent.Tags).To(Equal([]string{"promo", "2024"}))
			Expect(sent.Encrypt).To(BeFalse())
			Expect(sent.AllowHMACAuth).To(BeTrue())
		})

		It("requires a source url", func() {
			err := run(cli.NewCmdVideo(), append([]string{"create"}, connection()...)...)
			Expect(err).ToNot(BeNil())
			Expect(err.Error()).To(ContainSubstring("--source-url is required"))
			Expect(server.TotalRequests()).To(Equal(0))
		})

		It("prints a video as a table", func() {
			server.AddVideo(video.New("https://cdn.example.com/trailer.mp4").WithKey("trailer").WithName("Trailer"))

			Expect(run(cli.NewCmdVideo(), append([]string{"get", "trailer"}, connection()...)...)).To(Succeed())
			Expect(out.String()).To(ContainSubstring("KEY"))
			Expect(out.String()).To(ContainSubstring("trailer"))
			Expect(out.String()).To(ContainSubstring("Trailer"))
		})

		It("rejects an unknown output format", func() {
			err := run(cli.NewCmdVideo(), append([]string{"get", "trailer", "-o", "xml"}, connection()...)...)
			Expect(err).ToNot(BeNil())
			Expect(err.Error()).To(ContainSubstring("output format must be one of"))
		})
	})

	Context("watermark", func() {
		It("creates a watermark and prints it as yaml", func() {
			server.SetWatermarkPendingPolls(0)

			args := append([]string{"create", "trailer", "--text", "jane@example.com", "--y", "0.9",
				"--vertical-alignment", "BOTTOM", "-o", "yaml"}, connection()...)
			Expect(run(cli.NewCmdWatermark(), args...)).To(Succeed())

			var result watermark.Result
			Expect(yaml.Unmarshal(out.Bytes(), &result)).To(Succeed())
			Expect(result.Status).To(Equal(watermark.StatusReady))
			Expect(result.Key).To(Equal("trailer"))

			settings := server.LastWatermarkRequest()["settings"].(map[string]any)
			Expect(settings).ToNot(HaveKey("saturation"))
			first := settings["watermarks"].([]any)[0].(map[string]any)
			Expect(first).To(HaveKeyWithValue("content", "jane@example.com"))
			Expect(first).To(HaveKeyWithValue("verticalAlignment", "BOTTOM"))
		})

		It("follows a rendition through its self link", func() {
			server.SetWatermarkPendingPolls(-1)
			Expect(run(cli.NewCmdWatermark(), append([]string{"create", "trailer", "--text", "x", "--wait", "0", "-o", "json"}, connection()...)...)).To(Succeed())
			var created watermark.Result
			Expect(json.Unmarshal(out.Bytes(), &created)).To(Succeed())
			Expect(created.Status).To(Equal(watermark.StatusPending))

			out.Reset()
			Expect(run(cli.NewCmdWatermark(), append([]string{"get", created.Href, "-o", "json"}, connection()...)...)).To(Succeed())
			var fetched watermark.Result
			Expect(json.Unmarshal(out.Bytes(), &fetched)).To(Succeed())
			Expect(fetched.ID).To(Equal(created.ID))
		})

		It("sends encoding changes without any watermark", func() {
			server.SetWatermarkPendingPolls(0)

			Expect(run(cli.NewCmdWatermark(), append([]string{"create", "trailer", "--saturation", "0", "-o", "json"}, connection()...)...)).To(Succeed())
			settings := server.LastWatermarkRequest()["settings"].(map[string]any)
			Expect(settings).To(HaveKeyWithValue("saturation", 0.0))
			Expect(settings).ToNot(HaveKey("watermarks"))
		})

		It("refuses a request that changes nothing", func() {
			err := run(cli.NewCmdWatermark(), append([]string{"create", "trailer"}, connection()...)...)
			Expect(err).ToNot(BeNil())
			Expect(err.Error()).To(ContainSubstring("nothing to change"))
			Expect(server.TotalRequests()).To(Equal(0))
		})

		It("reports invalid watermark settings", func() {
			err := run(cli.NewCmdWatermark(), append([]string{"create", "trailer", "--text", "x", "--font-opacity", "2"}, connection()...)...)
			Expect(err).ToNot(BeNil())
			Expect(err.Error()).To(ContainSubstring("fontOpacity"))
			Expect(server.TotalRequests()).To(Equal(0))
		})
	})

	Context("config", func() {
		It("writes a config file used by later commands", func() {
			Expect(run(cli.NewCmdConfig(), "init", "--config", configPath, "--api-key", fakeapi.APIKey, "--host", server.Service().Host)).To(Succeed())
			Expect(out.String()).To(ContainSubstring("Config written to"))

			c, err := client.ParseConfigFile(configPath)
			Expect(err).To(BeNil())
			Expect(c.APIKey).To(Equal(fakeapi.APIKey))
			Expect(c.Service.Host).To(Equal(server.Service().Host))

			server.AddVideo(video.New("https://cdn.example.com/trailer.mp4").WithKey("trailer"))
			out.Reset()
			Expect(run(cli.NewCmdVideo(), "get", "trailer", "--config", configPath, "-o", "json")).To(Succeed())
			Expect(out.String()).To(ContainSubstring(`"key":"trailer"`))
		})

		It("does not overwrite an existing config file without --force", func() {
			Expect(os.WriteFile(configPath, []byte("apiKey: old\n"), 0600)).To(Succeed())

			err := run(cli.NewCmdConfig(), "init", "--config", configPath, "--api-key", "new")
			Expect(err).ToNot(BeNil())
			Expect(err.Error()).To(ContainSubstring("already exists"))

			Expect(run(cli.NewCmdConfig(), "init", "--config", configPath, "--api-key", "new", "--force")).To(Succeed())
			c, err := client.ParseConfigFile(configPath)
			Expect(err).To(BeNil())
			Expect(c.APIKey).To(Equal("new"))
		})
	})

	Context("version", func() {
		It("prints the version", func() {
			Expect(run(cli.NewCmdVersion())).To(Succeed())
			Expect(out.String()).To(ContainSubstring("SafeStream CLI Version:"))
		})
	})
})
