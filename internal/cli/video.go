package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/safestream/safestream-go/pkg/safestream/storage"
	"github.com/safestream/safestream-go/pkg/safestream/video"
)

func NewCmdVideo() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "video",
		Short: "Ingest and look up videos",
	}
	cmd.AddCommand(NewCmdCreateVideo())
	cmd.AddCommand(NewCmdGetVideo())
	return cmd
}

type CreateVideoOptions struct {
	GlobalOptions

	SourceURL     string
	Key           string
	Name          string
	Tags          []string
	TargetBitRate string
	NoHMACAuth    bool
	NoEncryption  bool
	Wait          time.Duration

	S3Bucket    string
	S3Region    string
	S3AccessKey string
	S3SecretKey string

	Output string
}

func DefaultCreateVideoOptions() *CreateVideoOptions {
	return &CreateVideoOptions{
		GlobalOptions: DefaultGlobalOptions(),
	}
}

func NewCmdCreateVideo() *cobra.Command {
	o := DefaultCreateVideoOptions()
	cmd := &cobra.Command{
		Use:     "create --source-url URL",
		Short:   "Ingest a video",
		Example: "  safestream video create --source-url https://cdn.example.com/trailer.mp4 --key trailer --wait 5m",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(cmd, args); err != nil {
				return err
			}
			if err := o.Validate(args); err != nil {
				return err
			}
			return o.Run(cmd.Context(), args)
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	return cmd
}

func (o *CreateVideoOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.StringVar(&o.SourceURL, "source-url", o.SourceURL, "http or https URL SafeStream downloads the video from")
	fs.StringVar(&o.Key, "key", o.Key, "Key to file the video under. Defaults to the source URL")
	fs.StringVar(&o.Name, "name", o.Name, "Display name of the video")
	fs.StringSliceVar(&o.Tags, "tag", o.Tags, "Tag to attach to the video. Can be repeated")
	fs.StringVar(&o.TargetBitRate, "target-bit-rate", o.TargetBitRate, "Target bit rate, e.g. 4000k")
	fs.BoolVar(&o.NoHMACAuth, "no-hmac-auth", o.NoHMACAuth, "Disable HMAC authentication of the video URLs")
	fs.BoolVar(&o.NoEncryption, "no-encryption", o.NoEncryption, "Disable encryption of the video")
	fs.DurationVar(&o.Wait, "wait", o.Wait, "How long to wait for the ingest to finish. 0 returns right away")
	fs.StringVar(&o.S3Bucket, "s3-bucket", o.S3Bucket, "Store the video in this S3 bucket instead of SafeStream storage")
	fs.StringVar(&o.S3Region, "s3-region", o.S3Region, "Region of the S3 bucket")
	fs.StringVar(&o.S3AccessKey, "s3-access-key", o.S3AccessKey, "Access key of the S3 bucket")
	fs.StringVar(&o.S3SecretKey, "s3-secret-key", o.S3SecretKey, "Secret key of the S3 bucket")
	bindOutput(fs, &o.Output)
}

func (o *CreateVideoOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	if o.SourceURL == "" {
		return fmt.Errorf("--source-url is required")
	}
	if o.S3Bucket == "" && (o.S3Region != "" || o.S3AccessKey != "" || o.S3SecretKey != "") {
		return fmt.Errorf("--s3-bucket is required when other s3 flags are set")
	}
	return validateOutput(o.Output)
}

func (o *CreateVideoOptions) Video() video.Video {
	v := video.New(o.SourceURL).
		WithKey(o.Key).
		WithName(o.Name).
		WithTags(o.Tags...).
		WithTargetBitRate(o.TargetBitRate)
	if o.NoHMACAuth {
		v = v.WithoutHMACAuth()
	}
	if o.NoEncryption {
		v = v.WithoutEncryption()
	}
	if o.S3Bucket != "" {
		v = v.WithConfiguration(storage.NewS3(o.S3Bucket, o.S3Region, o.S3AccessKey, o.S3SecretKey))
	}
	return v
}

func (o *CreateVideoOptions) Run(ctx context.Context, args []string) error {
	api, err := o.API()
	if err != nil {
		return err
	}

	v, err := api.Video().CreateAndWait(ctx, o.Video(), o.Wait)
	if err != nil {
		return fmt.Errorf("creating video: %w", err)
	}
	return printResource(o.out, o.Output, v, func(w *tabwriter.Writer) { printVideosTable(w, *v) })
}

type GetVideoOptions struct {
	GlobalOptions

	Output string
}

func DefaultGetVideoOptions() *GetVideoOptions {
	return &GetVideoOptions{
		GlobalOptions: DefaultGlobalOptions(),
	}
}

func NewCmdGetVideo() *cobra.Command {
	o := DefaultGetVideoOptions()
	cmd := &cobra.Command{
		Use:   "get KEY",
		Short: "Display the video filed under KEY",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(cmd, args); err != nil {
				return err
			}
			if err := o.Validate(args); err != nil {
				return err
			}
			return o.Run(cmd.Context(), args)
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	return cmd
}

func (o *GetVideoOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)
	bindOutput(fs, &o.Output)
}

func (o *GetVideoOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	return validateOutput(o.Output)
}

func (o *GetVideoOptions) Run(ctx context.Context, args []string) error {
	api, err := o.API()
	if err != nil {
		return err
	}

	v, err := api.Video().Find(ctx, args[0])
	if err != nil {
		return fmt.Errorf("reading video %s: %w", args[0], err)
	}
	return printResource(o.out, o.Output, v, func(w *tabwriter.Writer) { printVideosTable(w, *v) })
}

func printVideosTable(w *tabwriter.Writer, videos ...video.Video) {
	fmt.Fprintln(w, "ID\tKEY\tNAME\tSTATUS\tTAGS")
	for _, v := range videos {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", v.ID, v.Key, v.Name, v.Status, strings.Join(v.Tags, ","))
	}
}
