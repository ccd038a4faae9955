package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/safestream/safestream-go/pkg/safestream/watermark"
)

func NewCmdWatermark() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watermark",
		Short: "Create and follow watermarked renditions",
	}
	cmd.AddCommand(NewCmdCreateWatermark())
	cmd.AddCommand(NewCmdGetWatermark())
	return cmd
}

type CreateWatermarkOptions struct {
	GlobalOptions

	Watermark  watermark.Configuration
	Texts      []string
	Saturation float32
	Resolution string
	BitRate    string
	Wait       time.Duration

	Output string
}

func DefaultCreateWatermarkOptions() *CreateWatermarkOptions {
	return &CreateWatermarkOptions{
		GlobalOptions: DefaultGlobalOptions(),
		Watermark:     watermark.NewConfiguration(),
		Saturation:    -1,
		Wait:          watermark.DefaultTimeout,
	}
}

func NewCmdCreateWatermark() *cobra.Command {
	o := DefaultCreateWatermarkOptions()
	cmd := &cobra.Command{
		Use:     "create KEY [--text TEXT]...",
		Short:   "Watermark the video filed under KEY",
		Example: "  safestream watermark create trailer --text jane@example.com --y 0.9 --vertical-alignment BOTTOM",
		Args:    cobra.ExactArgs(1),
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

func (o *CreateWatermarkOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	w := &o.Watermark
	fs.StringSliceVar(&o.Texts, "text", o.Texts, "Text to burn into the video. Repeat for several watermarks sharing the style flags")
	fs.StringVar((*string)(&w.Type), "type", string(w.Type), "Watermark type (TEXT or IMAGE). IMAGE takes the image URL as --text")
	fs.Float32Var(&w.X, "x", w.X, "Horizontal position, from 0 to 1")
	fs.Float32Var(&w.Y, "y", w.Y, "Vertical position, from 0 to 1")
	fs.Float32Var(&w.FontSize, "font-size", w.FontSize, "Font size relative to the video height")
	fs.Float32Var(&w.FontOpacity, "font-opacity", w.FontOpacity, "Font opacity, from 0 to 1")
	fs.StringVar(&w.FontColor, "font-color", w.FontColor, "Font color as 0xRRGGBB")
	fs.Float32Var(&w.ShadowOpacity, "shadow-opacity", w.ShadowOpacity, "Shadow opacity, from 0 to 1")
	fs.StringVar(&w.ShadowColor, "shadow-color", w.ShadowColor, "Shadow color as 0xRRGGBB")
	fs.Float32Var(&w.ShadowOffsetX, "shadow-offset-x", w.ShadowOffsetX, "Horizontal shadow offset")
	fs.Float32Var(&w.ShadowOffsetY, "shadow-offset-y", w.ShadowOffsetY, "Vertical shadow offset")
	fs.StringVar((*string)(&w.HorizontalAlignment), "horizontal-alignment", string(w.HorizontalAlignment), "LEFT, CENTER or RIGHT")
	fs.StringVar((*string)(&w.VerticalAlignment), "vertical-alignment", string(w.VerticalAlignment), "TOP, MIDDLE or BOTTOM")
	fs.Float32Var(&o.Saturation, "saturation", o.Saturation, "Saturation of the output, from 0 to 1. Negative keeps the source saturation")
	fs.StringVar(&o.Resolution, "resolution", o.Resolution, "Target resolution of the output")
	fs.StringVar(&o.BitRate, "bit-rate", o.BitRate, "Target bit rate of the output, e.g. 4000k")
	fs.DurationVar(&o.Wait, "wait", o.Wait, "How long to wait for the rendition. 0 returns right away")
	bindOutput(fs, &o.Output)
}

func (o *CreateWatermarkOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	if len(o.Texts) == 0 && o.Saturation < 0 && o.Resolution == "" && o.BitRate == "" {
		return fmt.Errorf("nothing to change: give at least one --text, --saturation, --resolution or --bit-rate")
	}
	return validateOutput(o.Output)
}

func (o *CreateWatermarkOptions) Settings() watermark.EncodingConfiguration {
	watermarks := make([]watermark.Configuration, 0, len(o.Texts))
	for _, text := range o.Texts {
		watermarks = append(watermarks, o.Watermark.WithContent(text))
	}

	settings := watermark.NewEncodingConfiguration(watermarks...).
		WithResolution(watermark.Resolution(o.Resolution)).
		WithBitRate(o.BitRate)
	if o.Saturation >= 0 {
		settings = settings.WithSaturation(o.Saturation)
	}
	return settings
}

func (o *CreateWatermarkOptions) Run(ctx context.Context, args []string) error {
	api, err := o.API()
	if err != nil {
		return err
	}

	result, err := api.Watermark().Create(ctx, args[0], o.Settings(), o.Wait)
	if err != nil {
		return fmt.Errorf("watermarking %s: %w", args[0], err)
	}
	return printResource(o.out, o.Output, result, func(w *tabwriter.Writer) { printResultsTable(w, *result) })
}

type GetWatermarkOptions struct {
	GlobalOptions

	Output string
}

func DefaultGetWatermarkOptions() *GetWatermarkOptions {
	return &GetWatermarkOptions{
		GlobalOptions: DefaultGlobalOptions(),
	}
}

func NewCmdGetWatermark() *cobra.Command {
	o := DefaultGetWatermarkOptions()
	cmd := &cobra.Command{
		Use:   "get HREF",
		Short: "Display the current state of a watermarked rendition",
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

func (o *GetWatermarkOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)
	bindOutput(fs, &o.Output)
}

func (o *GetWatermarkOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	return validateOutput(o.Output)
}

func (o *GetWatermarkOptions) Run(ctx context.Context, args []string) error {
	api, err := o.API()
	if err != nil {
		return err
	}

	result, err := api.Watermark().Refresh(ctx, watermark.Result{Href: args[0]})
	if err != nil {
		return fmt.Errorf("reading watermark %s: %w", args[0], err)
	}
	return printResource(o.out, o.Output, result, func(w *tabwriter.Writer) { printResultsTable(w, *result) })
}

func printResultsTable(w *tabwriter.Writer, results ...watermark.Result) {
	fmt.Fprintln(w, "ID\tKEY\tSTATUS\tHREF")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.ID, r.Key, r.Status, r.Href)
	}
}
