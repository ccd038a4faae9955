package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/safestream/safestream-go/pkg/version"
)

type VersionOptions struct {
	Output string
}

func DefaultVersionOptions() *VersionOptions {
	return &VersionOptions{
		Output: "",
	}
}

func NewCmdVersion() *cobra.Command {
	o := DefaultVersionOptions()
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print SafeStream CLI version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(o.Output); err != nil {
				return err
			}
			return o.Run(cmd, args)
		},
	}
	o.Bind(cmd.Flags())
	return cmd
}

func (o *VersionOptions) Bind(fs *pflag.FlagSet) {
	bindOutput(fs, &o.Output)
}

func (o *VersionOptions) Run(cmd *cobra.Command, args []string) error {
	versionInfo := version.Get()
	if o.Output == "" {
		fmt.Fprintf(cmd.OutOrStdout(), "SafeStream CLI Version: %s\n", versionInfo.String())
		return nil
	}
	return printResource(cmd.OutOrStdout(), o.Output, versionInfo, func(*tabwriter.Writer) {})
}
