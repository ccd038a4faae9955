package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/safestream/safestream-go/pkg/safestream/client"
)

func NewCmdConfig() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the client config file",
	}
	cmd.AddCommand(NewCmdConfigInit())
	return cmd
}

type ConfigInitOptions struct {
	GlobalOptions

	Force bool
}

func DefaultConfigInitOptions() *ConfigInitOptions {
	return &ConfigInitOptions{
		GlobalOptions: DefaultGlobalOptions(),
	}
}

func NewCmdConfigInit() *cobra.Command {
	o := DefaultConfigInitOptions()
	cmd := &cobra.Command{
		Use:   "init --api-key KEY",
		Short: "Write the client config file from flags and environment",
		Args:  cobra.NoArgs,
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

func (o *ConfigInitOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)
	fs.BoolVarP(&o.Force, "force", "f", o.Force, "Overwrite an existing config file")
}

func (o *ConfigInitOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	if _, err := os.Stat(o.ConfigFilePath); err == nil && !o.Force {
		return fmt.Errorf("config file %s already exists, use --force to overwrite it", o.ConfigFilePath)
	}
	return nil
}

func (o *ConfigInitOptions) Run(ctx context.Context, args []string) error {
	cfg, err := o.overrides().Apply(client.NewDefault())
	if err != nil {
		return err
	}
	if err := client.WriteConfig(o.ConfigFilePath, cfg.APIKey, cfg.Service); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	fmt.Fprintf(o.out, "Config written to %s\n", o.ConfigFilePath)
	return nil
}
