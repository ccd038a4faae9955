package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/safestream/safestream-go/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	command := NewSafeStreamCommand()
	if err := command.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func NewSafeStreamCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "safestream [flags] [options]",
		Short: "safestream ingests videos and watermarks them with the SafeStream API.",
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
			os.Exit(1)
		},
	}
	cmd.AddCommand(cli.NewCmdVideo())
	cmd.AddCommand(cli.NewCmdWatermark())
	cmd.AddCommand(cli.NewCmdConfig())
	cmd.AddCommand(cli.NewCmdVersion())

	return cmd
}
