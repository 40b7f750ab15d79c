package main

import (
	"os"

	"github.com/openreal2sim/review-dashboard/internal/cli"
	"github.com/spf13/cobra"
)

func main() {
	command := NewReviewCtlCommand()
	if err := command.Execute(); err != nil {
		os.Exit(1)
	}
}

func NewReviewCtlCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reviewctl [flags] [options]",
		Short: "reviewctl labels and exports reconstructions of the review service.",
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
			os.Exit(1)
		},
	}
	cmd.AddCommand(cli.NewCmdGet())
	cmd.AddCommand(cli.NewCmdLabel())
	cmd.AddCommand(cli.NewCmdDelete())
	cmd.AddCommand(cli.NewCmdStats())
	cmd.AddCommand(cli.NewCmdExport())
	cmd.AddCommand(cli.NewCmdConfigure())

	return cmd
}
