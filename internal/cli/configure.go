package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/openreal2sim/review-dashboard/internal/client"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type ConfigureOptions struct {
	GlobalOptions

	out io.Writer
}

func DefaultConfigureOptions() *ConfigureOptions {
	return &ConfigureOptions{
		GlobalOptions: DefaultGlobalOptions(),
	}
}

func NewCmdConfigure() *cobra.Command {
	o := DefaultConfigureOptions()
	cmd := &cobra.Command{
		Use:   "configure --server-url URL",
		Short: "Write the client config file.",
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

func (o *ConfigureOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)
}

func (o *ConfigureOptions) Complete(cmd *cobra.Command, args []string) error {
	if err := o.GlobalOptions.Complete(cmd, args); err != nil {
		return err
	}
	o.out = cmd.OutOrStdout()
	return nil
}

func (o *ConfigureOptions) Validate(args []string) error {
	if o.ServerUrl == "" {
		return fmt.Errorf("--server-url is required")
	}
	return nil
}

func (o *ConfigureOptions) Run(ctx context.Context, args []string) error {
	if err := client.WriteConfig(o.ConfigFilePath, o.ServerUrl); err != nil {
		return err
	}
	// read it back so a malformed url is reported now
	if _, err := client.ParseConfigFile(o.ConfigFilePath); err != nil {
		return err
	}
	fmt.Fprintf(o.out, "config written to %s\n", o.ConfigFilePath)
	return nil
}
