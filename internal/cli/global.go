package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/openreal2sim/review-dashboard/internal/client"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const defaultServerUrl = "http://localhost:3443"

type GlobalOptions struct {
	ConfigFilePath string
	ServerUrl      string
}

func DefaultGlobalOptions() GlobalOptions {
	return GlobalOptions{
		ConfigFilePath: client.DefaultClientConfigPath(),
	}
}

func (o *GlobalOptions) Bind(fs *pflag.FlagSet) {
	fs.StringVarP(&o.ConfigFilePath, "config", "c", o.ConfigFilePath, "Path to the client config file")
	fs.StringVarP(&o.ServerUrl, "server-url", "u", o.ServerUrl, "Address of the server, overrides the config file")
}

func (o *GlobalOptions) Complete(cmd *cobra.Command, args []string) error {
	return nil
}

func (o *GlobalOptions) Validate(args []string) error {
	return nil
}

// Client builds an API client from --server-url, then the config file, then the local default.
func (o *GlobalOptions) Client() (*client.Client, error) {
	if o.ServerUrl != "" {
		return newClientFor(o.ServerUrl)
	}

	c, err := client.NewFromConfigFile(o.ConfigFilePath)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return newClientFor(defaultServerUrl)
}

func newClientFor(server string) (*client.Client, error) {
	cfg := client.NewDefault()
	cfg.Service.Server = server
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return client.NewFromConfig(cfg)
}

func printErr(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}
