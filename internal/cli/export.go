package cli

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/openreal2sim/review-dashboard/internal/archive"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type ExportOptions struct {
	GlobalOptions

	Dir  string
	List bool

	out io.Writer
}

func DefaultExportOptions() *ExportOptions {
	return &ExportOptions{
		GlobalOptions: DefaultGlobalOptions(),
		Dir:           ".",
	}
}

func NewCmdExport() *cobra.Command {
	o := DefaultExportOptions()
	cmd := &cobra.Command{
		Use:   "export NAME",
		Short: "Download the simulation archive of a reconstruction.",
		Long:  "Download the simulation archive of a reconstruction as NAME.tar.gz. A truncated download is removed and reported as a failed export.",
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

func (o *ExportOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.StringVarP(&o.Dir, "dir", "d", o.Dir, "Directory the archive is written to")
	fs.BoolVar(&o.List, "list", o.List, "Print the archive entries once downloaded")
}

func (o *ExportOptions) Complete(cmd *cobra.Command, args []string) error {
	if err := o.GlobalOptions.Complete(cmd, args); err != nil {
		return err
	}
	o.out = cmd.OutOrStdout()
	return nil
}

func (o *ExportOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	if args[0] == "" || filepath.Base(args[0]) != args[0] {
		return fmt.Errorf("invalid reconstruction name %q", args[0])
	}
	info, err := os.Stat(o.Dir)
	if err != nil {
		return fmt.Errorf("output directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("output directory %q is not a directory", o.Dir)
	}
	return nil
}

func (o *ExportOptions) Run(ctx context.Context, args []string) error {
	name := args[0]

	c, err := o.Client()
	if err != nil {
		return fmt.Errorf("creating client: %w", err)
	}

	target := filepath.Join(o.Dir, name+".tar.gz")
	partial := target + ".part"

	f, err := os.Create(partial)
	if err != nil {
		return fmt.Errorf("creating %s: %w", partial, err)
	}
	defer func() {
		// no-op once renamed
		_ = os.Remove(partial)
	}()

	n, err := c.Export(ctx, name, f)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("export of %q failed: %w", name, err)
	}

	entries, err := o.verify(partial)
	if err != nil {
		printErr("export of %q is incomplete after %s", name, humanize.Bytes(uint64(n)))
		return fmt.Errorf("export of %q failed: %w", name, err)
	}

	if err := os.Rename(partial, target); err != nil {
		return fmt.Errorf("moving archive into place: %w", err)
	}

	fmt.Fprintf(o.out, "%s: %d files, %s\n", target, entries, humanize.Bytes(uint64(n)))
	return nil
}

// verify reads the archive to its trailer. A truncated stream fails with io.ErrUnexpectedEOF.
func (o *ExportOptions) verify(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	entries := 0
	err = archive.TarGzWalk(f, func(header *tar.Header, payload io.Reader, err error) error {
		if err != nil {
			return err
		}
		if _, err := io.Copy(io.Discard, payload); err != nil {
			return err
		}
		entries++
		if o.List {
			fmt.Fprintf(o.out, "%s\t%d\n", header.Name, header.Size)
		}
		return nil
	})
	return entries, err
}
