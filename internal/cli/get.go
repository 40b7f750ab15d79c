package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	api "github.com/openreal2sim/review-dashboard/api/v1alpha1"
	"github.com/openreal2sim/review-dashboard/internal/client"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/thoas/go-funk"
	"sigs.k8s.io/yaml"
)

const (
	jsonFormat = "json"
	yamlFormat = "yaml"
)

var (
	legalOutputTypes = []string{jsonFormat, yamlFormat}
)

type GetOptions struct {
	GlobalOptions

	Output string
	Filter client.ListFilter

	out io.Writer
}

func DefaultGetOptions() *GetOptions {
	return &GetOptions{
		GlobalOptions: DefaultGlobalOptions(),
	}
}

func NewCmdGet() *cobra.Command {
	o := DefaultGetOptions()
	cmd := &cobra.Command{
		Use:   "get (TYPE | TYPE/NAME | TYPE NAME)",
		Short: "Display one or many reconstructions.",
		Args:  cobra.RangeArgs(1, 2),
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

func (o *GetOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.StringVarP(&o.Output, "output", "o", o.Output, fmt.Sprintf("Output format. One of: (%s).", strings.Join(legalOutputTypes, ", ")))
	fs.StringVar(&o.Filter.Author, "author", o.Filter.Author, "Only list reconstructions of this author")
	fs.StringVar(&o.Filter.Week, "week", o.Filter.Week, "Only list reconstructions of this week")
	fs.StringVar(&o.Filter.Status, "status", o.Filter.Status, "Only list reconstructions with this status")
	fs.StringVar(&o.Filter.Pose, "pose", o.Filter.Pose, "Only list reconstructions with this pose label")
}

func (o *GetOptions) Complete(cmd *cobra.Command, args []string) error {
	if err := o.GlobalOptions.Complete(cmd, args); err != nil {
		return err
	}
	o.out = cmd.OutOrStdout()
	return nil
}

func (o *GetOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}

	if _, _, err := kindAndName(args); err != nil {
		return err
	}

	if len(o.Output) > 0 && !funk.ContainsString(legalOutputTypes, o.Output) {
		return fmt.Errorf("output format must be one of %s", strings.Join(legalOutputTypes, ", "))
	}

	if o.Filter.Status != "" && o.Filter.Status != "all" && !api.ReconstructionStatus(o.Filter.Status).IsValid() {
		return fmt.Errorf("invalid status %q", o.Filter.Status)
	}
	if o.Filter.Pose != "" && o.Filter.Pose != "all" && !api.PoseStatus(o.Filter.Pose).IsValid() {
		return fmt.Errorf("invalid pose %q", o.Filter.Pose)
	}

	return nil
}

func (o *GetOptions) Run(ctx context.Context, args []string) error {
	c, err := o.Client()
	if err != nil {
		return fmt.Errorf("creating client: %w", err)
	}

	kind, name, err := kindAndName(args)
	if err != nil {
		return err
	}

	if name != "" {
		rec, err := c.Get(ctx, name)
		if err != nil {
			return fmt.Errorf("reading %s/%s: %w", kind, name, err)
		}
		return o.print(api.ReconstructionList{*rec}, rec)
	}

	recs, err := c.List(ctx, o.Filter)
	if err != nil {
		return fmt.Errorf("listing %s: %w", plural(kind), err)
	}
	return o.print(recs, recs)
}

// print renders value as json or yaml, or recs as a table when no output format is set.
func (o *GetOptions) print(recs api.ReconstructionList, value any) error {
	switch o.Output {
	case jsonFormat:
		marshalled, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("marshalling resource: %w", err)
		}
		fmt.Fprintf(o.out, "%s\n", string(marshalled))
		return nil
	case yamlFormat:
		marshalled, err := yaml.Marshal(value)
		if err != nil {
			return fmt.Errorf("marshalling resource: %w", err)
		}
		fmt.Fprintf(o.out, "%s\n", string(marshalled))
		return nil
	default:
		w := tabwriter.NewWriter(o.out, 0, 8, 1, '\t', 0)
		printReconstructionsTable(w, recs...)
		return w.Flush()
	}
}

func printReconstructionsTable(w *tabwriter.Writer, recs ...api.Reconstruction) {
	fmt.Fprintln(w, "NAME\tWEEK\tAUTHOR\tSTATUS\tPOSE\tGRIPPED")
	for _, r := range recs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%t\n", r.Name, r.Week, r.Author, r.Status, r.Pose, r.Gripped)
	}
}

// kindAndName accepts "reconstructions", "reconstruction/NAME" and "reconstruction NAME".
func kindAndName(args []string) (string, string, error) {
	kind, name, err := parseAndValidateKindName(args[0])
	if err != nil {
		return "", "", err
	}
	if len(args) > 1 {
		if name != "" {
			return "", "", fmt.Errorf("name given twice: %q and %q", name, args[1])
		}
		name = args[1]
	}
	return kind, name, nil
}
