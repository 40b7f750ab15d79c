package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	api "github.com/openreal2sim/review-dashboard/api/v1alpha1"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/thoas/go-funk"
	"sigs.k8s.io/yaml"
)

type StatsOptions struct {
	GlobalOptions

	Output string
	Week   string
	Author string

	out io.Writer
}

func DefaultStatsOptions() *StatsOptions {
	return &StatsOptions{
		GlobalOptions: DefaultGlobalOptions(),
	}
}

func NewCmdStats() *cobra.Command {
	o := DefaultStatsOptions()
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Display the label distribution per author.",
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

func (o *StatsOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.StringVarP(&o.Output, "output", "o", o.Output, fmt.Sprintf("Output format. One of: (%s).", strings.Join(legalOutputTypes, ", ")))
	fs.StringVar(&o.Week, "week", o.Week, "Only count reconstructions of this week")
	fs.StringVar(&o.Author, "author", o.Author, "Only show this author")
}

func (o *StatsOptions) Complete(cmd *cobra.Command, args []string) error {
	if err := o.GlobalOptions.Complete(cmd, args); err != nil {
		return err
	}
	o.out = cmd.OutOrStdout()
	return nil
}

func (o *StatsOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	if len(o.Output) > 0 && !funk.ContainsString(legalOutputTypes, o.Output) {
		return fmt.Errorf("output format must be one of %s", strings.Join(legalOutputTypes, ", "))
	}
	return nil
}

func (o *StatsOptions) Run(ctx context.Context, args []string) error {
	c, err := o.Client()
	if err != nil {
		return fmt.Errorf("creating client: %w", err)
	}

	stats, err := c.Stats(ctx, o.Week, o.Author)
	if err != nil {
		return err
	}

	switch o.Output {
	case jsonFormat:
		marshalled, err := json.Marshal(stats)
		if err != nil {
			return fmt.Errorf("marshalling stats: %w", err)
		}
		fmt.Fprintf(o.out, "%s\n", string(marshalled))
	case yamlFormat:
		marshalled, err := yaml.Marshal(stats)
		if err != nil {
			return fmt.Errorf("marshalling stats: %w", err)
		}
		fmt.Fprintf(o.out, "%s\n", string(marshalled))
	default:
		w := tabwriter.NewWriter(o.out, 0, 8, 1, '\t', 0)
		printStatsTable(w, stats)
		return w.Flush()
	}
	return nil
}

func printStatsTable(w *tabwriter.Writer, stats api.Stats) {
	header := []string{"AUTHOR", "TOTAL"}
	for _, s := range api.ReconstructionStatuses {
		header = append(header, strings.ToUpper(string(s)))
	}
	header = append(header, "APPROVED", "NOT APPROVED")
	fmt.Fprintln(w, strings.Join(header, "\t"))

	row := func(name string, a api.AuthorStats) {
		cols := []string{name, fmt.Sprintf("%d", a.Total)}
		for _, s := range api.ReconstructionStatuses {
			cols = append(cols, formatCount(a.Status[s]))
		}
		cols = append(cols, formatCount(a.Approved), formatCount(a.NotApproved))
		fmt.Fprintln(w, strings.Join(cols, "\t"))
	}

	for _, a := range stats.Authors {
		row(a.Author, a)
	}
	row("(all)", stats.All)
}

func formatCount(c api.Count) string {
	return fmt.Sprintf("%d (%.1f%%)", c.Count, c.Percentage)
}
