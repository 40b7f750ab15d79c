package cli

import (
	"context"
	"fmt"
	"io"

	api "github.com/openreal2sim/review-dashboard/api/v1alpha1"
	"github.com/openreal2sim/review-dashboard/internal/metadata"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type LabelOptions struct {
	GlobalOptions

	Status  string
	Pose    string
	Gripped bool

	gripped bool
	out     io.Writer
}

func DefaultLabelOptions() *LabelOptions {
	return &LabelOptions{
		GlobalOptions: DefaultGlobalOptions(),
	}
}

func NewCmdLabel() *cobra.Command {
	o := DefaultLabelOptions()
	cmd := &cobra.Command{
		Use:   "label NAME",
		Short: "Set the review labels of a reconstruction.",
		Long:  "Set the review labels of a reconstruction. Choosing the status no_recon also sets the pose to no_recon.",
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

func (o *LabelOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.StringVar(&o.Status, "status", o.Status, "Reconstruction status (no_recon, pending, object, pose, approved)")
	fs.StringVar(&o.Pose, "pose", o.Pose, "Pose label (no_recon, pending, wrong, almost, approved)")
	fs.BoolVar(&o.Gripped, "gripped", o.Gripped, "Whether the object is gripped")
}

func (o *LabelOptions) Complete(cmd *cobra.Command, args []string) error {
	if err := o.GlobalOptions.Complete(cmd, args); err != nil {
		return err
	}
	o.gripped = cmd.Flags().Changed("gripped")
	o.out = cmd.OutOrStdout()
	return nil
}

func (o *LabelOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	if o.Status == "" && o.Pose == "" && !o.gripped {
		return fmt.Errorf("at least one of --status, --pose or --gripped is required")
	}
	if o.Status != "" && !api.ReconstructionStatus(o.Status).IsValid() {
		return fmt.Errorf("invalid status %q", o.Status)
	}
	if o.Pose != "" && !api.PoseStatus(o.Pose).IsValid() {
		return fmt.Errorf("invalid pose %q", o.Pose)
	}
	return nil
}

func (o *LabelOptions) update() api.LabelUpdate {
	update := api.LabelUpdate{}
	if o.Status != "" {
		status := api.ReconstructionStatus(o.Status)
		update.Status = &status
	}
	if o.Pose != "" {
		pose := api.PoseStatus(o.Pose)
		update.Pose = &pose
	}
	if o.gripped {
		gripped := o.Gripped
		update.Gripped = &gripped
	}
	return update
}

func (o *LabelOptions) Run(ctx context.Context, args []string) error {
	c, err := o.Client()
	if err != nil {
		return fmt.Errorf("creating client: %w", err)
	}

	mutator := metadata.NewMutator(metadata.NewCache(), c)
	if err := mutator.Load(ctx); err != nil {
		return err
	}

	rec, err := mutator.UpdateLabels(ctx, args[0], o.update())
	if err != nil {
		return err
	}

	fmt.Fprintf(o.out, "%s/%s labelled: status=%s pose=%s gripped=%t\n", ReconstructionKind, rec.Name, rec.Status, rec.Pose, rec.Gripped)
	return nil
}
