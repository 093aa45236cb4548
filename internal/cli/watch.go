package cli

import (
	"context"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/unclebandit/attestation-tracker/internal/config"
	"github.com/unclebandit/attestation-tracker/internal/service"
)

// printingReloader redraws the dashboard after every scheduled refresh.
type printingReloader struct {
	*service.DashboardService
	out io.Writer
}

func (p *printingReloader) Refresh(ctx context.Context) error {
	err := p.DashboardService.Refresh(ctx)
	if v, verr := p.View(); verr == nil {
		PrintView(p.out, v)
	}
	return err
}

func addWatch(topLevel *cobra.Command, o *Options, cfg *config.Config) {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Show the dashboard and redraw it on every refresh.",
		Long: `Show the dashboard and redraw it on every refresh.

Refreshes stop on their own once the campaign is no longer active.`,
		Example: `
attest watch -c 7 --interval 30s
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d, err := o.load(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			v, err := d.View()
			if err != nil {
				return err
			}
			PrintView(out, v)

			sched := service.NewScheduler(interval)
			sched.Start(ctx, &printingReloader{DashboardService: d, out: out})
			<-ctx.Done()
			sched.Stop()
			return nil
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", cfg.RefreshInterval, "refresh interval")
	addFilterFlags(cmd, o)
	topLevel.AddCommand(cmd)
}
