package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/unclebandit/attestation-tracker/internal/service"
)

func addRemind(topLevel *cobra.Command, o *Options) {
	var all bool
	cmd := &cobra.Command{
		Use:   "remind [record-id...]",
		Short: "Send reminders to registered participants.",
		Long: `Send reminders to registered participants.

With record ids, each one is reminded on its own. With --all, every
incomplete registered participant matching the filters is reminded in one
batch.`,
		Example: `
attest remind -c 7 12 15
attest remind -c 7 --all --tab overdue
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction(cmd, o, args, all,
				(*service.DashboardService).RemindOne,
				(*service.DashboardService).BulkRemind)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "remind everyone matching the filters")
	addFilterFlags(cmd, o)
	topLevel.AddCommand(cmd)
}

func addResendInvites(topLevel *cobra.Command, o *Options) {
	var all bool
	cmd := &cobra.Command{
		Use:   "resend-invites [invite-id...]",
		Short: "Resend registration invites to unregistered participants.",
		Example: `
attest resend-invites -c 7 40
attest resend-invites -c 7 --all
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction(cmd, o, args, all,
				(*service.DashboardService).ResendInviteOne,
				(*service.DashboardService).BulkResendInvites)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "resend to everyone matching the filters")
	addFilterFlags(cmd, o)
	topLevel.AddCommand(cmd)
}

type singleFunc func(*service.DashboardService, context.Context, int64) (*service.ActionResult, error)
type bulkFunc func(*service.DashboardService, context.Context) (*service.ActionResult, error)

func runAction(cmd *cobra.Command, o *Options, args []string, all bool, one singleFunc, bulk bulkFunc) error {
	if all == (len(args) > 0) {
		return errors.New("pass either ids or --all")
	}
	ids := make([]int64, 0, len(args))
	for _, a := range args {
		id, err := strconv.ParseInt(a, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q", a)
		}
		ids = append(ids, id)
	}

	ctx := cmd.Context()
	d, err := o.load(ctx)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if all {
		if err := d.SelectAllVisible(); err != nil {
			return err
		}
		res, err := bulk(d, ctx)
		if res != nil {
			PrintResult(out, res)
		}
		return err
	}

	var failed int
	for _, id := range ids {
		res, err := one(d, ctx, id)
		if res != nil {
			PrintResult(out, res)
		}
		if err != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d actions failed", failed, len(ids))
	}
	return nil
}
