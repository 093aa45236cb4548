// Package cli is the attest command tree: render a campaign dashboard in the
// terminal and run reminder actions against the attestation API.
package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/unclebandit/attestation-tracker/internal/apiclient"
	"github.com/unclebandit/attestation-tracker/internal/config"
	"github.com/unclebandit/attestation-tracker/internal/dashboard"
	"github.com/unclebandit/attestation-tracker/internal/logger"
	"github.com/unclebandit/attestation-tracker/internal/model"
	"github.com/unclebandit/attestation-tracker/internal/service"
)

// Options are the flags shared by every command.
type Options struct {
	APIURL     string
	Token      string
	Timeout    time.Duration
	Role       string
	Email      string
	CampaignID int64
	LogLevel   string

	Tab      string
	Search   string
	Company  string
	TeamOnly bool
}

func New() *cobra.Command {
	cfg, _ := config.Load()
	o := &Options{}

	cmd := &cobra.Command{
		Use:           "attest",
		Short:         "Track attestation campaign progress and nudge participants.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Init(o.LogLevel)
			logger.Log.SetOutput(cmd.ErrOrStderr())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	f := cmd.PersistentFlags()
	f.StringVar(&o.APIURL, "api-url", cfg.APIBaseURL, "attestation API base URL")
	f.StringVar(&o.Token, "token", cfg.APIToken, "attestation API bearer token")
	f.DurationVar(&o.Timeout, "timeout", cfg.APITimeout, "API request timeout")
	f.StringVar(&o.Role, "role", cfg.CLIRole, "caller role (admin, manager, attestation_coordinator)")
	f.StringVar(&o.Email, "email", cfg.CLIEmail, "caller email, used for team scoping")
	f.Int64VarP(&o.CampaignID, "campaign", "c", 0, "campaign id")
	f.StringVar(&o.LogLevel, "log-level", "warn", "log level")

	AddCommands(cmd, o, cfg)
	return cmd
}

func AddCommands(topLevel *cobra.Command, o *Options, cfg *config.Config) {
	addShow(topLevel, o)
	addRemind(topLevel, o)
	addResendInvites(topLevel, o)
	addWatch(topLevel, o, cfg)
}

func addFilterFlags(cmd *cobra.Command, o *Options) {
	cmd.Flags().StringVar(&o.Tab, "tab", "all", "status tab: all, overdue, pending, in_progress, completed, unregistered")
	cmd.Flags().StringVar(&o.Search, "search", "", "filter by participant name or email")
	cmd.Flags().StringVar(&o.Company, "company", dashboard.AllCompanies, "filter by company")
	cmd.Flags().BoolVar(&o.TeamOnly, "team", false, "managers only: show direct reports")
}

// load builds a dashboard for the flags and performs the initial fetch.
func (o *Options) load(ctx context.Context) (*service.DashboardService, error) {
	if o.CampaignID <= 0 {
		return nil, errors.New("--campaign is required")
	}
	role, err := model.ParseRole(o.Role)
	if err != nil {
		return nil, err
	}
	tab, err := dashboard.ParseTab(o.Tab)
	if err != nil {
		return nil, err
	}

	gw := apiclient.New(o.APIURL, o.Token, o.Timeout)
	d := service.NewDashboardService(gw, o.CampaignID, model.Caller{Role: role, Email: o.Email})
	if err := d.SetFilters(ctx, dashboard.Query{Tab: tab, Search: o.Search, Company: o.Company}, o.TeamOnly); err != nil {
		return nil, err
	}
	if err := d.Load(ctx); err != nil {
		return nil, err
	}
	return d, nil
}
