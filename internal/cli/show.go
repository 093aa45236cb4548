package cli

import (
	"github.com/spf13/cobra"
)

func addShow(topLevel *cobra.Command, o *Options) {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the campaign dashboard.",
		Example: `
attest show -c 7
attest show -c 7 --tab overdue --company Acme
attest show -c 7 --role manager --email boss@example.com --team
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := o.load(cmd.Context())
			if err != nil {
				return err
			}
			v, err := d.View()
			if err != nil {
				return err
			}
			PrintView(cmd.OutOrStdout(), v)
			return nil
		},
	}
	addFilterFlags(cmd, o)
	topLevel.AddCommand(cmd)
}
