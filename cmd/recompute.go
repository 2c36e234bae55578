package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/xscaffold/internal/store"
)

var recomputeCmd = &cobra.Command{
	Use:   "recompute",
	Short: "Re-classify stored latest records",
	Long: `Run every stored latest classification's features through the gateway
again and overwrite the latest record. Archived attempts are not touched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		v := viperForCmd(cmd)

		s, err := openStore(v)
		if err != nil {
			return err
		}
		defer s.Close()

		g := newGateway(v, s.ClassificationRepo())
		sum, err := g.Recompute(commandContext(cmd), v.GetString("learner"), store.QueryOpts{Limit: v.GetInt("limit")})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if v.GetBool("json") {
			return writeJSON(out, sum)
		}
		fmt.Fprintf(out, "Recomputed %d records: %d model, %d fallback, %d tier changes, %d failed\n",
			sum.Total, sum.Model, sum.Fallback, sum.Changed, sum.Failed)
		return nil
	},
}

func init() {
	f := recomputeCmd.Flags()
	f.StringP("learner", "l", "", "Only recompute this learner")
	f.IntP("limit", "n", 0, "Maximum records to recompute (0 = all)")
	f.Bool("json", false, "Print the summary as JSON")
	addModelFlags(f)
}
