package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/xscaffold/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded classifications",
	Long: `Without --unit, list the latest classification for each unit of a learner
(or of every learner). With --unit, list every archived attempt, newest first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		v := viperForCmd(cmd)
		ctx := commandContext(cmd)

		learner, unit := v.GetString("learner"), v.GetString("unit")
		if unit != "" && learner == "" {
			return errors.New("--unit requires --learner")
		}

		s, err := openStore(v)
		if err != nil {
			return err
		}
		defer s.Close()

		opts := store.QueryOpts{Limit: v.GetInt("limit")}
		repo := s.ClassificationRepo()

		var recs []store.ClassificationRecord
		if unit != "" {
			recs, err = repo.History(ctx, learner, unit, opts)
		} else {
			recs, err = repo.ListLatest(ctx, learner, opts)
		}
		if err != nil {
			return fmt.Errorf("query classifications: %w", err)
		}

		out := cmd.OutOrStdout()
		if v.GetBool("json") {
			return writeJSON(out, recs)
		}
		if len(recs) == 0 {
			fmt.Fprintln(out, "No classifications found.")
			return nil
		}

		fmt.Fprintf(out, "%-16s  %-16s  %3s  %7s  %-10s  %5s  %-8s  %s\n",
			"Learner", "Unit", "#", "LMS", "Tier", "Conf", "Source", "Time")
		fmt.Fprintln(out, strings.Repeat("─", 96))
		for _, r := range recs {
			ts := r.UpdatedAt
			if ts.IsZero() {
				ts = r.CreatedAt
			}
			fmt.Fprintf(out, "%-16s  %-16s  %3d  %7.2f  %-10s  %4.0f%%  %-8s  %s\n",
				truncate(r.LearnerID, 16),
				truncate(r.UnitID, 16),
				r.Attempt,
				r.LMS,
				r.Tier.Label(),
				r.Confidence*100,
				r.Source,
				ts.Local().Format("2006-01-02 15:04:05"),
			)
		}
		return nil
	},
}

func init() {
	f := historyCmd.Flags()
	f.StringP("learner", "l", "", "Learner ID")
	f.StringP("unit", "u", "", "Unit ID (lists archived attempts)")
	f.IntP("limit", "n", 20, "Number of records to show (0 = all)")
	f.Bool("json", false, "Print records as JSON")
}
