package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/abhisek/xscaffold/internal/explain"
	"github.com/abhisek/xscaffold/internal/insights"
	"github.com/abhisek/xscaffold/internal/lms"
	"github.com/abhisek/xscaffold/internal/ui/components"
	"github.com/abhisek/xscaffold/internal/ui/theme"
)

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Instructor-facing analysis of a learner",
	RunE: func(cmd *cobra.Command, args []string) error {
		v := viperForCmd(cmd)
		ctx := commandContext(cmd)

		learner := v.GetString("learner")
		if learner == "" {
			return errors.New("--learner is required")
		}

		s, err := openStore(v)
		if err != nil {
			return err
		}
		defer s.Close()

		provider := newLLMProvider(ctx, v, s.EventRepo())
		svc := insights.NewService(s.ClassificationRepo(), provider, insights.DefaultConfig(), slog.Default())
		report, err := svc.Generate(ctx, learner)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if v.GetBool("json") {
			return writeJSON(out, report)
		}

		sum := report.Summary
		if sum.Units > 0 {
			fmt.Fprintln(out, theme.Title.Render(learner))
			fmt.Fprintln(out, components.NewGauge("Avg LMS ", sum.AvgLMS, 60).View())
			fmt.Fprintln(out, components.NewGauge("Best LMS", sum.BestLMS, 60).View())
			fmt.Fprintf(out, "%s %d   %s %.1f%%\n",
				theme.Label.Render("Units"), sum.Units,
				theme.Label.Render("Avg score"), sum.AvgScore)
			for _, t := range lms.Tiers {
				fmt.Fprintf(out, "  %s %d\n", theme.TierBadge(t), sum.Tiers[t])
			}
			printCounts(cmd, "Recurring strengths", sum.Strengths)
			printCounts(cmd, "Recurring gaps", sum.Gaps)
			fmt.Fprintln(out)
		}
		fmt.Fprintln(out, report.Markdown)
		return nil
	},
}

func printCounts(cmd *cobra.Command, title string, counts []insights.FactorCount) {
	if len(counts) == 0 {
		return
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, theme.Label.Render(title))
	for _, c := range counts {
		fmt.Fprintf(out, "  %-24s %d\n", explain.Label(c.Feature), c.Count)
	}
}

func init() {
	f := insightsCmd.Flags()
	f.StringP("learner", "l", "", "Learner ID")
	f.Bool("json", false, "Print the report as JSON")
	addLLMFlags(f)
}
