package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/abhisek/xscaffold/internal/predict"
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Classify an exam attempt and record it",
	Long: `Classify an exam attempt into a mastery tier.

Features come from --features, a JSON file ("-" for stdin) holding either the
eleven feature values or {"answers": [...], "telemetry": {...}}, plus any
--set name=value overrides. With --learner and --unit the result is saved as
the learner's next attempt; --dry-run only prints it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		v := viperForCmd(cmd)
		ctx := commandContext(cmd)

		vec, err := readFeatures(v.GetString("features"), cmd.InOrStdin(), v.GetStringSlice("set"))
		if err != nil {
			return err
		}
		for _, viol := range vec.Validate() {
			slog.Warn("feature out of range", "violation", viol.String())
		}

		learner, unit := v.GetString("learner"), v.GetString("unit")
		out := cmd.OutOrStdout()

		if v.GetBool("dry-run") || (learner == "" && unit == "") {
			res := newGateway(v, nil).Predict(ctx, vec)
			if v.GetBool("json") {
				return writeJSON(out, res)
			}
			renderResult(out, "Prediction", res)
			return nil
		}

		s, err := openStore(v)
		if err != nil {
			return err
		}
		defer s.Close()

		g := newGateway(v, s.ClassificationRepo())
		outcome, err := g.Submit(ctx, predict.Submission{LearnerID: learner, UnitID: unit, Features: vec})
		if errors.Is(err, predict.ErrMaxAttempts) {
			return fmt.Errorf("no attempts left: %w", err)
		}
		if err != nil {
			return err
		}

		if v.GetBool("json") {
			return writeJSON(out, outcome)
		}
		footer := fmt.Sprintf("attempt %d", outcome.Attempt)
		if outcome.AttemptsLeft >= 0 {
			footer += fmt.Sprintf(", %d left", outcome.AttemptsLeft)
		}
		renderResult(out, fmt.Sprintf("%s / %s", learner, unit), outcome.Result, footer)
		return nil
	},
}

func init() {
	f := predictCmd.Flags()
	f.StringP("features", "f", "", "Feature or attempt JSON file (- for stdin)")
	f.StringSlice("set", nil, "Feature override as name=value (repeatable)")
	f.StringP("learner", "l", "", "Learner ID")
	f.StringP("unit", "u", "", "Unit ID")
	f.Int("max-attempts", 3, "Attempts allowed per learner and unit (0 = unlimited)")
	f.Bool("dry-run", false, "Classify without recording")
	f.Bool("json", false, "Print the result as JSON")
	addModelFlags(f)
}
