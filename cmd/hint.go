package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/abhisek/xscaffold/internal/explain"
	"github.com/abhisek/xscaffold/internal/lms"
	"github.com/abhisek/xscaffold/internal/scaffold"
	"github.com/abhisek/xscaffold/internal/ui/theme"
)

var hintCmd = &cobra.Command{
	Use:   "hint",
	Short: "Generate a scaffolded hint for a question",
	Long: `Generate a hint whose intensity follows the learner's latest tier for the
unit. Learners without a classification get moderate scaffolding unless
--tier is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		v := viperForCmd(cmd)
		ctx := commandContext(cmd)

		question := v.GetString("question")
		if question == "" {
			return errors.New("--question is required")
		}

		s, err := openStore(v)
		if err != nil {
			return err
		}
		defer s.Close()

		in := scaffold.HintInput{
			LearnerID: v.GetString("learner"),
			UnitID:    v.GetString("unit"),
			Question:  question,
		}
		if t := v.GetString("tier"); t != "" {
			tier, ok := lms.ParseTier(t)
			if !ok {
				return fmt.Errorf("unknown tier %q", t)
			}
			in.Tier = tier
		} else if in.LearnerID != "" && in.UnitID != "" {
			rec, err := s.ClassificationRepo().Latest(ctx, in.LearnerID, in.UnitID)
			if err != nil {
				return err
			}
			if rec != nil {
				in.Tier = rec.Tier
				in.Explanation = rec.Explanation
			} else {
				slog.Info("no classification yet, using default scaffolding", "learner", in.LearnerID, "unit", in.UnitID)
			}
		}
		if in.Explanation.Mode == "" {
			in.Explanation = explain.Synthesize(nil)
		}

		provider := newLLMProvider(ctx, v, s.EventRepo())
		svc := scaffold.NewHintService(provider, s.EventRepo(), scaffold.DefaultConfig(), slog.Default())
		hint := svc.Generate(ctx, in)

		out := cmd.OutOrStdout()
		if v.GetBool("json") {
			return writeJSON(out, hint)
		}
		fmt.Fprintln(out, theme.Label.Render(fmt.Sprintf("Scaffolding %s", hint.Intensity)))
		fmt.Fprintln(out, theme.Body.Render(hint.Text))
		return nil
	},
}

func init() {
	f := hintCmd.Flags()
	f.StringP("question", "q", "", "Question text")
	f.StringP("learner", "l", "", "Learner ID")
	f.StringP("unit", "u", "", "Unit ID")
	f.String("tier", "", "Override the learner's tier (at_risk, developing, proficient, advanced)")
	f.Bool("json", false, "Print the hint as JSON")
	addLLMFlags(f)
}
