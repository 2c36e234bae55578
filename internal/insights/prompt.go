package insights

import (
	"fmt"
	"strings"

	"github.com/abhisek/xscaffold/internal/explain"
)

const insightsSystemPrompt = `ROLE: Advanced Pedagogical Analytics Engine
TASK: Analyze student performance data to provide a high-level strategic assessment for the course instructor.`

func buildInsightsUserMessage(s Summary) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("STUDENT PROFILE: %q\n\n", s.LearnerID))

	b.WriteString("[Overall Metrics]\n")
	b.WriteString(fmt.Sprintf("- Units Completed: %d\n", s.Units))
	b.WriteString(fmt.Sprintf("- Avg Learning Mastery Score (LMS): %.1f\n", s.AvgLMS))
	b.WriteString(fmt.Sprintf("- Best LMS: %.2f\n", s.BestLMS))
	b.WriteString(fmt.Sprintf("- Avg Exam Score: %.1f%%\n", s.AvgScore))
	if len(s.Strengths) > 0 {
		b.WriteString(fmt.Sprintf("- Recurring strengths: %s\n", joinCounts(s.Strengths)))
	}
	if len(s.Gaps) > 0 {
		b.WriteString(fmt.Sprintf("- Recurring gaps: %s\n", joinCounts(s.Gaps)))
	}

	b.WriteString("\n[Unit-Level Performance]\n")
	for _, r := range s.Records {
		b.WriteString(fmt.Sprintf("- Unit: %s\n", r.UnitID))
		b.WriteString(fmt.Sprintf("  Score: %g%%\n", r.Features.ScorePercentage))
		b.WriteString(fmt.Sprintf("  LMS: %.2f (%s)\n", r.LMS, r.Tier.Label()))
		b.WriteString(fmt.Sprintf("  Strengths: %s\n", strings.Join(r.Explanation.PositiveLabels(), ", ")))
		b.WriteString(fmt.Sprintf("  Weaknesses: %s\n", strings.Join(r.Explanation.NegativeLabels(), ", ")))
		b.WriteString(fmt.Sprintf("  AI Analysis: %s\n", r.Explanation.Narrative))
	}

	b.WriteString(`
ANALYSIS GUIDELINES:
1. Objective Analysis: Dissect the facts. Avoid conversational fillers like "Dear Instructor". Focus on patterns, correlations, and anomalies.
2. Pattern Recognition: Identify recurring strengths (positive factors) and persistent knowledge gaps (negative factors) across units.
3. Strategic Recommendations: Provide high-impact, actionable interventions for the instructor to apply.
4. Tone: Clinical, data-driven, direct.

OUTPUT FORMAT (Markdown):
### Executive Analysis
[Brief data synthesis of the student's current standing and trajectory]

### Performance Patterns
[Strengths versus struggling concepts, referencing specific units]

### Strategic Recommendations
[2-3 concrete scaffolding actions for the instructor]
`)
	return b.String()
}

func joinCounts(cs []FactorCount) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = fmt.Sprintf("%s (%d)", explain.Label(c.Feature), c.Count)
	}
	return strings.Join(parts, ", ")
}
