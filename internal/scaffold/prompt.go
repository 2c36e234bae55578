package scaffold

import (
	"fmt"
	"strings"
)

const hintSystemPrompt = `You are a kind, knowledgeable teacher. Your job is to give a motivational hint for an exam question without ever revealing the answer.`

func buildHintUserMessage(in HintInput, intensity Intensity, words int) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Question: %s\n", strings.TrimSpace(in.Question)))
	b.WriteString(fmt.Sprintf("\nScaffolding level: %s\n", intensity))
	if in.Tier.Valid() {
		b.WriteString(fmt.Sprintf("Student mastery: %s\n", in.Tier.Label()))
	}

	if pos := in.Explanation.PositiveLabels(); len(pos) > 0 {
		b.WriteString(fmt.Sprintf("Strengths: %s\n", strings.Join(pos, ", ")))
	}
	if neg := in.Explanation.NegativeLabels(); len(neg) > 0 {
		b.WriteString(fmt.Sprintf("Needs support with: %s\n", strings.Join(neg, ", ")))
	}
	if in.Explanation.Narrative != "" {
		b.WriteString(fmt.Sprintf("Assessment notes: %s\n", in.Explanation.Narrative))
	}

	b.WriteString("\nInstructions:\n")
	b.WriteString(intensity.guidance())
	b.WriteString(fmt.Sprintf(`
Include these, without numbering them:
- A helpful nudge in the right direction. Never state the answer or eliminate options.
- One sentence on why learning this matters.
- Encouragement to think it through rather than guess.
Make it feel supportive and engaging, like a human teacher. Use plain text only, no asterisks or markdown. Keep it under %d words.`, words))

	return b.String()
}
