package steps

import (
	"fmt"
	"strings"

	types "github.com/yungbote/consciousness-backend/internal/domain"
)

const (
	MarkerAnalysis            = "**ANALYSIS:**"
	MarkerRecommendations     = "**RECOMMENDATIONS:**"
	MarkerMotivationalMessage = "**MOTIVATIONAL MESSAGE:**"

	notProvided = "Not provided"
)

const promptPreamble = `You are a compassionate life coach and consciousness guide. Analyze the following daily reflection and provide personalized insights.`

const promptFormat = `Please provide a comprehensive analysis in the following format:

` + MarkerAnalysis + `
[Provide a thoughtful analysis of today's reflection, acknowledging both positive aspects and areas of concern. Be specific and reference their actions. Consider their background from the profile and any patterns from previous days.]

` + MarkerRecommendations + `
[Provide 3-5 specific, actionable recommendations for improvement. Consider their profile background and recent patterns. Be practical and encouraging. Format as a numbered or bulleted list.]

` + MarkerMotivationalMessage + `
[End with an uplifting, personalized message that acknowledges their progress and encourages continued growth. Make it warm and genuine. Keep it concise but impactful.]

Keep the tone supportive, non-judgmental, and focused on growth. Be specific and avoid generic advice. Reference specific details from their reflection to show you're paying attention.`

// BuildPrompt renders the analysis prompt. recent is newest first with current
// at index 0; entries after index 0 become the recent-patterns section. The
// output depends only on its inputs.
func BuildPrompt(profile *types.Profile, current *types.Reflection, recent []*types.Reflection) string {
	var b strings.Builder
	b.WriteString(promptPreamble)
	b.WriteString("\n\n")

	b.WriteString("USER PROFILE (Background Context):\n")
	var p types.Profile
	if profile != nil {
		p = *profile
	}
	writeField(&b, "Self Introduction", p.SelfIntroduction)
	writeField(&b, "Good Qualities", p.GoodQualities)
	writeField(&b, "Areas for Improvement", p.BadQualities)
	writeField(&b, "Life Goals", p.LifeGoals)
	writeField(&b, "Challenges", p.Challenges)
	if extra := strings.TrimSpace(p.AdditionalInfo); extra != "" {
		b.WriteString("- Additional Info: " + extra + "\n")
	}
	b.WriteString("\n")

	var r types.Reflection
	if current != nil {
		r = *current
	}
	b.WriteString("TODAY'S REFLECTION:\n")
	b.WriteString("1. Day Summary: " + r.DaySummary + "\n")
	b.WriteString("2. Social Media Usage: " + r.SocialMediaTime + "\n")
	b.WriteString("3. Truthfulness & Kindness: " + r.TruthfulnessKindness + "\n")
	b.WriteString("4. Conscious vs Impulsive Actions: " + r.ConsciousActions + "\n")
	b.WriteString("5. Overthinking/Stress: " + r.OverthinkingStress + "\n")
	b.WriteString("6. Gratitude Expression: " + r.GratitudeExpression + "\n")
	b.WriteString("7. Proud Moment: " + r.ProudMoment + "\n")
	b.WriteString("\n")

	if len(recent) > 1 {
		prior := recent[1:]
		fmt.Fprintf(&b, "RECENT PATTERNS (Last %d days):\n", len(prior))
		for i, pr := range prior {
			if pr == nil {
				continue
			}
			fmt.Fprintf(&b, "\nDay %d (%s):\n", i+1, pr.Day())
			b.WriteString("- Summary: " + pr.DaySummary + "\n")
			b.WriteString("- Social Media: " + pr.SocialMediaTime + "\n")
			b.WriteString("- Conscious Actions: " + pr.ConsciousActions + "\n")
			b.WriteString("- Proud Moment: " + pr.ProudMoment + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(promptFormat)
	return b.String()
}

func writeField(b *strings.Builder, label, value string) {
	if strings.TrimSpace(value) == "" {
		value = notProvided
	}
	b.WriteString("- " + label + ": " + value + "\n")
}
