package sentiment

import (
	"fmt"
	"hash/fnv"
)

var encouragements = []string{
	"🌟 Strive for positive posts. Your confidence is growing!",
	"👍 Spread positivity! You are amazing.",
	"💪 You're on the right track! Every post counts towards a better community.",
	"✨ Keep it up! Positive vibes.",
}

// DynamicComment builds the reviewer note from the most negative sentence.
func DynamicComment(scores []SentenceScore) string {
	if len(scores) == 0 {
		return "Thanks for posting! If you'd like feedback, try adding more details or clarifying your main points. " +
			"The more context you provide, the better readers can understand your perspective."
	}

	worst := scores[0]
	for _, s := range scores[1:] {
		if s.Polarity < worst.Polarity {
			worst = s
		}
	}

	switch {
	case worst.Polarity <= -0.5:
		return fmt.Sprintf("I noticed this part of your post was quite negative: %q. "+
			"Would you consider reframing it with specific examples or a constructive solution? "+
			"This helps others understand your perspective.", worst.Text)
	case worst.Polarity <= -0.2:
		return fmt.Sprintf("Your post segment %q carries a somewhat negative tone. "+
			"You might balance it with a supportive comment or an actionable suggestion.", worst.Text)
	default:
		return "Thanks for sharing your thoughts! To make your post even more engaging, " +
			"consider elaborating with examples or helpful resources."
	}
}

func ToneComment(polarity float64) string {
	tone := "neutral"
	switch {
	case polarity > 0:
		tone = "positive"
	case polarity < 0:
		tone = "negative"
	}
	return fmt.Sprintf("Your post appears %s (polarity=%.2f). Please reflect on the tone and consider rephrasing if needed.", tone, polarity)
}

// Encouragement picks a stable line for the same content.
func Encouragement(content string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(content))
	return encouragements[h.Sum32()%uint32(len(encouragements))]
}

func Emoji(label string) string {
	switch Label(label) {
	case Positive:
		return "😄🎉"
	case Negative:
		return "😔⚠️"
	case Neutral:
		return "😐"
	default:
		return "❓"
	}
}
