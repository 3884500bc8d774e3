// Package mood maps free text to one of a fixed set of mood categories by
// keyword scoring. It is pure and total: any input, including the empty
// string, yields a mood.
package mood

import "strings"

// Mood is a closed enumeration of detectable moods.
type Mood string

const (
	Happy     Mood = "happy"
	Stressed  Mood = "stressed"
	Calm      Mood = "calm"
	Motivated Mood = "motivated"
	Lost      Mood = "lost"
)

// order fixes the evaluation sequence. The best candidate starts as Calm with
// score 0 and is only replaced by a strictly greater score, so an all-zero
// scan yields Calm and equal nonzero scores resolve to the earliest mood here.
var order = []Mood{Happy, Stressed, Calm, Motivated, Lost}

var keywords = map[Mood][]string{
	Happy: {
		"خوشحال", "عالی", "خوب", "شاد", "ممنون", "حالم خوبه", "عالیه",
		"خیلی خوبم", "هیجان", "😄", "😊", "🎉",
	},
	Stressed: {
		"استرس", "فشار", "عصبی", "خسته", "کلافه", "نمی‌تونم", "سخته",
		"داغون", "😤", "😩",
	},
	Calm: {
		"آروم", "خوب", "نرمال", "بد نیست", "معمولی", "☕",
	},
	Motivated: {
		"انگیزه", "آماده", "قوی", "می‌خوام", "بزن بریم", "شروع", "💪", "🔥",
	},
	Lost: {
		"گم", "نمی‌دونم", "سردرگم", "بی‌هدف", "خالی", "پوچ", "معنی", "چرا", "🌙",
	},
}

// Decision is a classification result with its keyword match count.
type Decision struct {
	Mood  Mood
	Score int
}

// Classify scores the text against every mood's trigger set. Matching is
// case-insensitive substring containment; each trigger counts at most once no
// matter how often it occurs.
func Classify(text string) Decision {
	lower := strings.ToLower(text)

	best := Decision{Mood: Calm, Score: 0}
	for _, m := range order {
		score := 0
		for _, kw := range keywords[m] {
			if strings.Contains(lower, kw) {
				score++
			}
		}
		if score > best.Score {
			best = Decision{Mood: m, Score: score}
		}
	}
	return best
}

// Detect returns just the mood for the text.
func Detect(text string) Mood {
	return Classify(text).Mood
}

// Intensity converts a match score to a 1..5 log intensity.
func (d Decision) Intensity() int {
	switch {
	case d.Score <= 1:
		return 1
	case d.Score >= 5:
		return 5
	default:
		return d.Score
	}
}

var emoji = map[Mood]string{
	Happy:     "😄",
	Stressed:  "😤",
	Calm:      "☕",
	Motivated: "💪",
	Lost:      "🌙",
}

var labels = map[Mood]string{
	Happy:     "شاد",
	Stressed:  "تحت فشار",
	Calm:      "آرام",
	Motivated: "باانگیزه",
	Lost:      "سردرگم",
}

// Emoji returns the display emoji for a stored mood value.
func Emoji(m string) string {
	if e, ok := emoji[Mood(m)]; ok {
		return e
	}
	return "🔵"
}

// Label returns the Persian display label for a stored mood value.
func Label(m string) string {
	if l, ok := labels[Mood(m)]; ok {
		return l
	}
	return m
}
