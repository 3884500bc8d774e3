package mood

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDetectDefaultsToCalm(t *testing.T) {
	assert.Equal(t, Calm, Detect(""))
	assert.Equal(t, Calm, Detect("hello world"))
	assert.Equal(t, Calm, Detect("1234 !!!"))
}

func TestDetectStressed(t *testing.T) {
	assert.Equal(t, Stressed, Detect("امروز خیلی استرس دارم"))
	assert.Equal(t, Stressed, Detect("خیلی خسته و عصبی‌ام 😩"))
}

func TestDetectPerMood(t *testing.T) {
	cases := map[string]Mood{
		"خیلی خوشحالم و شاد 😄": Happy,
		"پر از انگیزه‌ام، بزن بریم 💪": Motivated,
		"نمی‌دونم، سردرگم شدم":  Lost,
		"همه چیز نرمال و معمولی": Calm,
	}
	for text, want := range cases {
		assert.Equal(t, want, Detect(text), "text: %s", text)
	}
}

func TestDetectCaseInsensitiveAndDeterministic(t *testing.T) {
	text := "امروز استرس داشتم ok?"
	first := Detect(text)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Detect(text))
	}
	assert.Equal(t, first, Detect(strings.ToUpper(text)))
	assert.Equal(t, first, Detect(strings.ToLower(text)))
}

func TestDetectTieBreakIsFixedPriority(t *testing.T) {
	// One trigger each for stressed and motivated; stressed is evaluated
	// earlier and must win every time.
	text := "استرس دارم ولی انگیزه هم دارم"
	for i := 0; i < 20; i++ {
		assert.Equal(t, Stressed, Detect(text))
	}

	// "خوب" triggers both happy and calm. Happy is scanned first with a
	// strictly-greater comparison, so calm never overtakes the tie.
	assert.Equal(t, Happy, Detect("خوب"))
}

func TestClassifyCountsDistinctTriggersOnce(t *testing.T) {
	// Three occurrences of one stressed trigger score 1; two distinct happy
	// triggers score 2 and win.
	d := Classify("استرس استرس استرس ولی خوشحال و شاد")
	assert.Equal(t, Happy, d.Mood)
	assert.Equal(t, 2, d.Score)

	d = Classify("استرس استرس استرس")
	assert.Equal(t, Stressed, d.Mood)
	assert.Equal(t, 1, d.Score)
}

func TestDecisionIntensity(t *testing.T) {
	assert.Equal(t, 1, Decision{Mood: Calm, Score: 0}.Intensity())
	assert.Equal(t, 1, Decision{Mood: Happy, Score: 1}.Intensity())
	assert.Equal(t, 3, Decision{Mood: Happy, Score: 3}.Intensity())
	assert.Equal(t, 5, Decision{Mood: Happy, Score: 9}.Intensity())
}

func TestTimeGreeting(t *testing.T) {
	at := func(hour int) time.Time {
		return time.Date(2025, 6, 1, hour, 0, 0, 0, time.UTC)
	}
	assert.Contains(t, TimeGreeting(at(3)), "بیداری")
	assert.Contains(t, TimeGreeting(at(9)), "صبح بخیر")
	assert.Contains(t, TimeGreeting(at(13)), "ظهر بخیر")
	assert.Contains(t, TimeGreeting(at(19)), "عصر بخیر")
	assert.Contains(t, TimeGreeting(at(22)), "بازتاب")
}

func TestEmojiAndLabelFallback(t *testing.T) {
	assert.Equal(t, "😄", Emoji("happy"))
	assert.Equal(t, "تحت فشار", Label("stressed"))
	assert.Equal(t, "🔵", Emoji("unknown"))
	assert.Equal(t, "unknown", Label("unknown"))
}
