package mood

// Suggestion is one daily prompt for breaking routine.
type Suggestion struct {
	Type  string
	Icon  string
	Title string
	Text  string
}

var dailySuggestions = []Suggestion{
	{
		Type:  "micro-challenge",
		Icon:  "⚡",
		Title: "چالش کوچک",
		Text:  "امروز یه کار رو متفاوت از همیشه انجام بده، حتی مسیر رفتنت رو عوض کن.",
	},
	{
		Type:  "creative",
		Icon:  "🎨",
		Title: "خلاقیت",
		Text:  "سه خط درباره‌ی چیزی بنویس که امروز توجهت رو جلب کرد.",
	},
	{
		Type:  "mindset",
		Icon:  "🧠",
		Title: "ذهنیت",
		Text:  "یه نفس عمیق بکش و از خودت بپرس: الان واقعاً به چی نیاز دارم؟",
	},
	{
		Type:  "growth",
		Icon:  "🌱",
		Title: "رشد",
		Text:  "یه مهارت کوچیک که همیشه می‌خواستی یاد بگیری رو ده دقیقه تمرین کن.",
	},
}

// Suggestions returns the fixed daily-suggestion rotation.
func Suggestions() []Suggestion {
	return dailySuggestions
}
