package mood

import "time"

// TimeGreeting picks the opening line for an empty conversation based on the
// local hour.
func TimeGreeting(t time.Time) string {
	hour := t.Hour()
	switch {
	case hour < 6:
		return "شب بخیر 🌙 هنوز بیداری؟"
	case hour < 12:
		return "صبح بخیر ☀️ امروز چه خبر؟"
	case hour < 17:
		return "ظهر بخیر 🌤 نیمه‌ی روز رسید!"
	case hour < 21:
		return "عصر بخیر 🌅 روز چطور بود؟"
	default:
		return "شب بخیر 🌙 وقت بازتاب امروزه..."
	}
}
