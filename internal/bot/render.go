package bot

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/bobby-s-dev/wardrobe-bot/internal/models"
)

// Render formats a recommendation as a Telegram Markdown message. User and
// provider text is escaped.
func Render(rec models.Recommendation) string {
	s := rec.Snapshot

	advice := make([]string, len(rec.Advice))
	for i, line := range rec.Advice {
		advice[i] = escape(line)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📅 Дата: %s\n", s.Date)
	fmt.Fprintf(&b, "📍 Город: %s\n\n", escape(rec.City))
	fmt.Fprintf(&b, "🌡️ Температура: %.1f°C (ощущается как %.1f°C)\n", s.Temperature, s.FeelsLike)
	fmt.Fprintf(&b, "🌤️ Погода: %s\n", escape(capitalize(s.Description)))
	fmt.Fprintf(&b, "💨 Ветер: %s м/с\n", strconv.FormatFloat(s.WindSpeed, 'f', -1, 64))
	fmt.Fprintf(&b, "💧 Влажность: %d%%\n\n", s.Humidity)
	b.WriteString("🧥 *Рекомендации по одежде:*\n")
	b.WriteString(strings.Join(advice, "\n"))

	return b.String()
}

func escape(text string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, text)
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
