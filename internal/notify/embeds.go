// Package notify turns detected roster changes and daily analytics into
// Discord embed payloads, filters them through the sent-event ledger and
// posts them over a webhook.
package notify

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/drewAdorno/stfc-stat-tracker/internal/abbrev"
	"github.com/drewAdorno/stfc-stat-tracker/internal/tracker"
)

const (
	ColorJoined  = 0x51CF66
	ColorLeft    = 0xFF6B6B
	ColorReport  = 0x4DABF7
	ColorFailure = 0xFF0000
)

const (
	fieldLimit    = 1024
	payloadBudget = 5900
)

var levelUpMessages = []string{
	"🎉 Congrats! Keep climbing!",
	"🚀 To boldly go to the next level!",
	"💪 Nice grind, Commander!",
	"🔥 Unstoppable!",
	"⭐ The fleet grows stronger!",
	"🏆 Another one bites the dust!",
	"📈 Stonks! Level goes up!",
}

// TruncateField caps text at Discord's 1024-char field limit. Instead of
// cutting mid-line it keeps the longest prefix of whole lines that fits and
// marks the cut with a trailing "\n...".
func TruncateField(text string) string {
	if len(text) <= fieldLimit {
		return text
	}

	const marker = "\n..."
	budget := fieldLimit - len(marker)

	lines := strings.Split(text, "\n")
	kept, used := 0, 0
	for _, line := range lines {
		need := len(line)
		if kept > 0 {
			need++ // joining newline
		}
		if used+need > budget {
			break
		}
		used += need
		kept++
	}

	return strings.Join(lines[:kept], "\n") + marker
}

// BuildChangeEmbeds renders one embed per non-empty change category, in
// joined / left / level-up order. An empty change set yields no embeds.
func BuildChangeEmbeds(changes tracker.ChangeSet, footer string) []*discordgo.MessageEmbed {
	var embeds []*discordgo.MessageEmbed

	if len(changes.Joined) > 0 {
		lines := make([]string, 0, len(changes.Joined))
		for _, m := range changes.Joined {
			power := abbrev.FormatShort(abbrev.Parse(m.Power))
			lines = append(lines, fmt.Sprintf("**%s** — Lv%s, %s power", m.Name, m.Level, power))
		}
		embeds = append(embeds, &discordgo.MessageEmbed{
			Title:       "✅ Member Joined",
			Description: TruncateField(strings.Join(lines, "\n")),
			Color:       ColorJoined,
			Footer:      &discordgo.MessageEmbedFooter{Text: footer},
		})
	}

	if len(changes.Left) > 0 {
		lines := make([]string, 0, len(changes.Left))
		for _, m := range changes.Left {
			power := abbrev.FormatShort(abbrev.Parse(m.Power))
			lines = append(lines, fmt.Sprintf("**%s** — was Lv%s, %s power", m.Name, m.Level, power))
		}
		embeds = append(embeds, &discordgo.MessageEmbed{
			Title:       "🚪 Member Left",
			Description: TruncateField(strings.Join(lines, "\n")),
			Color:       ColorLeft,
			Footer:      &discordgo.MessageEmbedFooter{Text: footer},
		})
	}

	if len(changes.LevelUps) > 0 {
		lines := make([]string, 0, len(changes.LevelUps)+2)
		for _, up := range changes.LevelUps {
			lines = append(lines, fmt.Sprintf("**%s** — Lv%s → Lv%s", up.Name, up.OldLevel, up.NewLevel))
		}
		lines = append(lines, "", levelUpMessages[rand.Intn(len(levelUpMessages))])
		embeds = append(embeds, &discordgo.MessageEmbed{
			Title:       "⬆️ Level Up",
			Description: TruncateField(strings.Join(lines, "\n")),
			Color:       ColorReport,
			Footer:      &discordgo.MessageEmbedFooter{Text: footer},
		})
	}

	return embeds
}

// BuildFailureEmbed renders the red pipeline-failure alert.
func BuildFailureEmbed(message, footer string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Scraper Failure",
		Description: message,
		Color:       ColorFailure,
		Footer:      &discordgo.MessageEmbedFooter{Text: footer},
	}
}
