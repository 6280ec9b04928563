package notify

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/drewAdorno/stfc-stat-tracker/internal/abbrev"
	"github.com/drewAdorno/stfc-stat-tracker/internal/tracker"
)

// ReportData carries everything the daily report embed renders. Prev is the
// previous completed day's summary for the 1-day deltas; nil means no deltas
// are shown.
type ReportData struct {
	Date         string
	AllianceName string
	Summary      tracker.Summary
	Prev         *tracker.Summary
	NewMembers   []tracker.Member
	Departed     []tracker.DepartedMember
	Inactive     []tracker.InactiveMember
	Gainers      []tracker.Mover
	Losers       []tracker.Mover
	LowestHelps  []tracker.Mover
}

// BuildReportEmbed renders the daily alliance report. Fields are appended in
// fixed priority order and trailing ones are dropped until the whole payload
// fits Discord's embed size limit.
func BuildReportEmbed(data ReportData, footer string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s Daily Report — %s", data.AllianceName, data.Date),
		Description: reportDescription(data.Summary, data.Prev),
		Color:       ColorReport,
		Footer:      &discordgo.MessageEmbedFooter{Text: footer},
	}

	if len(data.NewMembers) > 0 {
		lines := make([]string, 0, len(data.NewMembers))
		for _, m := range data.NewMembers {
			power := abbrev.FormatShort(abbrev.Parse(m.Power))
			lines = append(lines, fmt.Sprintf("**%s** — Lv%s, %s power, joined %s",
				m.Name, m.Level, power, m.JoinDate))
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "New Members (7d)",
			Value: TruncateField(strings.Join(lines, "\n")),
		})
	}

	if len(data.Departed) > 0 {
		lines := make([]string, 0, len(data.Departed))
		for _, m := range data.Departed {
			power := abbrev.FormatShort(abbrev.Parse(m.Power))
			lines = append(lines, fmt.Sprintf("**%s** — %s power, last seen %s",
				m.Name, power, m.LastSeen))
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Members Who Left",
			Value: TruncateField(strings.Join(lines, "\n")),
		})
	}

	if len(data.Inactive) > 0 {
		lines := make([]string, 0, len(data.Inactive))
		for _, m := range data.Inactive {
			lines = append(lines, fmt.Sprintf("**%s** — %dd inactive", m.Name, m.Days))
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Inactive Alerts",
			Value: TruncateField(strings.Join(lines, "\n")),
		})
	}

	if len(data.Gainers) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Power Gainers (7d)",
			Value:  TruncateField(moverLines(data.Gainers)),
			Inline: true,
		})
	}
	if len(data.Losers) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Power Losers (7d)",
			Value:  TruncateField(moverLines(data.Losers)),
			Inline: true,
		})
	}

	if len(data.LowestHelps) > 0 {
		lines := make([]string, 0, len(data.LowestHelps))
		for _, m := range data.LowestHelps {
			lines = append(lines, fmt.Sprintf("**%s** — %s gained", m.Name, abbrev.FormatShort(m.Delta)))
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Lowest Helps Gained",
			Value: TruncateField(strings.Join(lines, "\n")),
		})
	}

	trimToBudget(embed)
	return embed
}

func reportDescription(s tracker.Summary, prev *tracker.Summary) string {
	delta := func(curr, past int64) string {
		if prev == nil {
			return ""
		}
		return fmt.Sprintf(" (%s)", abbrev.FormatDelta(curr-past))
	}

	var past tracker.Summary
	if prev != nil {
		past = *prev
	}

	lines := []string{
		fmt.Sprintf("Total Power: %s%s | Members: %d",
			abbrev.FormatShort(s.TotalPower), delta(s.TotalPower, past.TotalPower), s.MemberCount),
		fmt.Sprintf("Helps: %s%s | RSS: %s%s | ISO: %s%s",
			abbrev.FormatShort(s.TotalHelps), delta(s.TotalHelps, past.TotalHelps),
			abbrev.FormatShort(s.TotalRSS), delta(s.TotalRSS, past.TotalRSS),
			abbrev.FormatShort(s.TotalISO), delta(s.TotalISO, past.TotalISO)),
	}
	return strings.Join(lines, "\n")
}

func moverLines(movers []tracker.Mover) string {
	lines := make([]string, 0, len(movers))
	for _, m := range movers {
		lines = append(lines, fmt.Sprintf("**%s** — %s", m.Name, abbrev.FormatDelta(m.Delta)))
	}
	return strings.Join(lines, "\n")
}

// trimToBudget drops trailing fields until the embed's character total fits
// under the wire limit. Field order doubles as drop priority: the last
// appended field is the first to go.
func trimToBudget(embed *discordgo.MessageEmbed) {
	total := embedSize(embed)
	for total > payloadBudget && len(embed.Fields) > 0 {
		last := embed.Fields[len(embed.Fields)-1]
		embed.Fields = embed.Fields[:len(embed.Fields)-1]
		total -= len(last.Name) + len(last.Value)
	}
}

func embedSize(embed *discordgo.MessageEmbed) int {
	total := len(embed.Title) + len(embed.Description)
	if embed.Footer != nil {
		total += len(embed.Footer.Text)
	}
	for _, f := range embed.Fields {
		total += len(f.Name) + len(f.Value)
	}
	return total
}
