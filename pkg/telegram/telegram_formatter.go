package telegram

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang-stock-news-analyzer/internal/analyzer/dto"
)

const maxMessageLen = 4090

// FormatAnalysisForTelegram renders one analysis as Markdown messages, each at most
// maxMessageLen bytes long.
func FormatAnalysisForTelegram(n dto.AnalysisNotification) []string {
	if n.Analysis == nil {
		return []string{fmt.Sprintf("No analysis available for *%s*.", escapeMarkdown(n.Company))}
	}
	a := n.Analysis

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📰 *News Analysis: %s (%s)*\n\n", escapeMarkdown(a.CompanyName), escapeMarkdown(n.Ticker)))
	sb.WriteString(fmt.Sprintf("%s *Sentiment:* %s\n", sentimentIcon(a.Sentiment), a.Sentiment))
	sb.WriteString(fmt.Sprintf("🎯 *Confidence:* %.0f%%\n\n", a.ConfidenceScore*100))
	sb.WriteString(fmt.Sprintf("💬 *Summary:* %s\n", escapeMarkdown(a.NewsDesc)))

	if a.MarketImplications != "" {
		sb.WriteString(fmt.Sprintf("\n📈 *Market implications:* %s\n", escapeMarkdown(a.MarketImplications)))
	}
	writeList(&sb, "👤 *People:*", a.PeopleNames)
	writeList(&sb, "🏢 *Companies:*", a.OtherCompaniesReferred)
	writeList(&sb, "🏭 *Industries:*", a.RelatedIndustries)
	writeList(&sb, "📍 *Places:*", a.PlacesNames)

	return splitMessage(sb.String(), maxMessageLen)
}

func sentimentIcon(s dto.Sentiment) string {
	switch s {
	case dto.SentimentPositive:
		return "😊"
	case dto.SentimentNegative:
		return "😟"
	default:
		return "😐"
	}
}

func writeList(sb *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	escaped := make([]string, 0, len(items))
	for _, it := range items {
		escaped = append(escaped, escapeMarkdown(it))
	}
	sb.WriteString(fmt.Sprintf("%s %s\n", label, strings.Join(escaped, ", ")))
}

// escapeMarkdown escapes the characters legacy Telegram Markdown treats as markup.
func escapeMarkdown(s string) string {
	r := strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")
	return r.Replace(s)
}

// splitMessage breaks text on line boundaries so no part exceeds limit. A single line
// longer than limit is cut on rune boundaries.
func splitMessage(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}

	var parts []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			parts = append(parts, current.String())
			current.Reset()
		}
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		for len(line) > limit {
			flush()
			cut := limit
			for cut > 0 && !utf8.RuneStart(line[cut]) {
				cut--
			}
			if cut == 0 {
				cut = limit
			}
			parts = append(parts, line[:cut])
			line = line[cut:]
		}
		if current.Len()+len(line) > limit {
			flush()
		}
		current.WriteString(line)
	}
	flush()
	return parts
}
