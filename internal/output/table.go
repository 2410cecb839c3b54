// Package output provides terminal output utilities for champrules.
//
// This package includes:
//   - Table rendering for mined rules, partners, champion stats, imports and mining runs
//   - A progress bar and a spinner for imports
//   - Human-readable formatting for percentages, win rates and dates
//
// Tables use plain ASCII layout and ANSI colors when stdout is a terminal.
package output

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/blackwell-systems/champrules/internal/analyzer"
	"github.com/blackwell-systems/champrules/internal/store"
)

// ANSI color codes for win rate and lift display
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorGray   = "\033[90m"
)

// NoData is shown in place of a win rate for pairs never seen together.
const NoData = "no data"

const dash = "—"

// IsColorEnabled returns true if ANSI color codes should be emitted.
// It checks that os.Stdout is a TTY and that the NO_COLOR env var is not set.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

// colorize wraps text in the given ANSI color code if color is enabled,
// otherwise returns the plain text.
func colorize(color, text string) string {
	if IsColorEnabled() {
		return color + text + colorReset
	}
	return text
}

// RenderRuleSummary renders the one-line header above a rule table.
func RenderRuleSummary(r *analyzer.Report) string {
	th := r.Request.Thresholds
	line := fmt.Sprintf("%d teams, %d champions · support ≥ %s: %d · confidence ≥ %s: %d · lift > 1: %d",
		r.Transactions, r.Champions,
		formatPercent(th.Support), r.SupportRules,
		formatPercent(th.Confidence), r.ConfidenceRules,
		r.LiftRules)
	if r.Skipped > 0 {
		line += fmt.Sprintf(" · %d skipped", r.Skipped)
	}
	return line + "\n"
}

// RenderRuleTable renders mined rules. Metrics that did not pass their
// filter are shown as a dash. Does not sort; rules are expected pre-sorted.
func RenderRuleTable(rules []analyzer.Rule) string {
	if len(rules) == 0 {
		return "No rules passed the thresholds.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-30s %6s %9s %11s %6s  %s\n",
		"Rule", "Games", "Support", "Confidence", "Lift", "Win Rate"))
	sb.WriteString(strings.Repeat("─", 76))
	sb.WriteString("\n")

	for _, r := range rules {
		support := dash
		if r.HasSupport {
			support = formatPercent(r.Support)
		}
		confidence := dash
		if r.HasConfidence {
			confidence = formatPercent(r.Confidence)
		}

		sb.WriteString(fmt.Sprintf("%-30s %6d %9s %11s %s  %s\n",
			truncate(r.Pair.String(), 30),
			r.Games,
			support,
			confidence,
			formatLift(r.Lift, r.HasLift),
			formatWinRate(r.WinRate, r.HasWinRate, r.Wins, r.Games)))
	}

	return sb.String()
}

// RenderPartnerTable renders the partners of one champion.
func RenderPartnerTable(champion string, rules []analyzer.Rule) string {
	if len(rules) == 0 {
		return fmt.Sprintf("No partners found for %s.\n", champion)
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Partners of %s\n\n", champion))
	sb.WriteString(fmt.Sprintf("%-4s %-16s %6s %11s %6s  %s\n",
		"#", "Partner", "Games", "Confidence", "Lift", "Win Rate"))
	sb.WriteString(strings.Repeat("─", 64))
	sb.WriteString("\n")

	for i, r := range rules {
		sb.WriteString(fmt.Sprintf("%-4d %-16s %6d %11s %s  %s\n",
			i+1,
			truncate(string(r.Pair.B), 16),
			r.Games,
			formatPercent(r.Confidence),
			formatLift(r.Lift, r.HasLift),
			formatWinRate(r.WinRate, r.HasWinRate, r.Wins, r.Games)))
	}

	return sb.String()
}

// RenderExplanation renders the full breakdown of one pair.
func RenderExplanation(e *analyzer.PairExplanation) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Pair: %s + %s\n\n", e.A, e.B))
	sb.WriteString(fmt.Sprintf("  Teams:            %d\n", e.Transactions))
	sb.WriteString(fmt.Sprintf("  %-17s %d\n", string(e.A)+":", e.CountA))
	sb.WriteString(fmt.Sprintf("  %-17s %d\n", string(e.B)+":", e.CountB))
	sb.WriteString(fmt.Sprintf("  Together:         %d (expected %.1f if independent)\n", e.Games, e.Expected))
	sb.WriteString(fmt.Sprintf("  Support:          %s\n", formatPercent(e.Forward.Support)))
	sb.WriteString(fmt.Sprintf("  Lift:             %.2f (%s)\n", e.Forward.Lift, e.Association))
	sb.WriteString(fmt.Sprintf("  Win rate:         %s\n",
		formatWinRate(e.Forward.WinRate, e.Forward.HasWinRate, e.Wins, e.Games)))

	sb.WriteString("\nConfidence:\n")
	sb.WriteString(fmt.Sprintf("  %-28s %s\n", e.Forward.Pair.String(), formatPercent(e.Forward.Confidence)))
	sb.WriteString(fmt.Sprintf("  %-28s %s\n", e.Backward.Pair.String(), formatPercent(e.Backward.Confidence)))

	return sb.String()
}

// RenderChampionTable renders pick and win statistics per champion.
func RenderChampionTable(stats []analyzer.ChampionStat, teams int) string {
	if len(stats) == 0 {
		return "No champions found.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%d teams\n\n", teams))
	sb.WriteString(fmt.Sprintf("%-16s %6s %9s %6s  %s\n",
		"Champion", "Picks", "Pick Rate", "Wins", "Win Rate"))
	sb.WriteString(strings.Repeat("─", 56))
	sb.WriteString("\n")

	for _, s := range stats {
		sb.WriteString(fmt.Sprintf("%-16s %6d %9s %6d  %s\n",
			truncate(string(s.Champion), 16),
			s.Picks,
			formatPercent(s.PickRate),
			s.Wins,
			formatWinRate(s.WinRate, s.Picks > 0, s.Wins, s.Picks)))
	}

	return sb.String()
}

// RenderImportTable renders stored imports, in the order given.
func RenderImportTable(imports []*store.Import) string {
	if len(imports) == 0 {
		return "No imports found.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-8s %-8s %-7s %-8s %-15s %s\n",
		"ID", "Region", "Teams", "Skipped", "Imported", "Source"))
	sb.WriteString(strings.Repeat("─", 80))
	sb.WriteString("\n")

	for _, imp := range imports {
		region := imp.Region
		if region == "" {
			region = dash
		}
		sb.WriteString(fmt.Sprintf("%-8s %-8s %-7d %-8d %-15s %s\n",
			ShortID(imp.ID),
			truncate(region, 8),
			imp.TeamCount,
			imp.SkippedRows,
			formatRelativeTime(imp.ImportedAt),
			truncateLeft(imp.Source, 32)))
	}

	return sb.String()
}

// RenderRunTable renders recorded mining runs, in the order given.
func RenderRunTable(runs []*store.MiningRun) string {
	if len(runs) == 0 {
		return "No mining runs recorded.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-5s %-15s %-8s %9s %11s %7s %6s %5s\n",
		"ID", "Created", "Import", "Support", "Confidence", "Teams", "Rules", "Lift"))
	sb.WriteString(strings.Repeat("─", 74))
	sb.WriteString("\n")

	for _, run := range runs {
		imp := "all"
		if run.ImportID != "" {
			imp = ShortID(run.ImportID)
		}
		sb.WriteString(fmt.Sprintf("%-5d %-15s %-8s %9s %11s %7d %6d %5d\n",
			run.ID,
			formatRelativeTime(run.CreatedAt),
			imp,
			formatPercent(run.SupportThreshold),
			formatPercent(run.ConfidenceThreshold),
			run.Transactions,
			run.ConfidenceRules,
			run.LiftRules))
	}

	return sb.String()
}

// ShortID returns the first 8 characters of an import ID.
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

// formatPercent formats a 0-100 value, dropping trailing zeros.
func formatPercent(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	return s + "%"
}

// formatLift formats lift in a 6-wide column, colored when above 1.
func formatLift(lift float64, ok bool) string {
	if !ok {
		return fmt.Sprintf("%6s", dash)
	}
	text := fmt.Sprintf("%6.2f", lift)
	if lift > 1 {
		return colorize(colorGreen, text)
	}
	return text
}

// formatWinRate formats a 0-1 win rate with its record, e.g. "56.3% (9/16)".
// Pairs with no games render as NoData.
func formatWinRate(rate float64, ok bool, wins, games int) string {
	if !ok {
		return colorize(colorGray, NoData)
	}
	text := fmt.Sprintf("%.1f%% (%d/%d)", rate*100, wins, games)
	return colorize(winRateColor(rate), text)
}

// winRateColor returns the ANSI color code for a win rate.
func winRateColor(rate float64) string {
	switch {
	case rate >= 0.55:
		return colorGreen
	case rate >= 0.45:
		return colorYellow
	default:
		return colorRed
	}
}

// formatRelativeTime converts a timestamp to relative time (e.g., "2 days ago").
func formatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}

	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return plural(int(diff.Minutes()), "minute")
	case diff < 24*time.Hour:
		return plural(int(diff.Hours()), "hour")
	case diff < 7*24*time.Hour:
		return plural(int(diff.Hours()/24), "day")
	case diff < 30*24*time.Hour:
		return plural(int(diff.Hours()/24/7), "week")
	case diff < 365*24*time.Hour:
		return plural(int(diff.Hours()/24/30), "month")
	default:
		return plural(int(diff.Hours()/24/365), "year")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit + " ago"
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// truncate truncates a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// truncateLeft keeps the end of s, which for paths is the file name.
func truncateLeft(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[len(s)-maxLen:]
	}
	return "..." + s[len(s)-maxLen+3:]
}
