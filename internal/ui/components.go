package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/wahlandcase/jira-release/internal/models"
)

// SectionHeader creates a styled section header with a title and color
// Example: "─── TITLE ───────────"
func SectionHeader(title string, color lipgloss.Color) string {
	dashes := strings.Repeat("─", max(25-len(title), 0))
	headerStyle := lipgloss.NewStyle().Foreground(color)
	titleStyle := lipgloss.NewStyle().Foreground(color).Bold(true)

	return fmt.Sprintf("%s%s%s",
		headerStyle.Render("─── "),
		titleStyle.Render(title),
		headerStyle.Render(" "+dashes),
	)
}

// Notice renders a one-line status message in the given color
func Notice(msg string, color lipgloss.Color) string {
	return lipgloss.NewStyle().Foreground(color).Render(msg)
}

// Prompt renders a confirmation question, issue keys and environment highlighted by the caller
func Prompt(question string) string {
	return lipgloss.NewStyle().Foreground(ColorWhite).Bold(true).Render(question)
}

// YesNoButtons creates interactive Yes/No buttons
// selection: 0 for Yes, 1 for No
func YesNoButtons(selection int) string {
	yesColor, noColor := ColorDarkGray, ColorDarkGray
	yesText, noText := ColorWhite, ColorWhite
	iconYes, iconNo := " ", " "

	if selection == 0 {
		yesColor, yesText, iconYes = ColorGreen, ColorGreen, ">"
	} else {
		noColor, noText, iconNo = ColorRed, ColorRed, ">"
	}

	yesStyle := lipgloss.NewStyle().Foreground(yesColor)
	yesTextStyle := lipgloss.NewStyle().Foreground(yesText).Bold(true)
	noStyle := lipgloss.NewStyle().Foreground(noColor)
	noTextStyle := lipgloss.NewStyle().Foreground(noText).Bold(true)

	line1 := yesStyle.Render("  ┌────────┐") + " " + noStyle.Render("┌───────┐")
	line2 := fmt.Sprintf("%s%s%s %s%s%s",
		yesStyle.Render("  │"),
		yesTextStyle.Render(fmt.Sprintf(" %s  YES ", yesStyle.Render(iconYes))),
		yesStyle.Render("│"),
		noStyle.Render("│"),
		noTextStyle.Render(fmt.Sprintf(" %s  NO ", noStyle.Render(iconNo))),
		noStyle.Render("│"),
	)
	line3 := yesStyle.Render("  └────────┘") + " " + noStyle.Render("└───────┘")

	return line1 + "\n" + line2 + "\n" + line3
}

// KeyBinding renders a key binding hint
func KeyBinding(key, description string, color lipgloss.Color) string {
	keyStyle := lipgloss.NewStyle().Foreground(color).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(ColorWhite)

	return fmt.Sprintf("%s %s",
		keyStyle.Render(key),
		descStyle.Render(description),
	)
}

// StatusIcon returns the icon, label and color for a workflow step outcome
func StatusIcon(status models.StepStatus) (string, string, lipgloss.Color) {
	switch {
	case models.IsStatusDone(status):
		return "✓", "done", ColorGreen
	case models.IsStatusDeclined(status):
		return "○", "skipped", ColorYellow
	case models.IsStatusNotApplicable(status):
		return "–", "not applicable (" + models.GetStatusReason(status) + ")", ColorMagenta
	default:
		return "·", "not run", ColorDarkGray
	}
}

func renderStep(name string, status models.StepStatus) string {
	icon, label, color := StatusIcon(status)
	return lipgloss.NewStyle().Foreground(color).Render(fmt.Sprintf("%s %s %s", icon, name, label))
}

// RenderSummary renders the per-issue outcome table printed at the end of a run
func RenderSummary(environment string, results []models.IssueResult) string {
	var lines []string
	lines = append(lines, SectionHeader("SUMMARY "+environment, EnvironmentColor(environment)))

	keyStyle := lipgloss.NewStyle().Foreground(ColorCyan).Bold(true)
	width := 0
	for _, r := range results {
		width = max(width, len(r.Issue))
	}

	for _, r := range results {
		parts := []string{renderStep("comment", r.Comment)}
		if !models.IsStatusNotRun(r.Close) {
			step := renderStep("close", r.Close)
			if models.IsStatusDone(r.Close) && r.Resolution != "" {
				step += Notice(" as "+r.Resolution, ColorGreen)
			}
			parts = append(parts, step)
		}
		key := keyStyle.Render(r.Issue + strings.Repeat(" ", width-len(r.Issue)))
		lines = append(lines, "  "+key+"  "+strings.Join(parts, "   "))
	}

	return strings.Join(lines, "\n")
}

// RenderCommits lists commits and the issue each references, for dry runs
func RenderCommits(commits []models.CommitInfo) string {
	hashStyle := lipgloss.NewStyle().Foreground(ColorYellow)
	issueStyle := lipgloss.NewStyle().Foreground(ColorCyan).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(ColorDarkGray)

	var lines []string
	for _, c := range commits {
		issue := dimStyle.Render("-")
		if c.HasIssue() {
			issue = issueStyle.Render(c.Issue)
		}
		lines = append(lines, fmt.Sprintf("  %s  %s  %s", hashStyle.Render(c.Hash), issue, c.Summary))
	}
	return strings.Join(lines, "\n")
}
