package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/neonsnake/internal/controller"
)

const hudWidth = 30

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("14"))
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Width(9)
	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Bold(true)
	highStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true)
	trainingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("13")).
			Bold(true)
	alertStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)
	commentaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("13")).
			Italic(true).
			Width(hudWidth)
	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
	hudStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Width(hudWidth + 4)
)

// renderHUD renders the side panel for snap.
func renderHUD(snap controller.Snapshot) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("N E O N   S N A K E"))
	b.WriteString("\n\n")

	modeStyle := valueStyle
	if snap.Mode == controller.ModeTraining {
		modeStyle = trainingStyle
	}
	hudRow(&b, "MODE", modeStyle.Render(snap.Mode.String()))
	hudRow(&b, "STATUS", valueStyle.Render(snap.Status.String()))
	hudRow(&b, "SCORE", valueStyle.Render(fmt.Sprintf("%d", snap.Score)))

	if snap.Mode == controller.ModeTraining {
		b.WriteString("\n")
		hudRow(&b, "EPISODE", trainingStyle.Render(fmt.Sprintf("%d", snap.Episode)))
		hudRow(&b, "EPSILON", trainingStyle.Render(fmt.Sprintf("%.3f", snap.Epsilon)))
		hudRow(&b, "BEST", trainingStyle.Render(fmt.Sprintf("%d", snap.BestTraining)))
		hudRow(&b, "STATES", trainingStyle.Render(fmt.Sprintf("%d", snap.TableSize)))
		hudRow(&b, "TICK", valueStyle.Render(snap.Interval.String()))
	} else {
		hudRow(&b, "HIGH", highStyle.Render(fmt.Sprintf("%d", snap.HighScore)))
		hudRow(&b, "TICK", valueStyle.Render(snap.Interval.String()))
	}

	b.WriteString("\n")
	switch snap.Status {
	case controller.StatusIdle:
		if snap.Mode == controller.ModeTraining {
			b.WriteString(hintStyle.Render("Press enter to start training."))
		} else {
			b.WriteString(hintStyle.Render("Press enter to play."))
		}
	case controller.StatusPlaying:
		if snap.Mode == controller.ModeTraining {
			b.WriteString(hintStyle.Render("The agent is learning. Esc stops."))
		}
	case controller.StatusGameOver:
		b.WriteString(alertStyle.Render("GAME OVER"))
		b.WriteString("\n")
		hudRow(&b, "FINAL", valueStyle.Render(fmt.Sprintf("%d", snap.FinalScore)))
		b.WriteString("\n")
		if snap.CommentaryPending {
			b.WriteString(commentaryStyle.Render("Analyzing performance..."))
		} else if snap.Commentary != "" {
			b.WriteString(commentaryStyle.Render(fmt.Sprintf("%q", snap.Commentary)))
		}
		b.WriteString("\n\n")
		b.WriteString(hintStyle.Render("Enter to retry, esc for menu."))
	}

	return hudStyle.Render(b.String())
}

func hudRow(b *strings.Builder, label, value string) {
	b.WriteString(labelStyle.Render(label))
	b.WriteString(value)
	b.WriteString("\n")
}
