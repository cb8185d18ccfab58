package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/zhouzirui/startup-mentor/backend/internal/model/chat"
	"github.com/zhouzirui/startup-mentor/backend/internal/model/mentor"
	"github.com/zhouzirui/startup-mentor/backend/internal/service/ai"
	chatService "github.com/zhouzirui/startup-mentor/backend/internal/service/chat"
)

var (
	textMuted  = lipgloss.Color("#6B7280")
	brandError = lipgloss.Color("#EF4444")

	titleStyle = lipgloss.NewStyle().
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(textMuted).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(brandError).
			Bold(true)

	promptStyle = lipgloss.NewStyle().
			Foreground(textMuted)
)

func accentStyle(m mentor.Mentor) lipgloss.Style {
	style := lipgloss.NewStyle().Bold(true)
	if m.Accent != "" {
		style = style.Foreground(lipgloss.Color(m.Accent))
	}
	return style
}

func renderMentorCard(out io.Writer, m mentor.Mentor) {
	fmt.Fprintf(out, "%s %s\n", accentStyle(m).Render(m.Name), mutedStyle.Render("("+m.ID+")"))
	fmt.Fprintf(out, "  %s\n", m.Role)
	if m.Description != "" {
		fmt.Fprintf(out, "  %s\n", m.Description)
	}
	if len(m.Expertise) > 0 {
		fmt.Fprintf(out, "  %s\n", mutedStyle.Render(strings.Join(m.Expertise, " · ")))
	}
}

func renderHistory(out io.Writer, history []chat.Turn) {
	if len(history) == 0 {
		fmt.Fprintln(out, mutedStyle.Render("no settled turns yet"))
		return
	}
	for _, turn := range history {
		fmt.Fprintf(out, "%s %s\n", titleStyle.Render(string(turn.Role)+":"), turn.Text)
	}
}

func renderDossier(out io.Writer, m mentor.Mentor, d *ai.Dossier) {
	heading := accentStyle(m)
	section := func(title, body string) {
		fmt.Fprintln(out, heading.Render(title))
		fmt.Fprintf(out, "  %s\n\n", body)
	}

	section("Perspective", d.Perspective)
	section("Problem", d.Problem)
	section("Solution", d.Solution)
	section("Evaluation", d.Evaluation)

	fmt.Fprintln(out, heading.Render("Plan"))
	for i, step := range d.Plan {
		fmt.Fprintf(out, "  %d. %s\n", i+1, step)
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, heading.Render("Tech Stack"))
	fmt.Fprintf(out, "  frontend: %s\n  backend: %s\n  database: %s\n  ai: %s\n  hosting: %s\n\n",
		d.TechStack.Frontend, d.TechStack.Backend, d.TechStack.Database, d.TechStack.AI, d.TechStack.Hosting)

	section("Growth Strategy", d.GrowthStrategy)
	fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("%q  %s", d.FinalAdvice, m.Name)))
}

// transcriptRenderer prints controller events as they happen.
type transcriptRenderer struct {
	out    io.Writer
	name   string
	accent lipgloss.Style
}

func newTranscriptRenderer(out io.Writer, m mentor.Mentor) *transcriptRenderer {
	return &transcriptRenderer{out: out, name: m.Name, accent: accentStyle(m)}
}

func (r *transcriptRenderer) Handle(ev chatService.Event) {
	switch ev.Kind {
	case chatService.EventAppended:
		if ev.Message.Sender == chat.SenderMentor {
			fmt.Fprintf(r.out, "%s %s ", mutedStyle.Render(ev.Message.Timestamp), r.accent.Render(r.name+">"))
		}
	case chatService.EventFragment:
		fmt.Fprint(r.out, ev.Fragment)
	case chatService.EventSettled:
		fmt.Fprintln(r.out)
	case chatService.EventFailed:
		fmt.Fprintln(r.out)
		fmt.Fprintln(r.out, errorStyle.Render(ev.Message.Content))
	}
}
