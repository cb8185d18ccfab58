package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/startup-mentor/backend/internal/model/chat"
	"github.com/zhouzirui/startup-mentor/backend/internal/model/mentor"
)

// ScriptedTransport is a rule-based stand-in that needs no network access.
// Replies are assembled from the mentor record and streamed word by word.
type ScriptedTransport struct {
	delay   time.Duration
	prompts *PersonaPromptManager
}

// NewScriptedTransport returns a transport that pauses delay between fragments.
func NewScriptedTransport(delay time.Duration) *ScriptedTransport {
	return &ScriptedTransport{delay: delay, prompts: NewPersonaPromptManager()}
}

// Name implements Transport.
func (t *ScriptedTransport) Name() string { return "scripted" }

// Generate implements Transport. The dossier goes through ParseDossier like any
// remote payload so the validation path stays identical.
func (t *ScriptedTransport) Generate(ctx context.Context, req DossierRequest) (*Dossier, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailure, err)
	}

	idea := strings.TrimSpace(req.Idea)
	m := req.Mentor
	dossier := Dossier{
		Perspective: fmt.Sprintf("%s reviewing %q through the lens of: %s", m.Name, idea, m.Description),
		Problem:     fmt.Sprintf("The market behind %q is underserved and nobody has attacked it from first principles.", idea),
		Solution:    fmt.Sprintf("Ship the smallest product that proves %q, then compound on it.", idea),
		Evaluation:  fmt.Sprintf("Bottlenecks: distribution, unit economics, and team focus. %s", m.Personality),
		Plan: []string{
			"Interview twenty target customers this week",
			"Build a prototype that solves the single sharpest pain",
			"Charge from day one to validate willingness to pay",
			"Instrument retention and iterate weekly",
			"Raise only once the growth loop is visible",
		},
		TechStack: TechStack{
			Frontend: "React",
			Backend:  "Go",
			Database: "PostgreSQL",
			AI:       "Hosted LLM API",
			Hosting:  "Managed cloud",
		},
		GrowthStrategy: fmt.Sprintf("Lean on %s to build a moat.", strings.Join(m.Expertise, ", ")),
		FinalAdvice:    t.signatureLine(m),
	}

	raw, err := json.Marshal(dossier)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailure, err)
	}
	return ParseDossier(string(raw))
}

// StreamChat implements Transport.
func (t *ScriptedTransport) StreamChat(ctx context.Context, req ChatRequest) (*schema.StreamReader[string], error) {
	reply := t.Reply(req)
	fragments := strings.SplitAfter(reply, " ")

	return pumpFragments(func(emit func(string) bool) error {
		for _, fragment := range fragments {
			if t.delay > 0 {
				timer := time.NewTimer(t.delay)
				select {
				case <-ctx.Done():
					timer.Stop()
					return fmt.Errorf("%w: %v", ErrStreamFailure, ctx.Err())
				case <-timer.C:
				}
			} else if err := ctx.Err(); err != nil {
				return fmt.Errorf("%w: %v", ErrStreamFailure, err)
			}
			if !emit(fragment) {
				return nil
			}
		}
		return nil
	}), nil
}

// Reply renders the full scripted answer for a turn.
func (t *ScriptedTransport) Reply(req ChatRequest) string {
	m := req.Mentor
	text := strings.TrimSpace(req.UserText)

	if IsSummaryRequest(text) {
		pitch := firstUserTurn(req.History)
		if pitch == "" {
			pitch = text
		}
		return fmt.Sprintf("Executive summary from %s. Problem: %q is not solved well today. Solution: a focused product that proves it fast, built with %s.",
			m.Name, pitch, strings.Join(m.Expertise, ", "))
	}

	turn := len(req.History)/2 + 1
	return fmt.Sprintf("%s here, point %d. On %q: %s %s",
		m.Name, turn, text, t.signatureLine(m), m.Personality)
}

func (t *ScriptedTransport) signatureLine(m mentor.Mentor) string {
	if template, ok := t.prompts.GetPromptTemplate(m.ID); ok && len(template.SignatureHints) > 0 {
		return template.SignatureHints[0] + "."
	}
	return m.Description
}

func firstUserTurn(history []chat.Turn) string {
	for _, turn := range history {
		if turn.Role == chat.RoleUser {
			return turn.Text
		}
	}
	return ""
}
