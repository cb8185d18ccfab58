package ai

import (
	"fmt"
	"strings"

	"github.com/zhouzirui/startup-mentor/backend/internal/model/mentor"
)

// PromptTemplate holds optional per-mentor voice hints layered on top of the base persona.
type PromptTemplate struct {
	SignatureHints []string
}

// PersonaPromptManager maps mentor records to system instructions.
// Every output is a pure function of the mentor and the built-in hints.
type PersonaPromptManager struct {
	templates map[string]*PromptTemplate
}

// NewPersonaPromptManager creates a new prompt manager with default hints.
func NewPersonaPromptManager() *PersonaPromptManager {
	manager := &PersonaPromptManager{
		templates: make(map[string]*PromptTemplate),
	}
	manager.loadDefaultTemplates()
	return manager
}

// GetPromptTemplate returns the hint template for a mentor, if any.
func (pm *PersonaPromptManager) GetPromptTemplate(mentorID string) (*PromptTemplate, bool) {
	template, ok := pm.templates[mentorID]
	return template, ok
}

// BuildChatInstruction creates the system instruction for streaming chat turns.
func (pm *PersonaPromptManager) BuildChatInstruction(m mentor.Mentor) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s. Continue the mentorship session.\n", m.Name)
	b.WriteString(pm.personaBlock(m))
	b.WriteString(`
Maintain your signature voice, personality, and strategic bias.
Keep responses concise, professional, and insightful.`)
	b.WriteString(pm.hintBlock(m.ID))
	b.WriteString(`

SPECIAL COMMAND: If the user asks for a 'slide', 'ppt', or 'summary', respond with an executive summary that puts the Problem and the Solution first.`)
	return b.String()
}

// BuildDossierInstruction creates the system instruction for the one-shot dossier.
func (pm *PersonaPromptManager) BuildDossierInstruction(m mentor.Mentor) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are playing the role of %s.\n", m.Name)
	b.WriteString(pm.personaBlock(m))
	b.WriteString(`
TASK: Provide high-fidelity mentorship for the startup vision the user describes.

VOICE GUIDELINES:
- Respond entirely in your signature voice.
- Be direct and professional. Deliver the hard truths.`)
	b.WriteString(pm.hintBlock(m.ID))
	b.WriteString(`

RESPONSE REQUIREMENTS (JSON keys in parentheses):
1. PERSPECTIVE (perspective): analysis of the concept.
2. PROBLEM (problem): a hard-hitting 1-2 sentence problem statement.
3. SOLUTION (solution): a crisp 1-2 sentence value proposition.
4. EVALUATION (evaluation): deep audit identifying bottlenecks.
5. PLAN (plan): a 5-step roadmap as an array of strings.
6. TECH STACK (techStack): object with frontend, backend, database, ai, hosting.
7. GROWTH STRATEGY (growthStrategy): scaling and moat logic.
8. FINAL ADVICE (finalAdvice): a signature closing quote.

OUTPUT FORMAT: respond with a single valid JSON object only. No markdown, no code blocks, no extra keys.`)
	return b.String()
}

// FormatIdea wraps the founder's pitch for the dossier user turn.
func FormatIdea(idea string) string {
	return "Startup Vision: " + strings.TrimSpace(idea)
}

// IsSummaryRequest reports whether the text triggers the executive-summary command.
func IsSummaryRequest(text string) bool {
	lower := strings.ToLower(text)
	for _, keyword := range []string{"slide", "ppt", "summary"} {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

func (pm *PersonaPromptManager) personaBlock(m mentor.Mentor) string {
	return fmt.Sprintf(`Professional Background: %s
Philosophy: %s
Personality: %s
`, m.Experience, m.Description, m.Personality)
}

func (pm *PersonaPromptManager) hintBlock(mentorID string) string {
	template, ok := pm.GetPromptTemplate(mentorID)
	if !ok || len(template.SignatureHints) == 0 {
		return ""
	}
	return "\n\nSignature habits:\n- " + strings.Join(template.SignatureHints, "\n- ")
}

// loadDefaultTemplates loads voice hints for the built-in mentors.
func (pm *PersonaPromptManager) loadDefaultTemplates() {
	pm.templates["elon"] = &PromptTemplate{
		SignatureHints: []string{
			"Reduce every problem to physics and unit economics before discussing strategy",
			"Push for vertical integration and a 10x better product",
			"Set aggressive timelines and question every requirement",
		},
	}
	pm.templates["sundar"] = &PromptTemplate{
		SignatureHints: []string{
			"Frame the opportunity around billions of users and information access",
			"Favour platforms, partnerships and an AI-first roadmap",
		},
	}
	pm.templates["sam_altman"] = &PromptTemplate{
		SignatureHints: []string{
			"Ask whether the idea gets better as models improve",
			"Stress talking to users and moving fast",
		},
	}
	pm.templates["bill_gates"] = &PromptTemplate{
		SignatureHints: []string{
			"Think in platforms, standards and licensing leverage",
			"Quantify impact and probe the system-level bottlenecks",
		},
	}
	pm.templates["jeff_bezos"] = &PromptTemplate{
		SignatureHints: []string{
			"Work backwards from the customer",
			"Describe the flywheel and what stays constant in ten years",
		},
	}
	pm.templates["pavel_durov"] = &PromptTemplate{
		SignatureHints: []string{
			"Defend user privacy and platform neutrality",
			"Prefer a tiny elite team and ruthless performance",
		},
	}
}
