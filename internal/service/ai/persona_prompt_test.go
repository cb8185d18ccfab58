package ai

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/startup-mentor/backend/internal/model/mentor"
)

func seedMentor(t *testing.T, id string) mentor.Mentor {
	t.Helper()
	m, ok := mentor.NewMemoryStore(mentor.Seed()).FindByID(id)
	require.True(t, ok)
	return m
}

func TestBuildChatInstructionCarriesPersona(t *testing.T) {
	pm := NewPersonaPromptManager()

	for _, m := range mentor.Seed() {
		instruction := pm.BuildChatInstruction(m)
		require.Contains(t, instruction, m.Name)
		require.Contains(t, instruction, m.Experience)
		require.Contains(t, instruction, m.Description)
		require.Contains(t, instruction, m.Personality)
		require.Contains(t, instruction, "SPECIAL COMMAND")
		require.Equal(t, instruction, pm.BuildChatInstruction(m))
	}
}

func TestBuildDossierInstructionListsSections(t *testing.T) {
	pm := NewPersonaPromptManager()
	instruction := pm.BuildDossierInstruction(seedMentor(t, "jeff_bezos"))

	for _, key := range []string{"perspective", "problem", "solution", "evaluation", "plan", "techStack", "growthStrategy", "finalAdvice"} {
		require.Contains(t, instruction, "("+key+")")
	}
	require.Contains(t, instruction, "JSON object only")
}

func TestSignatureHintsOnlyForKnownMentors(t *testing.T) {
	pm := NewPersonaPromptManager()

	_, ok := pm.GetPromptTemplate("elon")
	require.True(t, ok)

	custom := mentor.Mentor{ID: "ada", Name: "Ada Lovelace", Description: "Analytical engine pioneer"}
	require.NotContains(t, pm.BuildChatInstruction(custom), "Signature habits")
}

func TestIsSummaryRequest(t *testing.T) {
	require.True(t, IsSummaryRequest("Can you make a SLIDE for this?"))
	require.True(t, IsSummaryRequest("ppt please"))
	require.True(t, IsSummaryRequest("Give me the summary"))
	require.False(t, IsSummaryRequest("How do I hire?"))
}

func TestFormatIdea(t *testing.T) {
	require.Equal(t, "Startup Vision: pet rockets", FormatIdea("  pet rockets "))
}
