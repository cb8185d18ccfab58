package ai

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const validDossier = `{
  "perspective": "Think bigger.",
  "problem": "Pets cannot hail rides.",
  "solution": "Autonomous pet shuttles.",
  "evaluation": "Regulation is the bottleneck.",
  "plan": ["Prototype", "Pilot", "Raise", "Scale", "Expand"],
  "techStack": {"frontend": "React", "backend": "Go", "database": "Postgres", "ai": "Vision", "hosting": "GCP"},
  "growthStrategy": "City by city.",
  "finalAdvice": "Go fast."
}`

func TestParseDossier(t *testing.T) {
	dossier, err := ParseDossier(validDossier)
	require.NoError(t, err)
	require.Equal(t, "Pets cannot hail rides.", dossier.Problem)
	require.Len(t, dossier.Plan, 5)
	require.Equal(t, "Go", dossier.TechStack.Backend)
}

func TestParseDossierToleratesFences(t *testing.T) {
	raw := "Here you go:\n```json\n" + validDossier + "\n```"
	dossier, err := ParseDossier(raw)
	require.NoError(t, err)
	require.Equal(t, "Go fast.", dossier.FinalAdvice)
}

func TestParseDossierRejects(t *testing.T) {
	cases := map[string]string{
		"not json":      "the mentor is thinking",
		"broken json":   `{"perspective": "x",`,
		"missing field": `{"perspective": "x", "problem": "y"}`,
		"extra field": `{"perspective": "a", "problem": "b", "solution": "c", "evaluation": "d", "plan": ["e"],
			"techStack": {"frontend": "f", "backend": "g", "database": "h", "ai": "i", "hosting": "j"},
			"growthStrategy": "k", "finalAdvice": "l", "mood": "happy"}`,
		"empty plan": `{"perspective": "a", "problem": "b", "solution": "c", "evaluation": "d", "plan": [],
			"techStack": {"frontend": "f", "backend": "g", "database": "h", "ai": "i", "hosting": "j"},
			"growthStrategy": "k", "finalAdvice": "l"}`,
		"partial stack": `{"perspective": "a", "problem": "b", "solution": "c", "evaluation": "d", "plan": ["e"],
			"techStack": {"frontend": "f"}, "growthStrategy": "k", "finalAdvice": "l"}`,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseDossier(raw)
			require.ErrorIs(t, err, ErrGenerationFailure)
		})
	}
}
