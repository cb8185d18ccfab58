package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// TechStack is the stack recommendation section of a dossier.
type TechStack struct {
	Frontend string `json:"frontend"`
	Backend  string `json:"backend"`
	Database string `json:"database"`
	AI       string `json:"ai"`
	Hosting  string `json:"hosting"`
}

// Dossier is the structured one-shot mentorship result.
type Dossier struct {
	Perspective    string    `json:"perspective"`
	Problem        string    `json:"problem"`
	Solution       string    `json:"solution"`
	Evaluation     string    `json:"evaluation"`
	Plan           []string  `json:"plan"`
	TechStack      TechStack `json:"techStack"`
	GrowthStrategy string    `json:"growthStrategy"`
	FinalAdvice    string    `json:"finalAdvice"`
}

// DossierSchema is the JSON Schema every dossier payload must satisfy.
const DossierSchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["perspective", "problem", "solution", "evaluation", "plan", "techStack", "growthStrategy", "finalAdvice"],
  "properties": {
    "perspective": {"type": "string"},
    "problem": {"type": "string"},
    "solution": {"type": "string"},
    "evaluation": {"type": "string"},
    "plan": {"type": "array", "minItems": 1, "items": {"type": "string"}},
    "techStack": {
      "type": "object",
      "additionalProperties": false,
      "required": ["frontend", "backend", "database", "ai", "hosting"],
      "properties": {
        "frontend": {"type": "string"},
        "backend": {"type": "string"},
        "database": {"type": "string"},
        "ai": {"type": "string"},
        "hosting": {"type": "string"}
      }
    },
    "growthStrategy": {"type": "string"},
    "finalAdvice": {"type": "string"}
  }
}`

var dossierSchema = mustCompileSchema(DossierSchema)

func mustCompileSchema(src string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("compile dossier schema: %v", err))
	}
	return schema
}

// ParseDossier extracts, validates and decodes a dossier from raw model output.
// Errors always wrap ErrGenerationFailure.
func ParseDossier(raw string) (*Dossier, error) {
	payload, err := extractJSONObject(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailure, err)
	}

	result, err := dossierSchema.Validate(gojsonschema.NewStringLoader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid json: %v", ErrGenerationFailure, err)
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return nil, fmt.Errorf("%w: schema mismatch: %s", ErrGenerationFailure, strings.Join(problems, "; "))
	}

	var dossier Dossier
	if err := json.Unmarshal([]byte(payload), &dossier); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrGenerationFailure, err)
	}
	return &dossier, nil
}

// extractJSONObject trims prose or code fences around the outermost object.
func extractJSONObject(content string) (string, error) {
	trimmed := strings.TrimSpace(content)
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end <= start {
		return "", fmt.Errorf("missing json object")
	}
	return trimmed[start : end+1], nil
}
