package mentor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadCatalogEmptyPathUsesSeed(t *testing.T) {
	mentors, err := LoadCatalog("")
	require.NoError(t, err)
	require.Equal(t, Seed(), mentors)
}

func TestLoadCatalogFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mentors.yaml")
	content := `
mentors:
  - id: grace
    name: Grace Hopper
    role: Rear Admiral, US Navy
    description: Compiler pioneer.
    personality: Blunt and pragmatic.
    experience: Built the first compiler.
    expertise: [COBOL, Compilers]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	mentors, err := LoadCatalog(path)
	require.NoError(t, err)
	require.Len(t, mentors, 1)
	require.Equal(t, "Grace Hopper", mentors[0].Name)
	require.Equal(t, []string{"COBOL", "Compilers"}, mentors[0].Expertise)
}

func TestParseCatalogRejectsInvalidEntries(t *testing.T) {
	cases := map[string]string{
		"empty":     "mentors: []",
		"no id":     "mentors:\n  - name: Anonymous\n",
		"no name":   "mentors:\n  - id: x\n",
		"duplicate": "mentors:\n  - id: a\n    name: A\n  - id: a\n    name: B\n",
		"malformed": "mentors: [",
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(content))
			require.ErrorIs(t, err, ErrInvalidCatalog)
		})
	}
}
