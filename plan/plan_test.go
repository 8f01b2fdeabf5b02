package plan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specstream/specstream/types"
)

const validPlan = `
features:
  - name: key management
    path: features/keys.feature
    location:
      line: 1
    scenarios:
      - name: generate keys
        location:
          line: 3
        steps:
          - kind: given
            text: a vault is running
            location:
              line: 4
              column: 5
          - kind: when
            text: keys are generated
            table:
              rows:
                - [type, bits]
                - [rsa, "4096"]
                - [ed25519, "256"]
              location:
                line: 6
          - kind: then
            text: the keys are stored
`

func TestParse(t *testing.T) {
	features, err := Parse([]byte(validPlan))
	require.NoError(t, err)
	require.Len(t, features, 1)

	f := features[0]
	assert.Equal(t, "key management", f.Name)
	assert.Equal(t, "features/keys.feature", f.Path)
	require.NotNil(t, f.Location)
	assert.Equal(t, 1, f.Location.Line)

	require.Len(t, f.Scenarios, 1)
	sc := f.Scenarios[0]
	assert.Equal(t, "generate keys", sc.Name)
	require.Len(t, sc.Steps, 3)

	assert.Equal(t, types.StepKindGiven, sc.Steps[0].Kind)
	assert.Equal(t, "a vault is running", sc.Steps[0].Text)
	assert.Equal(t, "4:5", sc.Steps[0].Location.String())

	require.NotNil(t, sc.Steps[1].Table)
	assert.Equal(t, [][]string{
		{"type", "bits"},
		{"rsa", "4096"},
		{"ed25519", "256"},
	}, sc.Steps[1].Table.Rows)
	assert.Equal(t, 6, sc.Steps[1].Table.Location.Line)

	assert.Equal(t, types.StepKindThen, sc.Steps[2].Kind)
	assert.Nil(t, sc.Steps[2].Table)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "not yaml",
			yaml:    "{features: [",
			wantErr: "parsing plan file",
		},
		{
			name:    "no features",
			yaml:    "features: []",
			wantErr: "no features",
		},
		{
			name: "unnamed feature",
			yaml: `
features:
  - scenarios: []
`,
			wantErr: "feature 0 has no name",
		},
		{
			name: "unnamed scenario",
			yaml: `
features:
  - name: f
    scenarios:
      - steps: []
`,
			wantErr: "scenario 0 has no name",
		},
		{
			name: "bad step kind",
			yaml: `
features:
  - name: f
    scenarios:
      - name: s
        steps:
          - kind: and
            text: whatever
`,
			wantErr: "step 0",
		},
		{
			name: "empty step text",
			yaml: `
features:
  - name: f
    scenarios:
      - name: s
        steps:
          - kind: given
            text: ""
`,
			wantErr: "step has no text",
		},
		{
			name: "empty table row",
			yaml: `
features:
  - name: f
    scenarios:
      - name: s
        steps:
          - kind: given
            text: a table
            table:
              rows:
                - [a, b]
                - []
`,
			wantErr: "table row 1 is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseKeywordStepKinds(t *testing.T) {
	features, err := Parse([]byte(`
features:
  - name: f
    scenarios:
      - name: s
        steps:
          - kind: Given
            text: a
          - kind: when
            text: b
`))
	require.NoError(t, err)
	assert.Equal(t, types.StepKindGiven, features[0].Scenarios[0].Steps[0].Kind)
	assert.Equal(t, types.StepKindWhen, features[0].Scenarios[0].Steps[1].Kind)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validPlan), 0o644))

	features, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, features, 1)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading plan file")
}
