package reporting

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/specstream/specstream/types"
)

func TestRenderSummary(t *testing.T) {
	result := &types.FeatureResult{
		Name:     "auth",
		Status:   types.StatusFail,
		Duration: 2500 * time.Millisecond,
		Stats:    types.Stats{Total: 5, Passed: 3, Failed: 1, Skipped: 1},
		Scenarios: []types.ScenarioResult{
			{
				Name:     "login succeeds",
				Status:   types.StatusPass,
				Duration: time.Second,
				Steps: []types.StepOutcome{
					{Status: types.StatusPass},
					{Status: types.StatusPass},
					{Status: types.StatusPass},
				},
			},
			{
				Name:     "login fails",
				Status:   types.StatusFail,
				Duration: 1500 * time.Millisecond,
				Steps: []types.StepOutcome{
					{Status: types.StatusFail, Err: errors.New("wrong password")},
					{Status: types.StatusSkip},
				},
			},
		},
	}

	var buf bytes.Buffer
	RenderSummary(&buf, result)
	out := buf.String()

	assert.Contains(t, out, "Scenario Results: auth (2.5s)")
	assert.Contains(t, out, "login succeeds")
	assert.Contains(t, out, "login fails")
	assert.Contains(t, out, "wrong password")
	assert.Contains(t, out, "✓ pass")
	assert.Contains(t, out, "✗ fail")
	assert.Contains(t, out, "TOTAL")
}

func TestFirstError(t *testing.T) {
	assert.Empty(t, firstError(types.ScenarioResult{
		Steps: []types.StepOutcome{{Status: types.StatusPass}},
	}))

	assert.Equal(t, "boom", firstError(types.ScenarioResult{
		Steps: []types.StepOutcome{
			{Status: types.StatusPass},
			{Status: types.StatusFail, Err: errors.New("boom")},
			{Status: types.StatusFail, Err: errors.New("later")},
		},
	}))

	long := strings.Repeat("x", 100)
	got := firstError(types.ScenarioResult{
		Steps: []types.StepOutcome{{Status: types.StatusFail, Err: errors.New(long)}},
	})
	assert.Len(t, got, 73)
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "✓ pass", statusString(types.StatusPass))
	assert.Equal(t, "- skip", statusString(types.StatusSkip))
	assert.Equal(t, "✗ fail", statusString(types.StatusFail))
}
