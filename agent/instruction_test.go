package agent

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInstruction_StaticText(t *testing.T) {
	inst := NewInstructionFromText("You are a trading assistant.")

	assert.True(t, inst.IsStatic())

	text, err := inst.Resolve(nil)
	assert.NoError(t, err)
	assert.Equal(t, "You are a trading assistant.", text)
}

func TestInstruction_TemplatePlaceholders(t *testing.T) {
	inst := NewInstructionFromText("Focus on {{.symbol}} with a {{.horizon}} horizon.")

	text, err := inst.Resolve(map[string]any{
		"symbol":  "AAPL",
		"horizon": "short",
	})
	assert.NoError(t, err)
	assert.Equal(t, "Focus on AAPL with a short horizon.", text)
}

func TestInstruction_Provider(t *testing.T) {
	inst := NewInstructionFromFunc(func(state map[string]any) (string, error) {
		if state == nil {
			return "", errors.New("missing state")
		}
		return "dynamic", nil
	})

	assert.False(t, inst.IsStatic())

	text, err := inst.Resolve(map[string]any{"ok": true})
	assert.NoError(t, err)
	assert.Equal(t, "dynamic", text)

	_, err = inst.Resolve(nil)
	assert.Error(t, err)
}

func TestInstruction_RoleInstructionsResolve(t *testing.T) {
	for _, inst := range []string{
		portfolioInstructions,
		riskInstructions,
		strategyInstructions,
		executionInstructions,
		monitoringInstructions,
		schedulerInstructions,
	} {
		text, err := NewInstructionFromText(inst).Resolve(nil)
		assert.NoError(t, err)
		assert.NotEmpty(t, text)
	}
}
