package llm_test

import (
	"testing"

	"github.com/Rrens/telegram-gemini-bot/internal/llm"
	"github.com/stretchr/testify/assert"
)

func TestSystemInstruction(t *testing.T) {
	assert.Equal(t, llm.DefaultSystemInstruction, llm.SystemInstruction(""))
	assert.Equal(t, llm.DefaultSystemInstruction, llm.SystemInstruction("  \n"))
	assert.Equal(t, "Be brief.", llm.SystemInstruction(" Be brief. "))
}

func TestDefaultSystemInstruction_MentionsTools(t *testing.T) {
	assert.Contains(t, llm.DefaultSystemInstruction, "search")
	assert.Contains(t, llm.DefaultSystemInstruction, "URL")
}
