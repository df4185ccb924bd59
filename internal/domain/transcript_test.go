package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscript_JSONShape(t *testing.T) {
	tr := NewTranscript()
	tr.Append(UserTurn("Hello"), ModelTurn("Hi there"))
	tr.LastUpdated = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	data, err := json.Marshal(tr)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))

	messages, ok := raw["messages"].([]any)
	require.True(t, ok, "messages should be an array")
	require.Len(t, messages, 2)

	first := messages[0].(map[string]any)
	assert.Equal(t, "user", first["role"])
	assert.Equal(t, "Hello", first["content"])

	second := messages[1].(map[string]any)
	assert.Equal(t, "model", second["role"])
	assert.Equal(t, "Hi there", second["content"])

	assert.Equal(t, "2026-01-02T03:04:05Z", raw["lastUpdated"])
}

func TestTranscript_CloneIsIndependent(t *testing.T) {
	tr := NewTranscript()
	tr.Append(UserTurn("a"))

	cp := tr.Clone()
	cp.Append(ModelTurn("b"))
	cp.Messages[0].Content = "changed"

	assert.Equal(t, 1, tr.Len())
	assert.Equal(t, "a", tr.Messages[0].Content)
	assert.Equal(t, 2, cp.Len())
}

func TestTranscript_SameAs(t *testing.T) {
	now := time.Now()
	a := Transcript{Messages: []Turn{UserTurn("x")}, LastUpdated: now}
	b := a.Clone()

	assert.True(t, a.SameAs(b))

	b.Append(ModelTurn("y"))
	assert.False(t, a.SameAs(b))

	c := a.Clone()
	c.LastUpdated = now.Add(time.Second)
	assert.False(t, a.SameAs(c))

	assert.True(t, NewTranscript().SameAs(Transcript{}))
}
