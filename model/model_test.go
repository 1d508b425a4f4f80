package model

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ Model = (*MockModel)(nil)

func TestMockModel_CannedResponses(t *testing.T) {
	m := NewMockModel("test")
	m.AddResponse("metabolic", `{"score": 62}`)
	m.AddResponse("pattern", `{"patterns": []}`)

	resp, err := m.Complete(context.Background(), Request{Prompt: "run metabolic analysis"})
	require.NoError(t, err)
	assert.Equal(t, `{"score": 62}`, resp.Text)

	resp, err = m.Complete(context.Background(), Request{Prompt: "unmatched"})
	require.NoError(t, err)
	assert.Contains(t, resp.Text, "Mock response to:")
	assert.Equal(t, 2, m.Calls())
}

func TestMockModel_Fail(t *testing.T) {
	m := NewMockModel("test")
	m.Fail(errors.New("service unavailable"))
	_, err := m.Complete(context.Background(), Request{Prompt: "anything"})
	assert.Error(t, err)

	m.Fail(nil)
	_, err = m.Complete(context.Background(), Request{Prompt: "anything"})
	assert.NoError(t, err)
}

func TestMockModel_RespectsContext(t *testing.T) {
	m := NewMockModel("test")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := m.Complete(ctx, Request{Prompt: "anything"})
	assert.ErrorIs(t, err, context.Canceled)
}
