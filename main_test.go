package main

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladimiradmaev/diabetes-webapp/internal/config"
	"github.com/vladimiradmaev/diabetes-webapp/internal/services"
)

type countingCloser struct {
	closed int
	err    error
}

func (c *countingCloser) Close() error {
	c.closed++
	return c.err
}

func TestInsightGeneratorsReturnCloserForGemini(t *testing.T) {
	cfg := &config.Config{GeminiAPIKey: "test-key", GeminiModel: "gemini-1.5-flash", OpenAIAPIKey: "sk-test"}

	generators, closers := insightGenerators(context.Background(), cfg)
	require.Len(t, generators, 2)
	assert.IsType(t, &services.GeminiGenerator{}, generators[0])
	require.Len(t, closers, 1)
	assert.Same(t, generators[0], closers[0])
	assert.NoError(t, closers[0].Close())
}

func TestInsightGeneratorsOpenAIOnly(t *testing.T) {
	generators, closers := insightGenerators(context.Background(), &config.Config{OpenAIAPIKey: "sk-test"})
	assert.Len(t, generators, 1)
	assert.Empty(t, closers)
}

func TestCloseAllClosesEveryClient(t *testing.T) {
	failing := &countingCloser{err: errors.New("already closed")}
	ok := &countingCloser{}

	closeAll([]io.Closer{failing, ok})
	assert.Equal(t, 1, failing.closed)
	assert.Equal(t, 1, ok.closed)
}
