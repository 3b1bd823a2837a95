package embedding

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillsage/server/internal/metrics"
)

type countingEmbedder struct {
	queries int
	err     error
}

func (c *countingEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	c.queries++
	if c.err != nil {
		return nil, c.err
	}
	return []float32{float32(len(text))}, nil
}

func (c *countingEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	if c.err != nil {
		return nil, c.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t))}
	}
	return out, nil
}

func TestEmbedQueryCaches(t *testing.T) {
	impl := &countingEmbedder{}
	e, err := Wrap(impl, 8, metrics.New())
	require.NoError(t, err)

	ctx := context.Background()
	v1, err := e.EmbedQuery(ctx, "learn  rust")
	require.NoError(t, err)
	v2, err := e.EmbedQuery(ctx, "learn rust")
	require.NoError(t, err)

	assert.Equal(t, v1, v2)
	assert.Equal(t, 1, impl.queries)
}

func TestEmbedQueryWithoutCache(t *testing.T) {
	impl := &countingEmbedder{}
	e, err := Wrap(impl, 0, nil)
	require.NoError(t, err)

	_, _ = e.EmbedQuery(context.Background(), "go")
	_, _ = e.EmbedQuery(context.Background(), "go")
	assert.Equal(t, 2, impl.queries)
}

func TestEmbedQueryErrors(t *testing.T) {
	impl := &countingEmbedder{err: errors.New("rate limited")}
	e, err := Wrap(impl, 4, nil)
	require.NoError(t, err)

	_, err = e.EmbedQuery(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")

	_, err = e.EmbedQuery(context.Background(), "   ")
	require.Error(t, err)
	assert.Equal(t, 1, impl.queries)
}

func TestEmbedDocuments(t *testing.T) {
	e, err := Wrap(&countingEmbedder{}, 4, nil)
	require.NoError(t, err)

	vecs, err := e.EmbedDocuments(context.Background(), []string{"a", "bbb"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1}, {3}}, vecs)

	vecs, err = e.EmbedDocuments(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, vecs)
}

func TestWrapNil(t *testing.T) {
	_, err := Wrap(nil, 4, nil)
	assert.Error(t, err)
}
