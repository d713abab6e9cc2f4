package spec

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrune(t *testing.T) {
	t.Parallel()

	doc := Document{
		"name":   "x",
		"nil":    nil,
		"empty":  []any{},
		"object": map[string]any{"inner": map[string]any{}, "list": []any{nil, map[string]any{}}},
		"keep":   map[string]any{"a": 1, "b": nil},
		"auth":   map[string]any{},
		"zero":   0,
		"off":    false,
	}
	got := Prune(doc)
	assert.Equal(t, Document{
		"name": "x",
		"keep": map[string]any{"a": 1},
		"auth": map[string]any{},
		"zero": 0,
		"off":  false,
	}, got)
}

func TestPrune_Idempotent(t *testing.T) {
	t.Parallel()

	doc, err := BuildNodePool(validNodePool())
	require.NoError(t, err)

	first, err := doc.JSON()
	require.NoError(t, err)
	second, err := Prune(doc).JSON()
	require.NoError(t, err)
	third, err := Prune(Prune(doc)).JSON()
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
	assert.Equal(t, string(second), string(third))
}

func TestLoadDocument(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	doc, err := LoadDocument(ctx, `{"name":"inline"}`)
	require.NoError(t, err)
	assert.Equal(t, "inline", doc["name"])

	dir := t.TempDir()
	good := filepath.Join(dir, "cluster.json")
	require.NoError(t, os.WriteFile(good, []byte(`{"name":"from-file","nodePools":[{"name":"p"}]}`), 0o600))
	doc, err = LoadDocument(ctx, good)
	require.NoError(t, err)
	assert.Equal(t, "from-file", doc["name"])

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`not json`), 0o600))
	_, err = LoadDocument(ctx, bad)
	assert.ErrorIs(t, err, ErrInvalidJSON)

	_, err = LoadDocument(ctx, filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, ErrFileNotFound)

	_, err = LoadDocument(ctx, `{"broken"`)
	assert.ErrorIs(t, err, ErrInvalidJSON)

	_, err = LoadDocument(ctx, "s3://bucket/key.json")
	assert.ErrorIs(t, err, ErrInvalidValue)
}

type fakeObjects map[string]string

func (f fakeObjects) GetObject(_ context.Context, bucket, key string) ([]byte, error) {
	data, ok := f[bucket+"/"+key]
	if !ok {
		return nil, fmt.Errorf("object %s/%s: %w", bucket, key, fs.ErrNotExist)
	}
	return []byte(data), nil
}

func TestLoader_S3(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	l := Loader{Objects: fakeObjects{"specs/pool.json": `{"name":"pool"}`}}

	doc, err := l.Load(ctx, "s3://specs/pool.json")
	require.NoError(t, err)
	assert.Equal(t, "pool", doc["name"])

	_, err = l.Load(ctx, "s3://specs/other.json")
	assert.ErrorIs(t, err, ErrFileNotFound)

	_, err = l.Load(ctx, "s3://specs")
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestParseLabels(t *testing.T) {
	t.Parallel()

	labels, err := ParseLabels("env=prod\nteam = \nurl=a=b\nflag")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"env": "prod", "team": "", "url": "a=b", "flag": ""}, labels)

	labels, err = ParseLabels("")
	require.NoError(t, err)
	assert.Nil(t, labels)

	_, err = ParseLabels("=value")
	assert.ErrorIs(t, err, ErrInvalidValue)

	assert.Equal(t, []string{"a", "b"}, ParseList(" a \n\n b\n"))
}
