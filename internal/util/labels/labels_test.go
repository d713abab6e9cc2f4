package labels

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	t.Parallel()
	got := New("instance").Build()

	assert.Equal(t, map[string]string{
		KeyManagedBy: ManagedByGkectl,
		KeyKind:      "instance",
	}, got)
	assert.True(t, IsManaged(got))
}

func TestBuilder_Merge(t *testing.T) {
	t.Parallel()
	got := New("address").Merge(map[string]string{
		"env":        "prod",
		KeyManagedBy: "someone-else",
	}).Build()

	assert.Equal(t, "prod", got["env"])
	assert.Equal(t, ManagedByGkectl, got[KeyManagedBy], "reserved keys are kept")
}

func TestBuilder_WithTags(t *testing.T) {
	t.Parallel()
	got := New("instance").WithTags([]string{"web", "", KeyKind}).Build()

	assert.Len(t, got, 3)
	v, ok := got["web"]
	assert.True(t, ok)
	assert.Empty(t, v)
	assert.Equal(t, "instance", got[KeyKind])
}

func TestBuilder_BuildReturnsCopy(t *testing.T) {
	t.Parallel()
	b := New("network")
	first := b.Build()
	first["mutated"] = "yes"

	assert.NotContains(t, b.Build(), "mutated")
}

func TestStrip(t *testing.T) {
	t.Parallel()
	in := New("instance").Merge(map[string]string{"env": "dev"}).Build()

	assert.Equal(t, map[string]string{"env": "dev"}, Strip(in))
	assert.False(t, IsManaged(Strip(in)))
	assert.Empty(t, Strip(nil))
}
