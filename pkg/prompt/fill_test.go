package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFill(t *testing.T) {
	t.Run("replaces every occurrence", func(t *testing.T) {
		out := Fill("{name} and {name} again", Params{"name": "Widget"})
		assert.Equal(t, "Widget and Widget again", out)
	})

	t.Run("unknown placeholders stay literal", func(t *testing.T) {
		out := Fill("Write {count} scripts for {product}", Params{"count": 3})
		assert.Equal(t, "Write 3 scripts for {product}", out)
	})

	t.Run("lists are newline joined", func(t *testing.T) {
		out := Fill("Points:\n{keyPoints}", Params{"keyPoints": []string{"a", "b"}})
		assert.Equal(t, "Points:\na\nb", out)
	})

	t.Run("generic slices are newline joined", func(t *testing.T) {
		out := Fill("{nums}", Params{"nums": []int{1, 2, 3}})
		assert.Equal(t, "1\n2\n3", out)
	})

	t.Run("nil renders empty", func(t *testing.T) {
		assert.Equal(t, "tone: ", Fill("tone: {tone}", Params{"tone": nil}))
	})

	t.Run("substituted values are not re-expanded", func(t *testing.T) {
		out := Fill("{a}|{b}", Params{"a": "{b}", "b": "B"})
		assert.Equal(t, "{b}|B", out)

		// order of keys in the map must not matter
		out = Fill("{b}|{a}", Params{"b": "{a}", "a": "A"})
		assert.Equal(t, "{a}|A", out)
	})

	t.Run("nested braces", func(t *testing.T) {
		assert.Equal(t, "{X}", Fill("{{x}}", Params{"x": "X"}))
		assert.Equal(t, "{} {", Fill("{} {", Params{"x": "X"}))
	})

	t.Run("no params", func(t *testing.T) {
		assert.Equal(t, "{a}", Fill("{a}", nil))
	})
}

func TestPlaceholders(t *testing.T) {
	names := Placeholders("{productName} {keyPoints} {productName} {{tone}}")
	assert.Equal(t, []string{"productName", "keyPoints", "tone"}, names)
	assert.Empty(t, Placeholders("no placeholders here"))
}
