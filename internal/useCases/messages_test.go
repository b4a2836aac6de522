package useCases

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessagePicker_OverrideAlwaysWins(t *testing.T) {
	p := NewMessagePicker(nil, &seqRand{seq: []int{3}})
	for i := 0; i < 10; i++ {
		assert.Equal(t, "custom", p.Pick("custom"))
	}
}

func TestMessagePicker_UsesInjectedRand(t *testing.T) {
	p := NewMessagePicker([]string{"a", "b", "c"}, &seqRand{seq: []int{2, 0, 1}})
	assert.Equal(t, "c", p.Pick(""))
	assert.Equal(t, "a", p.Pick(""))
	assert.Equal(t, "b", p.Pick(""))
}

func TestMessagePicker_EveryEntryReachable(t *testing.T) {
	p := NewMessagePicker(nil, rand.New(rand.NewSource(1)))

	seen := make(map[string]bool)
	for i := 0; i < 5000; i++ {
		seen[p.Pick("")] = true
	}
	assert.Len(t, seen, len(DefaultReasons))
}

func TestMessagePicker_EmptyCatalogFallsBack(t *testing.T) {
	p := NewMessagePicker([]string{}, &seqRand{seq: []int{0}})
	assert.Equal(t, DefaultReasons[0], p.Pick(""))
}
