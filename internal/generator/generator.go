// Package generator builds letter sequences and prompt delays.
package generator

import (
	"math/rand"
	"time"
)

// Alphabet is the fixed set of prompted letters.
const Alphabet = "abcdefghijklmnopqrstuvwxyz"

const (
	// MinDelay is the shortest wait before a letter is shown.
	MinDelay = 1000 * time.Millisecond
	// MaxDelay is the longest wait before a letter is shown.
	MaxDelay = 2500 * time.Millisecond
)

// Generator produces randomized letter orders and delays.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a Generator with a fixed seed.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Letters returns the alphabet in a uniformly random order.
func (g *Generator) Letters() []rune {
	letters := []rune(Alphabet)
	g.rnd.Shuffle(len(letters), func(i, j int) {
		letters[i], letters[j] = letters[j], letters[i]
	})
	return letters
}

// ReadyDelay returns a delay drawn uniformly from [MinDelay, MaxDelay].
func (g *Generator) ReadyDelay() time.Duration {
	span := float64(MaxDelay - MinDelay)
	return MinDelay + time.Duration(g.rnd.Float64()*span)
}
