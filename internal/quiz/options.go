package quiz

import (
	"errors"
	"math/rand/v2"
)

// ErrOptionArity is returned when the answer list is not exactly 4 strings.
var ErrOptionArity = errors.New("exactly 4 answers required: correct plus 3 incorrect")

// Options is a shuffled answer list with the correct entry tracked.
type Options struct {
	Choices      []string
	Correct      string
	CorrectIndex int
}

// RandomizeOptions shuffles [correct, wrong1, wrong2, wrong3] uniformly.
// A nil rnd uses the global source.
func RandomizeOptions(answers []string, rnd *rand.Rand) (Options, error) {
	if len(answers) != 4 {
		return Options{}, ErrOptionArity
	}
	perm := []int{0, 1, 2, 3}
	swap := func(i, j int) { perm[i], perm[j] = perm[j], perm[i] }
	if rnd != nil {
		rnd.Shuffle(len(perm), swap)
	} else {
		rand.Shuffle(len(perm), swap)
	}

	opts := Options{Choices: make([]string, 4), Correct: answers[0]}
	for pos, src := range perm {
		opts.Choices[pos] = answers[src]
		if src == 0 {
			opts.CorrectIndex = pos
		}
	}
	return opts, nil
}
