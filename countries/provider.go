// Package countries is the externalized Question Provider: a pluggable
// distractor-selection strategy behind a small contractual interface.
// The engine only ever sees the interface below.
package countries

import (
	"crypto/rand"
	"math/big"

	"flagrooms/models"
)

// Question is the provider's output shape: the correct country plus a
// 4-way shuffle of options containing it.
type Question struct {
	Country Country
	Options []Country
}

// Provider answers (difficulty, usedCountries) -> next question, or
// ok=false when the pool is exhausted.
type Provider interface {
	Next(difficulty models.Difficulty, used map[string]bool) (*Question, bool)
}

type provider struct {
	pool []Country
}

// NewProvider builds the default in-package provider over the embedded
// catalogue.
func NewProvider() Provider {
	return &provider{pool: catalogue}
}

func (p *provider) Next(difficulty models.Difficulty, used map[string]bool) (*Question, bool) {
	candidates := make([]Country, 0, len(p.pool))
	for _, c := range p.pool {
		if !used[c.Code] {
			candidates = append(candidates, c)
		}
	}
	if len(candidates) == 0 {
		return nil, false
	}

	correct := candidates[randIntn(len(candidates))]
	distractors := p.selectDistractors(correct, difficulty, 3)

	options := append([]Country{correct}, distractors...)
	shuffle(options)

	return &Question{Country: correct, Options: options}, true
}

// selectDistractors picks n wrong options. Harder difficulties bias
// toward same-region countries, which are easier to confuse with the
// correct answer; easier difficulties draw from the whole pool.
func (p *provider) selectDistractors(correct Country, difficulty models.Difficulty, n int) []Country {
	var sameRegion, rest []Country
	for _, c := range p.pool {
		if c.Code == correct.Code {
			continue
		}
		if c.Region == correct.Region {
			sameRegion = append(sameRegion, c)
		} else {
			rest = append(rest, c)
		}
	}
	shuffle(sameRegion)
	shuffle(rest)

	regionBias := 0
	switch difficulty {
	case models.DifficultyEasy:
		regionBias = 0
	case models.DifficultyMedium:
		regionBias = 1
	case models.DifficultyHard:
		regionBias = 2
	case models.DifficultyExpert:
		regionBias = 3
	}
	if regionBias > n {
		regionBias = n
	}

	var picked []Country
	for i := 0; i < regionBias && i < len(sameRegion); i++ {
		picked = append(picked, sameRegion[i])
	}
	// fill the remainder from whatever is left, region pool first then rest
	pool := append(append([]Country{}, sameRegion[len(picked):]...), rest...)
	for _, c := range pool {
		if len(picked) >= n {
			break
		}
		picked = append(picked, c)
	}
	return picked
}

func randIntn(n int) int {
	if n <= 0 {
		return 0
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

func shuffle(cs []Country) {
	for i := len(cs) - 1; i > 0; i-- {
		j := randIntn(i + 1)
		cs[i], cs[j] = cs[j], cs[i]
	}
}
