package generators

import "math/rand"

// RandomGenerator gates each step independently with probability Density
// (0-100), reseeded from Seed on every Update so a given seed always
// reproduces the same pattern.
type RandomGenerator struct {
	Seed    int64
	Density int // 0-100

	pattern Pattern
}

func NewRandomGenerator() *RandomGenerator {
	g := &RandomGenerator{Density: 50}
	g.Update()
	return g
}

func (g *RandomGenerator) Mode() Mode      { return ModeRandom }
func (g *RandomGenerator) Pattern() Pattern { return g.pattern }

func (g *RandomGenerator) Update() {
	density := g.Density
	if density < 0 {
		density = 0
	}
	if density > 100 {
		density = 100
	}

	rng := rand.New(rand.NewSource(g.Seed))
	var p Pattern
	for i := range p {
		if rng.Intn(100) < density {
			p[i] = 1
		}
	}
	g.pattern = p
}
