package layout

import (
	"hash/fnv"
	"math/rand/v2"

	"github.com/matzehuels/topoview/pkg/visual"
)

// FallbackArea is the side of the square fallback positions fall in.
const FallbackArea = 400

// fallbackPosition returns a pseudo-random position for a node the engine
// did not place. It is seeded by the node id so reruns agree.
func fallbackPosition(id string) *visual.Position {
	h := fnv.New64a()
	h.Write([]byte(id))
	seed := h.Sum64()
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return &visual.Position{
		X: r.Float64() * FallbackArea,
		Y: r.Float64() * FallbackArea,
	}
}
