package autonomy

import (
	"encoding/binary"
	"hash/fnv"
	"math/rand/v2"

	"github.com/google/uuid"
)

// Sampler produces uniform draws in [0, 1) for the rollout Bernoulli sample.
type Sampler func() float64

// Seeded returns a deterministic Sampler keyed by lead identity and attempt
// number. A retried decide stage for the same attempt reproduces the same
// draw sequence; a new attempt draws fresh. Wall-clock time never seeds it.
func Seeded(leadID uuid.UUID, attempt int) Sampler {
	h := fnv.New64a()
	h.Write(leadID[:])
	idSeed := h.Sum64()

	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(attempt))
	h.Write(buf[:])

	r := rand.New(rand.NewPCG(idSeed, h.Sum64()))
	return r.Float64
}

// Never is a Sampler that always fails the rollout draw.
func Never() float64 { return 1 }

// Always is a Sampler that always passes the rollout draw.
func Always() float64 { return 0 }
