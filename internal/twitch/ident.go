package twitch

import (
	"crypto/rand"
	mrand "math/rand/v2"
)

const (
	idAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	idLength   = 32
)

// GenerateID returns a 32-character alphanumeric playback identifier.
// Each call seeds a fresh generator from OS entropy; identifiers are
// independent even across identically-timed calls.
func GenerateID() string {
	rng := newSeededRand()
	b := make([]byte, idLength)
	for i := range b {
		b[i] = idAlphabet[rng.IntN(len(idAlphabet))]
	}
	return string(b)
}

// randomPlaybackNumber returns the throwaway p query parameter, uniform over
// [0, 9999999].
func randomPlaybackNumber() int {
	return newSeededRand().IntN(10000000)
}

func newSeededRand() *mrand.Rand {
	var seed [32]byte
	if _, err := rand.Read(seed[:]); err != nil {
		// crypto/rand does not fail on supported platforms
		panic(err)
	}
	return mrand.New(mrand.NewChaCha8(seed))
}
