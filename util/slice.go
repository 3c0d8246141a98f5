package util

import (
	"math/rand"
)

func Shuffle[T any](in []T) {
	rand.Shuffle(len(in), func(i, j int) {
		in[i], in[j] = in[j], in[i]
	})
}
