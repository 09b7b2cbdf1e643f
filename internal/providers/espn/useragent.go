package espn

import "math/rand"

// PickUserAgent chooses one browser identity from the pool. It is called
// once at startup; requests do not rotate.
func PickUserAgent(pool []string) string {
	if len(pool) == 0 {
		return ""
	}
	return pool[rand.Intn(len(pool))]
}
