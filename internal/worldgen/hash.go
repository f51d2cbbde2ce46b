package worldgen

func mix64(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// SeededHash is the default hash collaborator: an FNV-1a pass over the key
// bytes finished with a splitmix64 avalanche, mapped onto [0,1) using the
// top 53 bits. Stable for a given seed on any platform.
func SeededHash(seed int64) HashFunc {
	return func(key string) float64 {
		h := uint64(seed) ^ 0xcbf29ce484222325
		for i := 0; i < len(key); i++ {
			h ^= uint64(key[i])
			h *= 0x100000001b3
		}
		h = mix64(h)
		return float64(h>>11) / float64(1<<53)
	}
}
