package windows

import "math"

// DefaultNumShards when the requested worker count is not positive.
const DefaultNumShards = 32

// Shard is the row range [Lo, Hi) of the case table handled by one job.
type Shard struct {
	Index int
	Lo    int
	Hi    int
}

// Len of the shard.
func (s Shard) Len() int {
	return s.Hi - s.Lo
}

// Partition splits n rows into workers contiguous shards of ceil(n/workers) rows. The last non-empty shard
// may be shorter, and trailing shards are empty when there are fewer rows than shards need.
func Partition(n, workers int) []Shard {
	if workers <= 0 {
		workers = DefaultNumShards
	}
	chunk := int(math.Ceil(float64(n) / float64(workers)))

	shards := make([]Shard, workers)
	for k := range shards {
		shards[k] = Shard{
			Index: k,
			Lo:    minInt(n, k*chunk),
			Hi:    minInt(n, (k+1)*chunk),
		}
	}
	return shards
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
