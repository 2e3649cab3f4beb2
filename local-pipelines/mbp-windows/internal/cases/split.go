package cases

import (
	"math"
	"math/rand"
)

// DefaultSeed of the train/validation split.
const DefaultSeed = 200

// Split draws round((1-valFrac)*len(cases)) cases into train using a permutation seeded with seed, and
// the rest into val. Both phases keep the table order.
func Split(cases []Case, valFrac float64, seed int64) (train, val []Case) {
	if valFrac < 0 {
		valFrac = 0
	}
	if valFrac > 1 {
		valFrac = 1
	}
	nTrain := int(math.Round((1 - valFrac) * float64(len(cases))))

	perm := rand.New(rand.NewSource(seed)).Perm(len(cases))
	inTrain := make([]bool, len(cases))
	for _, i := range perm[:nTrain] {
		inTrain[i] = true
	}
	for i, c := range cases {
		if inTrain[i] {
			train = append(train, c)
		} else {
			val = append(val, c)
		}
	}
	return train, val
}
