package windows

import (
	"encoding/csv"
	"io"
	"math/rand"
	"path/filepath"
	"sort"

	"github.com/gocarina/gocsv"
	"github.com/spf13/afero"

	"github.com/vitalwatch/vitalwatch/vital-golib/errors"
	"github.com/vitalwatch/vitalwatch/vital-golib/fileutil"
)

// BalancedSuffix is appended to the phase in the names of undersampled tables.
const BalancedSuffix = "_balanced"

// Undersample picks, for every class, as many rows as the rarest class has. Kept rows stay in input order.
// It returns the indices of the kept rows.
func Undersample(classes []int, seed int64) []int {
	byClass := make(map[int][]int)
	for i, c := range classes {
		byClass[c] = append(byClass[c], i)
	}
	if len(byClass) == 0 {
		return nil
	}

	keys := make([]int, 0, len(byClass))
	minCount := len(classes)
	for c, idxs := range byClass {
		keys = append(keys, c)
		if len(idxs) < minCount {
			minCount = len(idxs)
		}
	}
	sort.Ints(keys)

	rng := rand.New(rand.NewSource(seed))
	var kept []int
	for _, c := range keys {
		idxs := byClass[c]
		for _, p := range rng.Perm(len(idxs))[:minCount] {
			kept = append(kept, idxs[p])
		}
	}
	sort.Ints(kept)
	return kept
}

// BalanceCounts are the per-class row counts before and after undersampling.
type BalanceCounts struct {
	Before map[int]int
	After  map[int]int
}

// BalanceTables undersamples the tables of phase in dir into x_<phase>_balanced.csv and y_<phase>_balanced.csv.
func BalanceTables(fs afero.Fs, dir, phase string, seed int64) (BalanceCounts, error) {
	header, xrows, err := readXFile(fs, filepath.Join(dir, XFilename(phase)))
	if err != nil {
		return BalanceCounts{}, err
	}
	yrows, err := readYFile(fs, filepath.Join(dir, YFilename(phase)))
	if err != nil {
		return BalanceCounts{}, err
	}

	if len(xrows) != len(yrows) {
		return BalanceCounts{}, errors.Errorf("x table has %d rows, y table has %d", len(xrows), len(yrows))
	}
	classes := make([]int, len(yrows))
	for i, y := range yrows {
		if len(xrows[i]) == 0 || xrows[i][0] != y.ID {
			return BalanceCounts{}, errors.Errorf("row %d: x and y tables are not aligned at %s", i+1, y.ID)
		}
		classes[i] = y.Class
	}

	kept := Undersample(classes, seed)
	counts := BalanceCounts{Before: classCounts(classes), After: make(map[int]int)}

	keptX := make([][]string, 0, len(kept))
	keptY := make([]YRow, 0, len(kept))
	for _, i := range kept {
		keptX = append(keptX, xrows[i])
		keptY = append(keptY, yrows[i])
		counts.After[yrows[i].Class]++
	}

	balanced := phase + BalancedSuffix
	err = fileutil.WriteAtomic(fs, filepath.Join(dir, XFilename(balanced)), func(w io.Writer) error {
		cw := gocsv.NewSafeCSVWriter(csv.NewWriter(w))
		cw.Write(header)
		for _, row := range keptX {
			cw.Write(row)
		}
		cw.Flush()
		return cw.Error()
	})
	if err != nil {
		return counts, err
	}

	err = fileutil.WriteAtomic(fs, filepath.Join(dir, YFilename(balanced)), func(w io.Writer) error {
		return gocsv.Marshal(&keptY, w)
	})
	return counts, err
}

func classCounts(classes []int) map[int]int {
	counts := make(map[int]int)
	for _, c := range classes {
		counts[c]++
	}
	return counts
}

func readXFile(fs afero.Fs, path string) ([]string, [][]string, error) {
	r, err := fileutil.NewReader(fs, path)
	if err != nil {
		return nil, nil, err
	}
	defer r.Close()

	header, rows, err := ReadX(r)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "%s", path)
	}
	return header, rows, nil
}

func readYFile(fs afero.Fs, path string) ([]YRow, error) {
	r, err := fileutil.NewReader(fs, path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	rows, err := ReadY(r)
	return rows, errors.WrapfOrNil(err, "%s", path)
}
