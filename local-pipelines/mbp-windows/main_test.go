package main

import (
	"fmt"
	"io/ioutil"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vitalwatch/vitalwatch/local-pipelines/mbp-windows/internal/cases"
	"github.com/vitalwatch/vitalwatch/local-pipelines/mbp-windows/internal/windows"
	"github.com/vitalwatch/vitalwatch/vital-golib/cmdline"
)

const testYAML = `
minutes_ahead: 0
plausibility_floor: 70
`

// beats of 45 above a baseline of 80; any 80 second stretch is one non-event window
func traceCSV(n int) string {
	gaps := []int{78, 80, 83, 79}
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = 80
	}
	for c, k := 40, 0; c < n; c, k = c+gaps[k%len(gaps)], k+1 {
		for i := c - 20; i <= c+20 && i < n; i++ {
			if i >= 0 {
				d := float64(i - c)
				xs[i] += 45 * math.Exp(-d*d/50)
			}
		}
	}
	var b strings.Builder
	for _, v := range xs {
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		b.WriteByte('\n')
	}
	return b.String()
}

func setupFS(t *testing.T) func() {
	orig := fs
	fs = afero.NewMemMapFs()

	table := "caseid,age,sex,weight,height\n"
	trace := traceCSV(8001)
	for i := 1; i <= 5; i++ {
		table += fmt.Sprintf("%d,%d,M,70,170\n", i, 50+i)
		require.NoError(t, afero.WriteFile(fs, fmt.Sprintf("/in/data/%d.csv", i), []byte(trace), 0644))
	}
	require.NoError(t, afero.WriteFile(fs, "/in/cases.csv", []byte(table), 0644))
	require.NoError(t, afero.WriteFile(fs, "/in/config.yaml", []byte(testYAML), 0644))

	return func() { fs = orig }
}

func prepare(t *testing.T, extra ...string) error {
	cmd := cmdline.Command{
		Name: "prepare",
		Args: &prepareArgs{
			ValFrac: 0.2,
			Seed:    cases.DefaultSeed,
			logger:  zap.NewNop(),
		},
	}
	args := append([]string{"prepare",
		"--cases", "/in/cases.csv",
		"--data", "/in/data",
		"--out", "/out",
		"--config", "/in/config.yaml",
		"--workers", "2",
	}, extra...)
	return cmdline.Dispatch(args, ioutil.Discard, cmd)
}

func readIDs(t *testing.T, phase string) []string {
	f, err := fs.Open(filepath.Join("/out", windows.YFilename(phase)))
	require.NoError(t, err)
	defer f.Close()

	rows, err := windows.ReadY(f)
	require.NoError(t, err)
	var ids []string
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	return ids
}

func TestPrepare(t *testing.T) {
	defer setupFS(t)()

	require.NoError(t, prepare(t))

	train, val := readIDs(t, "train"), readIDs(t, "val")
	assert.Len(t, train, 4)
	assert.Len(t, val, 1)

	all := make(map[string]bool)
	for _, id := range append(train, val...) {
		assert.False(t, all[id], id)
		all[id] = true
		ok, err := afero.Exists(fs, filepath.Join("/out", windows.FutureDirName, id+".npy"))
		require.NoError(t, err)
		assert.True(t, ok, id)
	}
	for i := 1; i <= 5; i++ {
		assert.True(t, all[fmt.Sprintf("%d_0", i)])
	}

	for _, phase := range []string{"train", "val"} {
		done, err := windows.PhaseDone(fs, "/out", phase)
		require.NoError(t, err)
		assert.True(t, done, phase)
	}
}

func TestPrepareSkipsDonePhases(t *testing.T) {
	defer setupFS(t)()
	require.NoError(t, prepare(t))

	// a done phase is not rebuilt, even though its inputs are gone
	require.NoError(t, fs.RemoveAll("/in/data"))
	require.NoError(t, prepare(t))
	assert.Len(t, readIDs(t, "train"), 4)

	// with --force every case is unreadable and the tables come out empty
	require.NoError(t, prepare(t, "--force"))
	assert.Empty(t, readIDs(t, "train"))
	assert.Empty(t, readIDs(t, "val"))
}

func TestPrepareErrors(t *testing.T) {
	defer setupFS(t)()

	assert.Error(t, prepare(t, "--val-frac", "1.5"))

	require.NoError(t, fs.Remove("/in/cases.csv"))
	assert.Error(t, prepare(t))
}

func TestBalanceAndInspect(t *testing.T) {
	defer setupFS(t)()
	require.NoError(t, prepare(t))

	// a single class is kept whole
	require.NoError(t, cmdline.Dispatch([]string{"balance", "--out", "/out"}, ioutil.Discard, balanceCmd))
	ok, err := afero.Exists(fs, "/out/y_train_balanced.csv")
	require.NoError(t, err)
	assert.True(t, ok)

	id := readIDs(t, "val")[0]
	require.NoError(t, cmdline.Dispatch([]string{"inspect",
		"--out", "/out", "--phase", "val", "--id", id, "--png", "/plots/w.png", "--config", "/in/config.yaml",
	}, ioutil.Discard, inspectCmd))
	ok, err = afero.Exists(fs, "/plots/w.png")
	require.NoError(t, err)
	assert.True(t, ok)
}
