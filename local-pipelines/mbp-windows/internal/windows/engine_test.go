package windows

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/vitalwatch/vitalwatch/local-pipelines/mbp-windows/internal/cases"
	"github.com/vitalwatch/vitalwatch/vital-golib/errors"
)

func testTable() ([]cases.Case, cases.MemTraces) {
	table := []cases.Case{
		testCase("1"),
		testCase("2"),
		testCase("3"),
		testCase("4"),
		testCase("5"),
		testCase("6"),
		testCase("7"),
	}
	traces := cases.MemTraces{
		"1": normalWave(14500),
		"2": hypotensiveWave(11001),
		// 3 has no trace
		"4": wave(20000, 30, 20),
		"5": normalWave(5000),
		"6": hypotensiveWave(8001),
		"7": normalWave(8001),
	}
	return table, traces
}

func newTestEngine(t *testing.T, store FutureStore, traces cases.TraceSource) *Engine {
	e, err := NewEngine(Options{
		Config: testConfig(),
		Traces: traces,
		Store:  store,
	})
	require.NoError(t, err)
	return e
}

func TestEngineRun(t *testing.T) {
	table, traces := testTable()
	store := NewMemStore()
	e := newTestEngine(t, store, traces)

	out, err := e.Run(context.Background(), table)
	require.NoError(t, err)

	// shards are [1 2 3] [4 5 6] [7]; samples keep table order
	assert.Equal(t, []string{"1_0", "1_30", "1_60", "2_0", "2_30", "6_0", "7_0"}, sampleIDs(out.Samples))
	assert.Equal(t, 7, out.Cases)
	assert.Equal(t, 3, out.Events)
	assert.Equal(t, 4, out.NonEvents)
	assert.Equal(t, Counters{
		ReasonCaseUnreadable:  1,
		ReasonCaseImplausible: 1,
		ReasonCaseTooShort:    1,
	}, out.Counters)

	cfg := testConfig()
	seen := make(map[string]bool)
	for _, s := range out.Samples {
		assert.False(t, seen[s.ID], "duplicate %s", s.ID)
		seen[s.ID] = true

		assert.Len(t, s.Current, cfg.CurrentLen())
		future, ok := store.Get(s.ID)
		require.True(t, ok, s.ID)
		assert.Len(t, future, cfg.FutureLen())
	}
	assert.Equal(t, len(out.Samples), store.Len())
}

func TestEngineMoreWorkersThanCases(t *testing.T) {
	table, traces := testTable()
	cfg := testConfig()
	cfg.NumWorkers = 32

	e, err := NewEngine(Options{Config: cfg, Traces: traces, Store: NewMemStore()})
	require.NoError(t, err)

	out, err := e.Run(context.Background(), table)
	require.NoError(t, err)
	assert.Equal(t, []string{"1_0", "1_30", "1_60", "2_0", "2_30", "6_0", "7_0"}, sampleIDs(out.Samples))
}

func TestEngineLogs(t *testing.T) {
	table, traces := testTable()
	core, logs := observer.New(zap.InfoLevel)

	e, err := NewEngine(Options{
		Config: testConfig(),
		Traces: traces,
		Store:  NewMemStore(),
		Logger: zap.New(core),
	})
	require.NoError(t, err)

	_, err = e.Run(context.Background(), table)
	require.NoError(t, err)

	assert.Equal(t, 1, logs.FilterMessage("1: 3 (0.0%)").Len())
	assert.Equal(t, 1, logs.FilterMessage("2: 2 (100.0%)").Len())
	assert.Equal(t, 1, logs.FilterMessage("skipping case").Len())
	// cases without samples are not reported
	assert.Equal(t, 0, logs.FilterField(zap.String("caseid", "4")).Len())
}

func TestEngineCancelled(t *testing.T) {
	table, traces := testTable()
	e := newTestEngine(t, NewMemStore(), traces)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := e.Run(ctx, table)
	assert.Equal(t, context.Canceled, err)
	assert.Empty(t, out.Samples)
}

func TestEnginePersistenceFailure(t *testing.T) {
	table, traces := testTable()
	store := &failingStore{MemStore: NewMemStore(), failAfter: 0}
	e := newTestEngine(t, store, traces)

	out, err := e.Run(context.Background(), table)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	// every shard with an accepted window fails
	assert.Contains(t, err.Error(), "3 errors")
	assert.Empty(t, out.Samples)
}

// flakyTraces fails with a plain error, not an unreadable case, for the listed cases.
type flakyTraces struct {
	cases.MemTraces
	fail map[string]bool
}

func (f flakyTraces) Load(caseID string) ([]float64, error) {
	if f.fail[caseID] {
		return nil, errors.Errorf("connection reset")
	}
	return f.MemTraces.Load(caseID)
}

func TestEngineTraceSourceFailure(t *testing.T) {
	table, traces := testTable()
	e := newTestEngine(t, NewMemStore(), flakyTraces{MemTraces: traces, fail: map[string]bool{"2": true}})

	out, err := e.Run(context.Background(), table)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shard 0")
	assert.Contains(t, err.Error(), "error loading case 2: connection reset")
	assert.Empty(t, out.Samples)

	// a missing trace is skipped, not fatal
	e = newTestEngine(t, NewMemStore(), flakyTraces{MemTraces: traces})
	out, err = e.Run(context.Background(), table)
	require.NoError(t, err)
	assert.EqualValues(t, 1, out.Counters[ReasonCaseUnreadable])
}

func TestNewEngine(t *testing.T) {
	_, traces := testTable()

	cfg := testConfig()
	cfg.SampleRate = 0
	_, err := NewEngine(Options{Config: cfg, Traces: traces, Store: NewMemStore()})
	assert.Error(t, err)

	_, err = NewEngine(Options{Config: testConfig(), Store: NewMemStore()})
	assert.Error(t, err)
}

func runToDisk(t *testing.T, fs afero.Fs) {
	table, traces := testTable()
	e := newTestEngine(t, NewNPYStore(fs, "/out"), traces)

	out, err := e.Run(context.Background(), table)
	require.NoError(t, err)
	require.NoError(t, WriteTables(fs, "/out", "train", testConfig(), out))
}

func TestEngineIdempotent(t *testing.T) {
	first, second := afero.NewMemMapFs(), afero.NewMemMapFs()
	runToDisk(t, first)
	runToDisk(t, second)
	// re-running over existing output rewrites identical files
	runToDisk(t, second)

	var files []string
	err := afero.Walk(first, "/out", func(path string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			files = append(files, path)
		}
		return err
	})
	require.NoError(t, err)
	// 7 futures, two tables and the marker
	require.Len(t, files, 10)

	for _, path := range files {
		a, err := afero.ReadFile(first, path)
		require.NoError(t, err)
		b, err := afero.ReadFile(second, path)
		require.NoError(t, err, path)
		assert.True(t, bytes.Equal(a, b), path)
	}

	infos, err := afero.ReadDir(second, filepath.Join("/out", FutureDirName))
	require.NoError(t, err)
	assert.Len(t, infos, 7)
}
