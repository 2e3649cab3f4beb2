package windows

import (
	"io"
	"path/filepath"
	"sync"

	"github.com/sbinet/npyio"
	"github.com/spf13/afero"

	"github.com/vitalwatch/vitalwatch/vital-golib/errors"
	"github.com/vitalwatch/vitalwatch/vital-golib/fileutil"
)

// FutureDirName is the directory, under the output directory, holding one array per signal id.
const FutureDirName = "future_data"

// FutureStore persists future segments by signal id.
type FutureStore interface {
	Save(signalID string, values []float64) error
	Exists(signalID string) (bool, error)
	Path(signalID string) string
}

// NPYStore writes each future segment to <dir>/future_data/<signal_id>.npy as a one-dimensional float64 array.
type NPYStore struct {
	fs  afero.Fs
	dir string
}

// NewNPYStore under outDir.
func NewNPYStore(fs afero.Fs, outDir string) NPYStore {
	return NPYStore{
		fs:  fs,
		dir: filepath.Join(outDir, FutureDirName),
	}
}

// EnsureDir creates the future directory; it is safe to call repeatedly and concurrently.
func (s NPYStore) EnsureDir() error {
	return fileutil.EnsureDir(s.fs, s.dir)
}

// Path implements FutureStore
func (s NPYStore) Path(signalID string) string {
	return filepath.Join(s.dir, signalID+".npy")
}

// Save implements FutureStore. The file is either written completely or not at all.
func (s NPYStore) Save(signalID string, values []float64) error {
	err := fileutil.WriteAtomic(s.fs, s.Path(signalID), func(w io.Writer) error {
		return npyio.Write(w, values)
	})
	return errors.WrapfOrNil(err, "unable to save future %s", signalID)
}

// Exists implements FutureStore
func (s NPYStore) Exists(signalID string) (bool, error) {
	return fileutil.Exists(s.fs, s.Path(signalID))
}

// Load reads back the future segment saved for signalID.
func (s NPYStore) Load(signalID string) ([]float64, error) {
	r, err := fileutil.NewReader(s.fs, s.Path(signalID))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var values []float64
	if err := npyio.Read(r, &values); err != nil {
		return nil, errors.Wrapf(err, "%s", s.Path(signalID))
	}
	return values, nil
}

// MemStore keeps future segments in memory.
type MemStore struct {
	m      sync.Mutex
	values map[string][]float64
}

// NewMemStore ...
func NewMemStore() *MemStore {
	return &MemStore{values: make(map[string][]float64)}
}

// Save implements FutureStore
func (s *MemStore) Save(signalID string, values []float64) error {
	s.m.Lock()
	defer s.m.Unlock()
	s.values[signalID] = append([]float64(nil), values...)
	return nil
}

// Exists implements FutureStore
func (s *MemStore) Exists(signalID string) (bool, error) {
	s.m.Lock()
	defer s.m.Unlock()
	_, ok := s.values[signalID]
	return ok, nil
}

// Path implements FutureStore
func (s *MemStore) Path(signalID string) string {
	return signalID
}

// Get returns the saved segment for signalID.
func (s *MemStore) Get(signalID string) ([]float64, bool) {
	s.m.Lock()
	defer s.m.Unlock()
	v, ok := s.values[signalID]
	return v, ok
}

// Len is the number of saved segments.
func (s *MemStore) Len() int {
	s.m.Lock()
	defer s.m.Unlock()
	return len(s.values)
}
