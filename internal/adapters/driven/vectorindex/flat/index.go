// Package flat implements an exact inner-product vector index kept in
// memory and persisted as a single binary file.
package flat

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/custodia-labs/foldrag/internal/core/domain"
	"github.com/custodia-labs/foldrag/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Magic opens every index file.
const Magic = "FRAGIDX1"

// ErrCorrupt indicates an index file that cannot be decoded.
var ErrCorrupt = errors.New("corrupt vector index")

// Index is a flat, brute-force inner-product index. Rows are stored
// contiguously; row i holds the vector for metadata record i.
type Index struct {
	mu   sync.RWMutex
	dim  int
	data []float32
}

// New creates an empty index.
func New() *Index {
	return &Index{}
}

// Build replaces the index contents with vectors. All vectors must share
// one length.
func (x *Index) Build(vectors [][]float32) error {
	dim := 0
	if len(vectors) > 0 {
		dim = len(vectors[0])
	}
	data := make([]float32, 0, dim*len(vectors))
	for i, v := range vectors {
		if len(v) != dim {
			return fmt.Errorf("%w: vector %d has %d dimensions, want %d", domain.ErrDimensionMismatch, i, len(v), dim)
		}
		data = append(data, v...)
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	x.dim = dim
	x.data = data
	return nil
}

// Search returns up to k hits ordered by descending inner product. Ties
// keep insertion order.
func (x *Index) Search(query []float32, k int) ([]domain.Hit, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	n := x.len()
	if n == 0 || k <= 0 {
		return nil, nil
	}
	if len(query) != x.dim {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d", domain.ErrDimensionMismatch, len(query), x.dim)
	}

	hits := make([]domain.Hit, n)
	for i := 0; i < n; i++ {
		hits[i] = domain.Hit{Index: i, Score: dot(query, x.data[i*x.dim:(i+1)*x.dim])}
	}
	sort.SliceStable(hits, func(a, b int) bool { return hits[a].Score > hits[b].Score })

	if k < n {
		hits = hits[:k]
	}
	return hits, nil
}

// Len returns the number of indexed vectors.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.len()
}

// Dimensions returns the vector size, or 0 when empty.
func (x *Index) Dimensions() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.dim
}

func (x *Index) len() int {
	if x.dim == 0 {
		return 0
	}
	return len(x.data) / x.dim
}

// Save writes the index to path through a temporary file in the same
// directory, then renames it into place.
func (x *Index) Save(path string) error {
	x.mu.RLock()
	defer x.mu.RUnlock()

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	if err := x.encode(w); err != nil {
		tmp.Close()
		return fmt.Errorf("write index: %w", err)
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("write index: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close index file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename index file: %w", err)
	}
	return nil
}

func (x *Index) encode(w io.Writer) error {
	if _, err := io.WriteString(w, Magic); err != nil {
		return err
	}
	header := []uint32{uint32(x.dim), uint32(x.len())}
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, x.data)
}

// Load replaces the index contents with the file at path.
func (x *Index) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", domain.ErrNotIndexed, path)
		}
		return fmt.Errorf("open index: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat index: %w", err)
	}
	dim, data, err := decode(bufio.NewReader(f), info.Size())
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrCorrupt, path, err)
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	x.dim = dim
	x.data = data
	return nil
}

// decode reads an index of size bytes. The header must account for exactly
// size bytes before any row storage is allocated.
func decode(r io.Reader, size int64) (int, []float32, error) {
	magic := make([]byte, len(Magic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return 0, nil, fmt.Errorf("read magic: %w", err)
	}
	if string(magic) != Magic {
		return 0, nil, fmt.Errorf("bad magic %q", magic)
	}

	var header [2]uint32
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return 0, nil, fmt.Errorf("read header: %w", err)
	}
	dim, count := int(header[0]), int(header[1])
	if dim == 0 && count > 0 {
		return 0, nil, fmt.Errorf("zero dimension with %d rows", count)
	}
	if !sizeMatches(size, uint64(header[0]), uint64(header[1])) {
		return 0, nil, fmt.Errorf("header says %d dims x %d rows but file has %d bytes", dim, count, size)
	}

	data := make([]float32, dim*count)
	if err := binary.Read(r, binary.LittleEndian, data); err != nil {
		return 0, nil, fmt.Errorf("read rows: %w", err)
	}
	if _, err := r.Read(make([]byte, 1)); err != io.EOF {
		return 0, nil, errors.New("trailing bytes after rows")
	}
	return dim, data, nil
}

// sizeMatches reports whether a file of size bytes holds exactly rows
// vectors of dim float32s after the header. It divides rather than
// multiplies so hostile header values cannot overflow.
func sizeMatches(size int64, dim, rows uint64) bool {
	payload := size - int64(len(Magic)) - 8
	if payload < 0 || payload%4 != 0 {
		return false
	}
	floats := uint64(payload / 4)
	if dim == 0 || rows == 0 {
		return floats == 0
	}
	return floats%dim == 0 && floats/dim == rows
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
