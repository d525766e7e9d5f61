package storage

import (
	"encoding/binary"
	"math"
	"os"
)

// diskCacheCap bounds the number of dirty entries held in memory per field
// before DiskBackend flushes them to their backing file.
const diskCacheCap = 4096

// DiskBackend persists the GWDT + fast-marching arrays to temporary files
// and serves reads/writes through a small in-memory cache, flushed
// synchronously (§5: "No operation blocks on I/O except the disk-backed
// storage backend, which does so synchronously through its cache"). It is
// the backend of choice for volumes too large to hold in RAM as a dense
// array.
type DiskBackend struct {
	w, h, d int

	gwdtFile, distFile, parentFile, stateFile *os.File

	gwdtCache   map[int64]float64
	distCache   map[int64]float64
	parentCache map[int64]int64
	stateCache  map[int64]VoxelState

	alive map[int64]struct{}
}

// NewDiskBackend creates temp files under dir (or the OS default if dir
// is "") for each of the four arrays.
func NewDiskBackend(dir string) (*DiskBackend, error) {
	mk := func(pattern string) (*os.File, error) {
		return os.CreateTemp(dir, pattern)
	}
	gwdtFile, err := mk("neurotrace-gwdt-*.bin")
	if err != nil {
		return nil, err
	}
	distFile, err := mk("neurotrace-dist-*.bin")
	if err != nil {
		return nil, err
	}
	parentFile, err := mk("neurotrace-parent-*.bin")
	if err != nil {
		return nil, err
	}
	stateFile, err := mk("neurotrace-state-*.bin")
	if err != nil {
		return nil, err
	}

	return &DiskBackend{
		gwdtFile: gwdtFile, distFile: distFile, parentFile: parentFile, stateFile: stateFile,
		gwdtCache:   make(map[int64]float64, diskCacheCap),
		distCache:   make(map[int64]float64, diskCacheCap),
		parentCache: make(map[int64]int64, diskCacheCap),
		stateCache:  make(map[int64]VoxelState, diskCacheCap),
		alive:       make(map[int64]struct{}),
	}, nil
}

func (b *DiskBackend) Init(w, h, d int) error {
	b.w, b.h, b.d = w, h, d

	return nil
}

// GWDT and Distance are always ≥ 0 (never NaN), so their IEEE-754 bit
// patterns read as uint64 are themselves ≥ 0 and 0 only for +0.0 — the same
// value a never-written (zero-filled) record reads back as. Both fields
// store bits+1 on disk, mirroring Parent's p+1 offset below, so the
// zero-value record is unambiguously "unwritten" and a legitimately stored
// 0.0 (every background voxel's GWDT, every fast-marching seed's distance)
// round-trips correctly.
func (b *DiskBackend) GWDT(idx int64) float64 {
	if v, ok := b.gwdtCache[idx]; ok {
		return v
	}
	var buf [8]byte
	if _, err := b.gwdtFile.ReadAt(buf[:], idx*8); err != nil {
		return math.Inf(1)
	}
	bits := binary.LittleEndian.Uint64(buf[:])
	if bits == 0 {
		return math.Inf(1) // never-written record defaults to +Inf, not 0
	}

	return math.Float64frombits(bits - 1)
}

func (b *DiskBackend) SetGWDT(idx int64, v float64) {
	b.gwdtCache[idx] = v
	if len(b.gwdtCache) >= diskCacheCap {
		b.flushGWDT()
	}
}

func (b *DiskBackend) flushGWDT() {
	for idx, v := range b.gwdtCache {
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v)+1)
		_, _ = b.gwdtFile.WriteAt(buf[:], idx*8)
	}
	b.gwdtCache = make(map[int64]float64, diskCacheCap)
}

func (b *DiskBackend) Distance(idx int64) float64 {
	if v, ok := b.distCache[idx]; ok {
		return v
	}
	var buf [8]byte
	if _, err := b.distFile.ReadAt(buf[:], idx*8); err != nil {
		return math.Inf(1)
	}
	bits := binary.LittleEndian.Uint64(buf[:])
	if bits == 0 {
		return math.Inf(1) // never-written record defaults to +Inf, not 0
	}

	return math.Float64frombits(bits - 1)
}

func (b *DiskBackend) SetDistance(idx int64, v float64) {
	b.distCache[idx] = v
	if len(b.distCache) >= diskCacheCap {
		b.flushDistance()
	}
}

func (b *DiskBackend) flushDistance() {
	for idx, v := range b.distCache {
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v)+1)
		_, _ = b.distFile.WriteAt(buf[:], idx*8)
	}
	b.distCache = make(map[int64]float64, diskCacheCap)
}

func (b *DiskBackend) Parent(idx int64) int64 {
	if p, ok := b.parentCache[idx]; ok {
		return p
	}
	var buf [8]byte
	if _, err := b.parentFile.ReadAt(buf[:], idx*8); err != nil {
		return -1
	}
	u := binary.LittleEndian.Uint64(buf[:])
	if u == 0 {
		return -1
	}

	return int64(u) - 1 // stored as p+1 so the zero-value record means "unset"
}

func (b *DiskBackend) SetParent(idx int64, p int64) {
	b.parentCache[idx] = p
	if len(b.parentCache) >= diskCacheCap {
		b.flushParent()
	}
}

func (b *DiskBackend) flushParent() {
	for idx, p := range b.parentCache {
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], uint64(p+1))
		_, _ = b.parentFile.WriteAt(buf[:], idx*8)
	}
	b.parentCache = make(map[int64]int64, diskCacheCap)
}

func (b *DiskBackend) State(idx int64) VoxelState {
	if s, ok := b.stateCache[idx]; ok {
		return s
	}
	var buf [1]byte
	if _, err := b.stateFile.ReadAt(buf[:], idx); err != nil {
		return Far
	}

	return VoxelState(buf[0])
}

func (b *DiskBackend) SetState(idx int64, s VoxelState) {
	old := b.State(idx)
	b.stateCache[idx] = s
	if s == Alive && old != Alive {
		b.alive[idx] = struct{}{}
	} else if s != Alive && old == Alive {
		delete(b.alive, idx)
	}
	if len(b.stateCache) >= diskCacheCap {
		b.flushState()
	}
}

func (b *DiskBackend) flushState() {
	for idx, s := range b.stateCache {
		_, _ = b.stateFile.WriteAt([]byte{byte(s)}, idx)
	}
	b.stateCache = make(map[int64]VoxelState, diskCacheCap)
}

func (b *DiskBackend) AliveIndices() ([]int64, bool) {
	out := make([]int64, 0, len(b.alive))
	for idx := range b.alive {
		out = append(out, idx)
	}

	return out, true
}

func (b *DiskBackend) MemoryEstimate() int64 {
	return int64((len(b.gwdtCache)+len(b.distCache))*8 + len(b.parentCache)*8 + len(b.stateCache))
}

// Dispose flushes any remaining cached writes and removes the backing
// temp files. Guaranteed to run even when the owning trace fails (§7).
func (b *DiskBackend) Dispose() error {
	b.flushGWDT()
	b.flushDistance()
	b.flushParent()
	b.flushState()

	var firstErr error
	for _, f := range []*os.File{b.gwdtFile, b.distFile, b.parentFile, b.stateFile} {
		name := f.Name()
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		if err := os.Remove(name); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
