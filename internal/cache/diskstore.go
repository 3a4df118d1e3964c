package cache

import (
	"fmt"
	"os"
	"sync"

	"github.com/cciaimaging/tilepyramid/internal/encode"
	"github.com/cciaimaging/tilepyramid/internal/raster"
)

// diskEntry records the location of one encoded tile within a DiskStore's
// spill file.
type diskEntry struct {
	offset int64
	length int32
}

// DiskStore is a Store that spills raster.Buffer payloads to a single
// append-only temp file in their encoded form, trading a decode on every
// RestoreValue for a fraction of the in-memory footprint a resident pixel
// plane would cost. It is the Store half of the teacher's DiskTileStore,
// adapted to the cache package's generic Store interface: this package
// owns capacity accounting and eviction, DiskStore owns only the
// encode/write/read/decode round trip.
//
// Only *raster.Buffer values are supported; StoreValue rejects anything
// else, since the on-disk representation can only round-trip pixel tiles
// through an Encoder/decoder pair.
type DiskStore struct {
	enc  encode.Encoder
	file *os.File

	mu     sync.Mutex
	offset int64
	index  map[string]diskEntry
}

// NewDiskStore creates a DiskStore that spills to a fresh temp file under
// dir (the OS default temp directory if dir is ""), encoding tiles with
// enc. Call Close when the store is no longer needed to remove the file.
func NewDiskStore(dir string, enc encode.Encoder) (*DiskStore, error) {
	f, err := os.CreateTemp(dir, "tilepyramid-diskstore-*.tmp")
	if err != nil {
		return nil, fmt.Errorf("cache: creating disk store spill file: %w", err)
	}
	return &DiskStore{enc: enc, file: f, index: make(map[string]diskEntry)}, nil
}

// StoreValue encodes value (which must be a *raster.Buffer) via the
// configured Encoder and appends it to the spill file, recording its
// extent under key. The reported size is the encoded byte length.
func (s *DiskStore) StoreValue(key string, value any) (any, int64, error) {
	buf, ok := value.(*raster.Buffer)
	if !ok {
		return nil, 0, fmt.Errorf("cache: disk store: unsupported payload type %T", value)
	}

	data, err := s.enc.Encode(buf.AsImage())
	if err != nil {
		return nil, 0, fmt.Errorf("cache: disk store: encoding %q: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.file.Write(data)
	if err != nil {
		return nil, 0, fmt.Errorf("cache: disk store: writing %q: %w", key, err)
	}
	entry := diskEntry{offset: s.offset, length: int32(n)}
	s.index[key] = entry
	s.offset += int64(n)
	return entry, int64(n), nil
}

// RestoreValue reads the encoded bytes back from the spill file and
// decodes them into a *raster.Buffer. stored must be the diskEntry
// returned by a prior StoreValue for the same key.
func (s *DiskStore) RestoreValue(key string, stored any) (any, error) {
	entry, ok := stored.(diskEntry)
	if !ok {
		return nil, fmt.Errorf("cache: disk store: invalid stored handle for %q", key)
	}

	buf := make([]byte, entry.length)
	if _, err := s.file.ReadAt(buf, entry.offset); err != nil {
		return nil, fmt.Errorf("cache: disk store: reading %q: %w", key, err)
	}

	img, err := encode.DecodeImage(buf, s.enc.Format())
	if err != nil {
		return nil, fmt.Errorf("cache: disk store: decoding %q: %w", key, err)
	}
	return raster.FromImage(img), nil
}

// DiscardValue drops key's index entry. The backing bytes stay in the
// spill file until Close; reclaiming that space would require compaction
// this store does not implement.
func (s *DiskStore) DiscardValue(key string, _ any) {
	s.mu.Lock()
	delete(s.index, key)
	s.mu.Unlock()
}

// Close removes the spill file. Safe to call once; repeated calls after
// the first return the close error from an already-closed file.
func (s *DiskStore) Close() error {
	name := s.file.Name()
	if err := s.file.Close(); err != nil {
		return err
	}
	return os.Remove(name)
}
