package irpack

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// Digest identifies a cache entry.
type Digest [32]byte

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// Key hashes manifest bytes together with the schema version, so a schema
// bump never hits entries written by an older binary.
func Key(manifest []byte) Digest {
	h := sha256.New()
	var schema [2]byte
	binary.LittleEndian.PutUint16(schema[:], SchemaVersion)
	_, _ = h.Write(schema[:])
	_, _ = h.Write(manifest)
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// Cache stores payloads under <dir>/shaders/<digest>.mp.
// It is safe for concurrent use; a nil *Cache never hits and ignores writes.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

// DefaultDir is $XDG_CACHE_HOME/nuanceur, falling back to ~/.cache/nuanceur.
func DefaultDir() (string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".cache")
	}
	return filepath.Join(base, "nuanceur"), nil
}

// Open creates dir if needed.
func Open(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

func (c *Cache) Dir() string { return c.dir }

func (c *Cache) pathFor(key Digest) string {
	return filepath.Join(c.dir, "shaders", key.String()+".mp")
}

// Put writes p atomically: encode to a temp file, then rename over the entry.
func (c *Cache) Put(key Digest, p *Payload) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	dst := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(dst), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(f.Name())
		}
	}()
	if err := Encode(f, p); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), dst)
}

// Get loads the entry for key. Absent entries and entries of another schema
// are misses; other read or decode failures are returned as errors.
func (c *Cache) Get(key Digest) (*Payload, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	defer f.Close()

	p, err := Decode(f)
	if errors.Is(err, ErrSchemaMismatch) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return p, true, nil
}

// DropAll removes every entry.
func (c *Cache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return os.RemoveAll(filepath.Join(c.dir, "shaders"))
}
