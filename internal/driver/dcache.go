package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"husk/internal/diag"
	"husk/internal/project"
	"husk/internal/source"
)

// Current schema version; increment when DiskPayload changes.
const diskCacheSchemaVersion uint16 = 1

// DiskCache stores the diagnostics of a crate keyed by the digest of its
// sources. It is safe for concurrent use.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// DiskPayload is what one crate digest maps to.
type DiskPayload struct {
	Schema      uint16
	Files       []string
	Diagnostics []CachedDiagnostic
}

// CachedDiagnostic is a diagnostic whose spans refer to Files by index.
type CachedDiagnostic struct {
	Severity uint8
	Code     uint16
	Message  string
	Span     CachedSpan
	Notes    []CachedNote
}

type CachedSpan struct {
	File       int
	Start, End uint32
}

type CachedNote struct {
	Span CachedSpan
	Msg  string
}

// OpenDiskCache opens the cache directory of app under XDG_CACHE_HOME.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenDiskCacheAt(filepath.Join(base, app))
}

// OpenDiskCacheAt opens a cache rooted at dir.
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// Dir is the directory the cache lives in.
func (c *DiskCache) Dir() string { return c.dir }

func (c *DiskCache) pathFor(key project.Digest) string {
	return filepath.Join(c.dir, "crates", key.Hex()+".mp")
}

// Put serializes payload and replaces the entry for key atomically.
func (c *DiskCache) Put(key project.Digest, payload *DiskPayload) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = rmErr
		}
	}()
	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads the entry for key. A missing entry or one written by another
// schema is a miss.
func (c *DiskCache) Get(key project.Digest, out *DiskPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer func() { _ = f.Close() }()
	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, fmt.Errorf("decode cache entry: %w", err)
	}
	return out.Schema == diskCacheSchemaVersion, nil
}

// DropAll removes every entry.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		return err
	}
	return os.RemoveAll(old)
}

// crateDigest hashes every file in order together with the tool version so
// entries do not survive an upgrade.
func crateDigest(fs *source.FileSet, ids []source.FileID, toolVersion string) project.Digest {
	deps := make([]project.Digest, 0, len(ids)+1)
	for _, id := range ids {
		f := fs.Get(id)
		deps = append(deps, project.Combine(f.Hash, project.DigestOf(f.Path)))
	}
	return project.Combine(project.DigestOf(toolVersion), deps...)
}

func toPayload(bag *diag.Bag, files []string, index map[source.FileID]int) *DiskPayload {
	p := &DiskPayload{Schema: diskCacheSchemaVersion, Files: files}
	span := func(sp source.Span) CachedSpan {
		return CachedSpan{File: index[sp.File], Start: sp.Start, End: sp.End}
	}
	for _, d := range bag.Items() {
		cd := CachedDiagnostic{Severity: uint8(d.Severity), Code: uint16(d.Code), Message: d.Message, Span: span(d.Primary)}
		for _, n := range d.Notes {
			cd.Notes = append(cd.Notes, CachedNote{Span: span(n.Span), Msg: n.Msg})
		}
		p.Diagnostics = append(p.Diagnostics, cd)
	}
	return p
}

func (p *DiskPayload) restore(bag *diag.Bag, ids []source.FileID) {
	span := func(sp CachedSpan) source.Span {
		var id source.FileID
		if sp.File >= 0 && sp.File < len(ids) {
			id = ids[sp.File]
		}
		return source.Span{File: id, Start: sp.Start, End: sp.End}
	}
	for _, cd := range p.Diagnostics {
		d := diag.New(diag.Severity(cd.Severity), diag.Code(cd.Code), span(cd.Span), cd.Message)
		for _, n := range cd.Notes {
			d = d.WithNote(span(n.Span), n.Msg)
		}
		bag.Add(d)
	}
}
