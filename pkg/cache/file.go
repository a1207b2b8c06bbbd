package cache

import (
	"bufio"
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const entryExt = ".entry"

// FileCache stores each entry as a file under dir, sharded by the first byte
// of the key hash. An entry file is the expiry in unix nanoseconds (0 for
// none) on its own line, followed by the raw value.
type FileCache struct {
	dir string
	now func() time.Time
}

// NewFileCache opens, creating if needed, a file cache rooted at dir.
func NewFileCache(dir string) (Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir, now: time.Now}, nil
}

func (c *FileCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	header, value, ok := bytes.Cut(raw, []byte{'\n'})
	expires, perr := strconv.ParseInt(string(header), 10, 64)
	if !ok || perr != nil {
		_ = os.Remove(path) // unreadable, drop it
		return nil, false, nil
	}
	if expires != 0 && c.now().UnixNano() > expires {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return value, true, nil
}

// Set writes the entry to a temporary file and renames it into place, so
// concurrent readers never see a partial value.
func (c *FileCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	var expires int64
	if ttl > 0 {
		expires = c.now().Add(ttl).UnixNano()
	}

	path := c.path(key)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	w.WriteString(strconv.FormatInt(expires, 10))
	w.WriteByte('\n')
	w.Write(data)
	if err := w.Flush(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (c *FileCache) Delete(_ context.Context, key string) error {
	if err := os.Remove(c.path(key)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (c *FileCache) Close() error { return nil }

func (c *FileCache) path(key string) string {
	h := Hash([]byte(key))
	return filepath.Join(c.dir, h[:2], h[2:]+entryExt)
}

// DirStats reports how many entries a file cache at dir holds and their
// total size on disk. A missing dir is an empty cache.
func DirStats(dir string) (entries int, size int64, err error) {
	err = walkEntries(dir, func(_ string, info fs.FileInfo) error {
		entries++
		size += info.Size()
		return nil
	})
	return entries, size, err
}

// ClearDir deletes every entry of the file cache at dir and the shard
// directories left empty. It returns the number of entries deleted.
func ClearDir(dir string) (int, error) {
	n := 0
	err := walkEntries(dir, func(path string, _ fs.FileInfo) error {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
		n++
		return nil
	})
	if err != nil {
		return n, err
	}
	shards, _ := filepath.Glob(filepath.Join(dir, "*"))
	for _, s := range shards {
		_ = os.Remove(s) // only succeeds when empty
	}
	return n, nil
}

func walkEntries(dir string, fn func(path string, info fs.FileInfo) error) error {
	paths, err := filepath.Glob(filepath.Join(dir, "*", "*"+entryExt))
	if err != nil {
		return err
	}
	for _, p := range paths {
		info, err := os.Stat(p)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return err
		}
		if err := fn(p, info); err != nil {
			return err
		}
	}
	return nil
}

var _ Cache = (*FileCache)(nil)
