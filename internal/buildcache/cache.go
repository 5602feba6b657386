// Package buildcache records which schema documents were already rendered
// so unchanged documents can be skipped on the next run.
//
// An entry is trusted only when the cache format, the output-affecting
// config and the document's input hash all match, and its output file
// still exists. Any mismatch regenerates that document.
package buildcache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// SchemaVersion is bumped when the cache format or the rendered output
// format changes.
const SchemaVersion = 1

// Cache is the on-disk generation cache. Record and Fresh are safe for
// concurrent use.
type Cache struct {
	// V is the schema version. Must match SchemaVersion or cache is invalid.
	V int `json:"v"`

	// ConfigHash fingerprints the config settings that affect output.
	ConfigHash string `json:"configHash"`

	// Entries maps a resource type name to what was generated for it.
	Entries map[string]Entry `json:"entries"`

	mu sync.Mutex
}

// Entry describes the last generation of one document.
type Entry struct {
	// InputHash is the digest of the schema and any supplemental docs.
	InputHash string `json:"inputHash"`
	// Output is the path of the generated module.
	Output string `json:"output"`
}

// New creates an empty cache for the given config fingerprint.
func New(configHash string) *Cache {
	return &Cache{
		V:          SchemaVersion,
		ConfigHash: configHash,
		Entries:    make(map[string]Entry),
	}
}

// Load reads a cache file from disk.
// Returns nil if the file doesn't exist, is unreadable, or is invalid JSON.
// Callers should treat nil as a full miss.
func Load(path string) *Cache {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var c Cache
	if err := json.Unmarshal(data, &c); err != nil {
		return nil
	}
	if c.Entries == nil {
		c.Entries = make(map[string]Entry)
	}
	return &c
}

// Open loads the cache at path when it is usable with configHash, and
// returns an empty cache otherwise.
func Open(path, configHash string) *Cache {
	if c := Load(path); c.IsValid(configHash) {
		return c
	}
	return New(configHash)
}

// Save writes the cache to disk atomically (write to temp, rename).
// A failed save only means the next run regenerates everything.
func Save(path string, cache *Cache) error {
	cache.mu.Lock()
	data, err := json.Marshal(cache, json.Deterministic(true), jsontext.WithIndent("  "))
	cache.mu.Unlock()
	if err != nil {
		return fmt.Errorf("marshaling cache: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating cache directory %s: %w", dir, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing cache temp file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming cache file: %w", err)
	}

	return nil
}

// Delete removes the cache file from disk. Errors are ignored (file may not exist).
func Delete(path string) {
	os.Remove(path)
}

// IsValid reports whether entries of c may be trusted under the current
// config fingerprint.
func (c *Cache) IsValid(currentConfigHash string) bool {
	if c == nil {
		return false
	}
	return c.V == SchemaVersion && c.ConfigHash == currentConfigHash
}

// Fresh reports whether typeName was generated from inputHash and its
// output file still exists.
func (c *Cache) Fresh(typeName, inputHash string) bool {
	if c == nil {
		return false
	}
	c.mu.Lock()
	e, ok := c.Entries[typeName]
	c.mu.Unlock()
	if !ok || e.InputHash != inputHash {
		return false
	}
	_, err := os.Stat(e.Output)
	return err == nil
}

// Record stores the result of generating typeName.
func (c *Cache) Record(typeName, inputHash, output string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Entries[typeName] = Entry{InputHash: inputHash, Output: output}
}

// Prune drops entries whose type name is not in keep.
func (c *Cache) Prune(keep map[string]bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for name := range c.Entries {
		if !keep[name] {
			delete(c.Entries, name)
		}
	}
}

// Hash returns the SHA-256 hex digest of the concatenated parts, each
// length-prefixed so that part boundaries matter.
func Hash(parts ...[]byte) string {
	h := sha256.New()
	for _, p := range parts {
		fmt.Fprintf(h, "%d:", len(p))
		h.Write(p)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// HashFile computes the SHA-256 hex digest of a file's contents.
// Returns empty string if the file doesn't exist or can't be read.
func HashFile(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
