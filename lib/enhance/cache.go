package enhance

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Mode selects which supplement(s) an enhancement run generates.
type Mode string

const (
	ModeContext Mode = "context"
	ModeFacts   Mode = "facts"
	ModeBoth    Mode = "both"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeContext:
		return ModeContext, nil
	case ModeFacts:
		return ModeFacts, nil
	case ModeBoth:
		return ModeBoth, nil
	}
	return "", fmt.Errorf("unknown mode %q (want context, facts or both)", s)
}

// baseModes expands "both" into the two modes that actually get
// computed and cached. Cache records only ever exist under base
// modes, so switching to "both" reuses prior work instead of
// recomputing it.
func (m Mode) baseModes() []Mode {
	if m == ModeBoth {
		return []Mode{ModeContext, ModeFacts}
	}
	return []Mode{m}
}

// Record is one cached enhancement, keyed by entry identity and mode.
type Record struct {
	EntryID    string    `json:"entry_id"`
	Mode       Mode      `json:"mode"`
	Text       string    `json:"text"`
	ComputedAt time.Time `json:"computed_at"`
}

// CorruptError means the cache file exists but cannot be decoded.
// This is fatal before any API spend: silently discarding the cache
// would re-incur every paid call it represents.
type CorruptError struct {
	Path string
	Err  error
}

func (e CorruptError) Error() string {
	return fmt.Sprintf("corrupt enhancement cache %s: %s", e.Path, e.Err)
}

func (e CorruptError) Unwrap() error {
	return e.Err
}

// Cache is a flat JSON file mapping "<entry_id>:<mode>" to a Record.
// It is loaded fully at open, mutated in memory and flushed
// write-through after every Put, so a crash mid-run preserves all
// prior progress.
type Cache struct {
	path    string
	records map[string]Record
}

func cacheKey(entryID string, mode Mode) string {
	return entryID + ":" + string(mode)
}

// OpenCache loads the cache at path. A missing or empty file is an
// empty cache, not an error. Unknown JSON keys inside records are
// ignored for forward compatibility.
func OpenCache(path string) (*Cache, error) {
	cache := &Cache{
		path:    path,
		records: map[string]Record{},
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cache, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cache: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return cache, nil
	}

	if err := json.Unmarshal(data, &cache.records); err != nil {
		return nil, CorruptError{Path: path, Err: err}
	}
	return cache, nil
}

func (c *Cache) Get(entryID string, mode Mode) (Record, bool) {
	rec, ok := c.records[cacheKey(entryID, mode)]
	return rec, ok
}

// Put stores a record and persists the whole cache immediately.
func (c *Cache) Put(entryID string, mode Mode, text string) error {
	c.records[cacheKey(entryID, mode)] = Record{
		EntryID:    entryID,
		Mode:       mode,
		Text:       text,
		ComputedAt: time.Now().UTC(),
	}
	return c.flush()
}

func (c *Cache) Len() int {
	return len(c.records)
}

// flush writes via temp file + rename so an interrupt never leaves a
// truncated cache behind.
func (c *Cache) flush() error {
	data, err := json.MarshalIndent(c.records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}

	dir := filepath.Dir(c.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(c.path)+".tmp*")
	if err != nil {
		return fmt.Errorf("create cache temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close cache temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path); err != nil {
		return fmt.Errorf("rename cache into place: %w", err)
	}
	return nil
}
