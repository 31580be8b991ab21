// Package store persists the last grading result of each artifact as one
// JSON document per artifact path, fronted by an in-memory LRU cache.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode/utf16"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Yates-Labs/compujudge/internal/grade"
)

const (
	// DefaultDataDir is the hidden folder documents are written to.
	DefaultDataDir = ".compu-judge"

	DefaultCacheSize = 256
)

var ErrNoPath = errors.New("project data has no file path")

// ProjectData is everything remembered about one artifact. The JSON keys
// stay compatible with documents written by the editor plugin.
type ProjectData struct {
	FilePath string `json:"filePath"`

	// StoryBible is the opaque wizard state the author filled in.
	StoryBible json.RawMessage `json:"wizardState,omitempty"`

	LastResult *grade.GradeResult `json:"lastAiResult"`

	// UpdatedAt and LastAnalysisMtime are Unix milliseconds.
	UpdatedAt         int64  `json:"updatedAt"`
	LastAnalysisMtime *int64 `json:"lastAnalysisMtime"`
}

// Store defines the persistence operations the grading surface needs.
type Store interface {
	// Load returns the stored document for path, or fresh defaults when
	// nothing usable is on disk.
	Load(ctx context.Context, path string) (*ProjectData, error)

	// Save writes data, stamping UpdatedAt. A non-nil mtime records the
	// artifact's modification time at analysis.
	Save(ctx context.Context, data *ProjectData, mtime *time.Time) error

	// SaveResult replaces the last result of path, keeping the rest.
	SaveResult(ctx context.Context, path string, result *grade.GradeResult, mtime *time.Time) error

	// Purge deletes every stored document and returns how many were removed.
	Purge(ctx context.Context) (int, error)
}

// Config configures a FileStore.
type Config struct {
	Dir       string
	CacheSize int
}

// FileStore implements Store on the local filesystem.
type FileStore struct {
	dir   string
	cache *lru.Cache[string, *ProjectData]
	mu    sync.Mutex
	now   func() time.Time
}

// New creates a FileStore rooted at config.Dir. The directory is created
// lazily on first save.
func New(config Config) (*FileStore, error) {
	if config.Dir == "" {
		config.Dir = DefaultDataDir
	}
	if config.CacheSize <= 0 {
		config.CacheSize = DefaultCacheSize
	}

	cache, err := lru.New[string, *ProjectData](config.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}

	return &FileStore{
		dir:   config.Dir,
		cache: cache,
		now:   time.Now,
	}, nil
}

// Dir returns the data directory.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) defaults(path string) *ProjectData {
	return &ProjectData{
		FilePath:  path,
		UpdatedAt: s.now().UnixMilli(),
	}
}

func (s *FileStore) Load(ctx context.Context, path string) (*ProjectData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if path == "" {
		return nil, ErrNoPath
	}

	if cached, ok := s.cache.Get(path); ok {
		clone := *cached
		return &clone, nil
	}

	raw, err := os.ReadFile(s.documentPath(path))
	if errors.Is(err, os.ErrNotExist) {
		return s.defaults(path), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read project data for %s: %w", path, err)
	}

	data := s.defaults(path)
	if err := json.Unmarshal(raw, data); err != nil {
		log.Printf("[Store] Corrupt data for %s: %v", path, err)
		return s.defaults(path), nil
	}
	data.FilePath = path

	s.cache.Add(path, data)
	clone := *data
	return &clone, nil
}

func (s *FileStore) Save(ctx context.Context, data *ProjectData, mtime *time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if data == nil || data.FilePath == "" {
		return ErrNoPath
	}

	clean := *data
	clean.UpdatedAt = s.now().UnixMilli()
	if mtime != nil {
		ms := mtime.UnixMilli()
		clean.LastAnalysisMtime = &ms
	}

	encoded, err := json.MarshalIndent(&clean, "", "  ")
	if err != nil {
		return fmt.Errorf("encode project data: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	target := s.documentPath(clean.FilePath)
	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("save %s: %w", clean.FilePath, err)
	}
	if _, err := tmp.Write(encoded); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("save %s: %w", clean.FilePath, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("save %s: %w", clean.FilePath, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("save %s: %w", clean.FilePath, err)
	}

	s.cache.Add(clean.FilePath, &clean)
	return nil
}

func (s *FileStore) SaveResult(ctx context.Context, path string, result *grade.GradeResult, mtime *time.Time) error {
	data, err := s.Load(ctx, path)
	if err != nil {
		return err
	}
	data.LastResult = result
	return s.Save(ctx, data, mtime)
}

func (s *FileStore) Purge(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.cache.Purge()

	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("list data dir: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			return removed, fmt.Errorf("purge %s: %w", entry.Name(), err)
		}
		removed++
	}
	log.Printf("[Store] Purged %d documents from %s", removed, s.dir)
	return removed, nil
}

func (s *FileStore) documentPath(path string) string {
	return filepath.Join(s.dir, DocumentName(path))
}

// DocumentName maps an artifact path to its document file name:
// the sanitized base name plus a 31-multiplier hash of the full path, so
// equal base names in different folders do not collide.
// "Folder/My Story.md" becomes "My_Story_md_343170781.json".
func DocumentName(path string) string {
	path = filepath.ToSlash(path)

	var hash int32
	for _, unit := range utf16.Encode([]rune(path)) {
		hash = (hash << 5) - hash + int32(unit)
	}
	abs := int64(hash)
	if abs < 0 {
		abs = -abs
	}

	base := path[strings.LastIndex(path, "/")+1:]
	var b strings.Builder
	for _, r := range base {
		if isASCIIAlnum(r) {
			b.WriteRune(r)
			continue
		}
		// One underscore per UTF-16 unit.
		b.WriteString(strings.Repeat("_", utf16.RuneLen(r)))
	}
	name := b.String()
	if name == "" {
		name = "untitled"
	}
	return fmt.Sprintf("%s_%d.json", name, abs)
}

func isASCIIAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
