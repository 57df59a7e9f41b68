// Package assets locates LDraw files in the parts library and caches the
// parsed documents.
package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mitchellh/go-homedir"

	"github.com/Faultbox/brickview/pkg/ldraw"
)

// ErrFileNotFound is returned when no search directory holds a file.
var ErrFileNotFound = errors.New("file not found")

// Origin tells which part of the library a file came from.
type Origin int

const (
	OriginLocal Origin = iota
	OriginModel
	OriginPart
	OriginSubpart
	OriginPrimitive
)

func (o Origin) String() string {
	switch o {
	case OriginLocal:
		return "local"
	case OriginModel:
		return "model"
	case OriginPart:
		return "part"
	case OriginSubpart:
		return "subpart"
	case OriginPrimitive:
		return "primitive"
	default:
		return fmt.Sprintf("Origin(%d)", int(o))
	}
}

// Source is a resolved file reference.
type Source struct {
	Name   string // normalized reference, e.g. "s/3001s01.dat"
	Path   string
	Origin Origin
}

type searchDir struct {
	path   string
	origin Origin
}

// Library resolves LDraw file references against the library folders.
type Library struct {
	root  string
	dirs  []searchDir
	cache *Cache
	mu    sync.RWMutex
}

// NewLibrary creates a library rooted at dir, the folder that holds
// parts/ and p/. A leading ~ is expanded. An empty dir gives a library
// that only resolves files next to the model.
func NewLibrary(dir string) (*Library, error) {
	l := &Library{cache: NewCache()}
	if dir == "" {
		return l, nil
	}
	root, err := homedir.Expand(dir)
	if err != nil {
		return nil, fmt.Errorf("expanding %s: %w", dir, err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("ldraw library %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("ldraw library %s: not a directory", root)
	}
	l.root = root

	// Later entries win, so official folders go last.
	for _, d := range []searchDir{
		{filepath.Join(root, "unofficial", "p"), OriginPrimitive},
		{filepath.Join(root, "unofficial", "parts"), OriginPart},
		{filepath.Join(root, "models"), OriginModel},
		{filepath.Join(root, "p"), OriginPrimitive},
		{filepath.Join(root, "parts"), OriginPart},
	} {
		if isDir(d.path) {
			l.dirs = append(l.dirs, d)
		}
	}
	return l, nil
}

// Root returns the expanded library folder, or "".
func (l *Library) Root() string { return l.root }

// AddSearchDir adds a folder searched before every folder added earlier.
func (l *Library) AddSearchDir(dir string) error {
	path, err := homedir.Expand(dir)
	if err != nil {
		return fmt.Errorf("expanding %s: %w", dir, err)
	}
	l.mu.Lock()
	l.dirs = append(l.dirs, searchDir{path: path, origin: OriginModel})
	l.mu.Unlock()
	return nil
}

// Resolve finds the file a sub-file line refers to. localDir, the folder of
// the referencing model, is searched first.
func (l *Library) Resolve(name, localDir string) (Source, error) {
	ref := ldraw.NormalizeName(name)
	if localDir != "" {
		if path, ok := find(localDir, ref); ok {
			return Source{Name: ref, Path: path, Origin: OriginLocal}, nil
		}
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	for i := len(l.dirs) - 1; i >= 0; i-- {
		d := l.dirs[i]
		path, ok := find(d.path, ref)
		if !ok {
			continue
		}
		origin := d.origin
		if origin == OriginPart && strings.HasPrefix(ref, "s/") {
			origin = OriginSubpart
		}
		return Source{Name: ref, Path: path, Origin: origin}, nil
	}
	return Source{}, fmt.Errorf("%w: %s", ErrFileNotFound, name)
}

// Load resolves and parses a file, returning the cached document when the
// same path was loaded before.
func (l *Library) Load(name, localDir string) (*ldraw.Document, Source, error) {
	src, err := l.Resolve(name, localDir)
	if err != nil {
		return nil, Source{}, err
	}
	if doc, ok := l.cache.Get(src.Path); ok {
		return doc, src, nil
	}
	doc, err := ldraw.ParseFile(src.Path)
	if err != nil {
		return nil, src, err
	}
	l.cache.Set(src.Path, doc)
	return doc, src, nil
}

// Cache returns the document cache.
func (l *Library) Cache() *Cache { return l.cache }

// find looks for ref below dir.
func find(dir, ref string) (string, bool) {
	path := filepath.Join(dir, filepath.FromSlash(ref))
	if isFile(path) {
		return path, true
	}
	return "", false
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Cache holds parsed documents by path.
type Cache struct {
	data map[string]*ldraw.Document
	mu   sync.Mutex

	// Stats
	hits   int
	misses int
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string]*ldraw.Document),
	}
}

// Get retrieves a document.
func (c *Cache) Get(path string) (*ldraw.Document, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	doc, ok := c.data[path]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return doc, ok
}

// Set stores a document.
func (c *Cache) Set(path string, doc *ldraw.Document) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[path] = doc
}

// Invalidate drops one path, so the next Load parses it again.
func (c *Cache) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, path)
}

// Clear empties the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]*ldraw.Document)
	c.hits = 0
	c.misses = 0
}

// Len returns the number of cached documents.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
