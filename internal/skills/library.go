package skills

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

type cacheEntry struct {
	skill   *Skill
	modTime time.Time
}

// Library discovers SKILL.md files under a root directory and serves them
// with mtime-based hot-reload: a file is reparsed only when its mtime
// advances past what was cached at the last List(). An fsnotify watcher on
// the root directory invalidates entries proactively so a reload shows up
// even between List() calls, but correctness never depends on an fsnotify
// event arriving — a stat-based check on every List() is the source of
// truth.
type Library struct {
	mu      sync.RWMutex
	root    string
	cache   map[string]cacheEntry // path -> entry
	logger  *slog.Logger
	watcher *fsnotify.Watcher
}

// NewLibrary constructs a Library rooted at dir and starts a best-effort
// fsnotify watch on it. dir not existing is not an error: List returns an
// empty slice until it does.
func NewLibrary(dir string, logger *slog.Logger) *Library {
	if logger == nil {
		logger = slog.Default()
	}
	lib := &Library{root: dir, cache: make(map[string]cacheEntry), logger: logger}
	lib.startWatching()
	return lib
}

func (l *Library) startWatching() {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		l.logger.Warn("skills: fsnotify watcher unavailable, relying on mtime checks only", "error", err)
		return
	}
	if err := watcher.Add(l.root); err != nil {
		// Root may not exist yet; List() will pick up new files via mtime
		// checks on its own walk once it does.
		_ = watcher.Close()
		return
	}
	l.watcher = watcher
	go l.watchLoop()
}

func (l *Library) watchLoop() {
	for {
		select {
		case event, ok := <-l.watcher.Events:
			if !ok {
				return
			}
			l.mu.Lock()
			delete(l.cache, event.Name)
			l.mu.Unlock()
		case err, ok := <-l.watcher.Errors:
			if !ok {
				return
			}
			l.logger.Warn("skills: watcher error", "error", err)
		}
	}
}

// Close stops the background watcher.
func (l *Library) Close() error {
	if l.watcher == nil {
		return nil
	}
	return l.watcher.Close()
}

// List walks the skill directory and returns every parsable skill,
// reparsing only files whose mtime has advanced since the last call.
func (l *Library) List() ([]*Skill, error) {
	entries, err := os.ReadDir(l.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read skills directory: %w", err)
	}

	var skills []*Skill
	seen := make(map[string]struct{})

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := filepath.Join(l.root, entry.Name(), "SKILL.md")
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		seen[path] = struct{}{}

		l.mu.RLock()
		cached, ok := l.cache[path]
		l.mu.RUnlock()

		if ok && !info.ModTime().After(cached.modTime) {
			skills = append(skills, cached.skill)
			continue
		}

		skill, err := ParseFile(path)
		if err != nil {
			l.logger.Warn("skills: failed to parse skill, skipping", "path", path, "error", err)
			continue
		}

		l.mu.Lock()
		l.cache[path] = cacheEntry{skill: skill, modTime: info.ModTime()}
		l.mu.Unlock()

		skills = append(skills, skill)
	}

	l.mu.Lock()
	for path := range l.cache {
		if _, ok := seen[path]; !ok {
			delete(l.cache, path)
		}
	}
	l.mu.Unlock()

	return skills, nil
}

// Get returns a single skill by name, rereading disk first.
func (l *Library) Get(name string) (*Skill, bool) {
	all, err := l.List()
	if err != nil {
		return nil, false
	}
	for _, s := range all {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}
