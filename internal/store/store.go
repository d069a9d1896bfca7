package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Store owns the cockpit document. All reads and writes go through the mutex,
// so two mutating calls can never interleave their read-modify-write
// sequences; Update persists to disk before it returns.
type Store struct {
	mu   sync.Mutex
	path string
	doc  *Document

	lastTaskID int64
	lastFeedID int64
}

// LoadResult reports how the on-disk document was loaded. A parse failure is
// non-fatal (the store falls back to defaults) but must stay observable.
type LoadResult struct {
	UsedDefaults bool
	ParseErr     error
	BackupPath   string
}

// Open loads the document at path (merging it over the compiled-in defaults)
// and writes it back once so the file is guaranteed to exist. If the file is
// present but unparseable it is preserved aside and defaults are used.
func Open(path string) (*Store, LoadResult, error) {
	s := &Store{path: path}
	res := LoadResult{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		doc, perr := mergeOverDefaults(data)
		if perr != nil {
			// Corrupt file: keep serving from defaults, but preserve the
			// original so nothing is silently lost.
			res.UsedDefaults = true
			res.ParseErr = perr
			res.BackupPath = fmt.Sprintf("%s.corrupt-%d", path, time.Now().Unix())
			if rerr := os.Rename(path, res.BackupPath); rerr != nil {
				res.BackupPath = ""
			}
			slog.Warn("Store: unparseable document, falling back to defaults",
				"path", path, "backup", res.BackupPath, "error", perr)
			s.doc = DefaultDocument()
		} else {
			s.doc = doc
		}
	case os.IsNotExist(err):
		res.UsedDefaults = true
		s.doc = DefaultDocument()
	default:
		return nil, res, fmt.Errorf("read store: %w", err)
	}

	s.seedIDCounters()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, res, fmt.Errorf("create store dir: %w", err)
	}
	if err := s.save(); err != nil {
		return nil, res, err
	}
	return s, res, nil
}

// mergeOverDefaults shallow-merges the raw file over the default document:
// a top-level key present in the file replaces the default collection
// wholesale, absent keys keep their defaults.
func mergeOverDefaults(data []byte) (*Document, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	base, err := json.Marshal(DefaultDocument())
	if err != nil {
		return nil, err
	}
	merged := map[string]json.RawMessage{}
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for k, v := range raw {
		merged[k] = v
	}

	out, err := json.Marshal(merged)
	if err != nil {
		return nil, err
	}
	doc := &Document{}
	if err := json.Unmarshal(out, doc); err != nil {
		return nil, err
	}
	if doc.Memory == nil {
		doc.Memory = map[string]any{}
	}
	return doc, nil
}

func (s *Store) seedIDCounters() {
	for _, t := range s.doc.Tasks {
		if t.ID > s.lastTaskID {
			s.lastTaskID = t.ID
		}
	}
	for _, f := range s.doc.Feed {
		if f.ID > s.lastFeedID {
			s.lastFeedID = f.ID
		}
	}
}

// Path returns the on-disk location of the document.
func (s *Store) Path() string { return s.path }

// View runs fn with read access to the document under the lock. fn must not
// retain references to slices or maps past its return.
func (s *Store) View(fn func(doc *Document)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.doc)
}

// Update runs fn with write access under the lock and persists the whole
// document synchronously before returning. An error from fn aborts the save.
func (s *Store) Update(fn func(doc *Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(s.doc); err != nil {
		return err
	}
	return s.save()
}

// NextTaskID returns a unique timestamp-derived task id. Must be called from
// inside an Update fn (the store lock makes it collision-free).
func (s *Store) NextTaskID() int64 {
	id := time.Now().UnixMilli()
	if id <= s.lastTaskID {
		id = s.lastTaskID + 1
	}
	s.lastTaskID = id
	return id
}

// NextFeedID returns a unique timestamp-derived feed id. Same locking
// contract as NextTaskID.
func (s *Store) NextFeedID() int64 {
	id := time.Now().UnixMilli()
	if id <= s.lastFeedID {
		id = s.lastFeedID + 1
	}
	s.lastFeedID = id
	return id
}

// save writes the document pretty-printed via temp-file + rename so a crash
// mid-write can never truncate the previous state. Callers hold the lock.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".cockpit-*.json")
	if err != nil {
		return fmt.Errorf("temp store file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close store: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace store: %w", err)
	}
	return nil
}

// Stats are the on-demand aggregate counts the dashboard polls.
type Stats struct {
	TotalAgents    int `json:"totalAgents"`
	ActiveAgents   int `json:"activeAgents"`
	TotalTasks     int `json:"totalTasks"`
	PendingTasks   int `json:"pendingTasks"`
	CompletedTasks int `json:"completedTasks"`
	Screenshots    int `json:"screenshots"`
	FeedLength     int `json:"feedLength"`
}

// Stats computes the aggregate counts over current in-memory state.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{
		TotalAgents: len(s.doc.Agents),
		TotalTasks:  len(s.doc.Tasks),
		Screenshots: len(s.doc.Screenshots),
		FeedLength:  len(s.doc.Feed),
	}
	for _, a := range s.doc.Agents {
		if a.Status == AgentActive {
			st.ActiveAgents++
		}
	}
	for _, t := range s.doc.Tasks {
		switch t.Status {
		case TaskPending:
			st.PendingTasks++
		case TaskCompleted:
			st.CompletedTasks++
		}
	}
	return st
}

// FeedLast returns up to n feed items, newest first. The underlying feed is
// never trimmed; the cap applies at read time only.
func (s *Store) FeedLast(n int) []FeedItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := len(s.doc.Feed)
	if n > total {
		n = total
	}
	out := make([]FeedItem, 0, n)
	for i := total - 1; i >= total-n; i-- {
		out = append(out, s.doc.Feed[i])
	}
	return out
}

// AppendFeed appends a feed entry and persists immediately. The id and
// createdAt are always server-assigned; caller-supplied values are replaced.
func (s *Store) AppendFeed(item FeedItem) (FeedItem, error) {
	var stored FeedItem
	err := s.Update(func(doc *Document) error {
		item.ID = s.NextFeedID()
		item.CreatedAt = time.Now().UTC().Format(time.RFC3339)
		doc.Feed = append(doc.Feed, item)
		stored = item
		return nil
	})
	return stored, err
}
