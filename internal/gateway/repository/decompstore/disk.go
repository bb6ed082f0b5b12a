package decompstore

import (
	"encoding/json"
	"os"
	"path/filepath"

	"etymograph/internal/morph"
	"etymograph/internal/resolve"
)

// ensureLoaded reads the persisted outcomes into the LRU exactly once.
// A missing or unreadable file leaves the store empty; persistence is
// best effort and never blocks serving.
func (s *Store) ensureLoaded() {
	if s.path == "" {
		return
	}
	s.loadOnce.Do(func() {
		b, err := os.ReadFile(s.path)
		if err != nil {
			return
		}
		var rows []resolve.Outcome
		if err := json.Unmarshal(b, &rows); err != nil {
			return
		}
		for _, out := range rows {
			if !out.Accepted {
				continue
			}
			key := morph.NormalizeWord(out.Word)
			if key == "" {
				continue
			}
			s.cache.Add(key, out)
		}
	})
}

// save rewrites the whole file from the current LRU contents. The write
// goes through a temp file and rename so a crash mid-write cannot
// truncate the previous copy.
func (s *Store) save() {
	if s.path == "" {
		return
	}
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	rows := s.Outcomes()
	b, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return
	}
	_ = os.Rename(tmp, s.path)
}
