package console

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"
)

// DefaultHistoryLimit caps the prompts kept by a History.
const DefaultHistoryLimit = 200

// History is the list of previous prompts, one per line, newest last.
type History struct {
	mu      sync.Mutex
	fs      afero.Fs
	path    string
	limit   int
	entries []string
}

// LoadHistory reads path from fs. A missing file is an empty history; an
// empty path keeps the history in memory only.
func LoadHistory(fs afero.Fs, path string) (*History, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	h := &History{fs: fs, path: path, limit: DefaultHistoryLimit}
	if path == "" {
		return h, nil
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return h, nil
		}
		return nil, fmt.Errorf("console: read history: %w", err)
	}
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			h.entries = append(h.entries, line)
		}
	}
	h.trim()
	return h, nil
}

// Entries returns the prompts, oldest first.
func (h *History) Entries() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.entries...)
}

// Append records prompt and persists the history. Blank prompts and repeats
// of the last entry are ignored. Newlines are folded so every prompt keeps
// one line.
func (h *History) Append(prompt string) error {
	prompt = strings.Join(strings.Fields(prompt), " ")
	if prompt == "" {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if n := len(h.entries); n > 0 && h.entries[n-1] == prompt {
		return nil
	}
	h.entries = append(h.entries, prompt)
	h.trim()
	if h.path == "" {
		return nil
	}
	if err := h.fs.MkdirAll(filepath.Dir(h.path), 0o755); err != nil {
		return fmt.Errorf("console: write history: %w", err)
	}
	body := strings.Join(h.entries, "\n") + "\n"
	if err := afero.WriteFile(h.fs, h.path, []byte(body), 0o600); err != nil {
		return fmt.Errorf("console: write history: %w", err)
	}
	return nil
}

// Suggest returns previous prompts starting with prefix, newest first.
func (h *History) Suggest(prefix string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	var out []string
	seen := map[string]bool{}
	for i := len(h.entries) - 1; i >= 0; i-- {
		entry := h.entries[i]
		if seen[entry] || !strings.HasPrefix(strings.ToLower(entry), prefix) {
			continue
		}
		seen[entry] = true
		out = append(out, entry)
	}
	return out
}

func (h *History) trim() {
	if h.limit > 0 && len(h.entries) > h.limit {
		h.entries = append([]string(nil), h.entries[len(h.entries)-h.limit:]...)
	}
}
