package memory

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"picoagent/pkg/models"
)

// vectorFileMagic identifies picoagent's binary embedding file format.
const vectorFileMagic = "PICOVEC1"

// sidecarSuffix is appended to the vector file path for the JSON metadata
// sidecar.
const sidecarSuffix = ".meta.json"

// sidecarEntry is the JSON-persisted half of a record; the embedding lives
// in the binary vector file at the matching index.
type sidecarEntry struct {
	ID        string `json:"id"`
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
	LastUsed  string `json:"last_used"`
	UseCount  int    `json:"use_count"`
}

type sidecar struct {
	Version int            `json:"version"`
	Entries []sidecarEntry `json:"entries"`
}

// Save writes the store to path (the binary vector file) and
// path+sidecarSuffix (the JSON metadata), both via write-then-rename so a
// crash mid-write never leaves a corrupt file in place.
func (s *Store) Save(path string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dim := 0
	entries := make([]sidecarEntry, 0, len(s.records))
	var vecBuf bytes.Buffer
	for _, rec := range s.records {
		if dim == 0 {
			dim = len(rec.Embedding)
		}
		if len(rec.Embedding) != dim {
			return &DimensionMismatchError{Expected: dim, Got: len(rec.Embedding)}
		}
		entries = append(entries, sidecarEntry{
			ID:        rec.ID,
			SessionID: rec.SessionID,
			Text:      rec.Text,
			CreatedAt: rec.CreatedAt.Format(timeLayout),
			LastUsed:  rec.LastUsed.Format(timeLayout),
			UseCount:  rec.UseCount,
		})
		for _, f := range rec.Embedding {
			if err := binary.Write(&vecBuf, binary.LittleEndian, f); err != nil {
				return fmt.Errorf("memory: encode embedding: %w", err)
			}
		}
	}

	var header bytes.Buffer
	header.WriteString(vectorFileMagic)
	if err := binary.Write(&header, binary.LittleEndian, int32(dim)); err != nil {
		return err
	}
	if err := binary.Write(&header, binary.LittleEndian, int32(len(entries))); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	if err := atomicWrite(path, append(header.Bytes(), vecBuf.Bytes()...), 0600); err != nil {
		return fmt.Errorf("memory: write vector file: %w", err)
	}

	meta := sidecar{Version: 1, Entries: entries}
	payload, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	if err := atomicWrite(path+sidecarSuffix, payload, 0600); err != nil {
		return fmt.Errorf("memory: write sidecar: %w", err)
	}
	return nil
}

// Load reads a store previously written by Save. expectedDim is the
// embedding dimension of the currently configured provider; if the file's
// dimension differs, Load returns a *DimensionMismatchError rather than
// silently truncating or padding vectors.
func Load(path string, expectedDim int, cfg Config) (*Store, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewStore(cfg, nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("memory: read vector file: %w", err)
	}
	metaData, err := os.ReadFile(path + sidecarSuffix)
	if err != nil {
		return nil, fmt.Errorf("memory: read sidecar: %w", err)
	}

	if len(data) < len(vectorFileMagic)+8 || string(data[:len(vectorFileMagic)]) != vectorFileMagic {
		return nil, fmt.Errorf("memory: vector file has invalid header")
	}
	r := bytes.NewReader(data[len(vectorFileMagic):])
	var dim, count int32
	if err := binary.Read(r, binary.LittleEndian, &dim); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, err
	}
	if expectedDim > 0 && int(dim) != expectedDim && count > 0 {
		return nil, &DimensionMismatchError{Expected: expectedDim, Got: int(dim)}
	}

	var meta sidecar
	if err := json.Unmarshal(metaData, &meta); err != nil {
		return nil, fmt.Errorf("memory: decode sidecar: %w", err)
	}
	if int(count) != len(meta.Entries) {
		return nil, fmt.Errorf("memory: vector file and sidecar record counts disagree (%d vs %d)", count, len(meta.Entries))
	}

	store := NewStore(cfg, nil)
	store.dim = int(dim)
	for _, e := range meta.Entries {
		vec := make([]float32, dim)
		for i := range vec {
			if err := binary.Read(r, binary.LittleEndian, &vec[i]); err != nil {
				return nil, fmt.Errorf("memory: read embedding for %s: %w", e.ID, err)
			}
		}
		created, _ := parseTime(e.CreatedAt)
		lastUsed, _ := parseTime(e.LastUsed)
		store.records[e.ID] = &models.MemoryRecord{
			ID:        e.ID,
			SessionID: e.SessionID,
			Text:      e.Text,
			Embedding: vec,
			CreatedAt: created,
			LastUsed:  lastUsed,
			UseCount:  e.UseCount,
		}
	}
	return store, nil
}

func atomicWrite(path string, data []byte, perm os.FileMode) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
