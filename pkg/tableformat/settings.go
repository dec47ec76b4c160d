package tableformat

import (
	"os"

	gojson "github.com/goccy/go-json"

	"github.com/ajitpratap0/tablestore/pkg/errors"
)

// Settings is a small ordered tree of named entries. A leaf entry holds a
// string, an inner entry holds another Settings. Entry order is kept
// through persistence.
type Settings struct {
	entries []settingsEntry
}

type settingsEntry struct {
	Key      string    `json:"key"`
	Value    *string   `json:"value,omitempty"`
	Children *Settings `json:"children,omitempty"`
}

// NewSettings returns an empty tree.
func NewSettings() *Settings {
	return &Settings{}
}

func (s *Settings) index(key string) int {
	for i := range s.entries {
		if s.entries[i].Key == key {
			return i
		}
	}
	return -1
}

// AddString sets a leaf entry, replacing any entry with the same key.
func (s *Settings) AddString(key, value string) {
	v := value
	e := settingsEntry{Key: key, Value: &v}
	if i := s.index(key); i >= 0 {
		s.entries[i] = e
		return
	}
	s.entries = append(s.entries, e)
}

// AddSettings creates a child tree under key, replacing any existing entry.
func (s *Settings) AddSettings(key string) *Settings {
	child := NewSettings()
	e := settingsEntry{Key: key, Children: child}
	if i := s.index(key); i >= 0 {
		s.entries[i] = e
	} else {
		s.entries = append(s.entries, e)
	}
	return child
}

// GetString returns the leaf value stored under key.
func (s *Settings) GetString(key string) (string, error) {
	i := s.index(key)
	if i < 0 {
		return "", errors.Newf(errors.ErrorTypeInvalidMetadata, "missing setting %q", key)
	}
	if s.entries[i].Value == nil {
		return "", errors.Newf(errors.ErrorTypeInvalidMetadata, "setting %q is not a string", key)
	}
	return *s.entries[i].Value, nil
}

// GetStringOr returns the leaf under key, or def when absent.
func (s *Settings) GetStringOr(key, def string) string {
	v, err := s.GetString(key)
	if err != nil {
		return def
	}
	return v
}

// GetSettings returns the child tree stored under key.
func (s *Settings) GetSettings(key string) (*Settings, error) {
	i := s.index(key)
	if i < 0 {
		return nil, errors.Newf(errors.ErrorTypeInvalidMetadata, "missing settings %q", key)
	}
	if s.entries[i].Children == nil {
		return nil, errors.Newf(errors.ErrorTypeInvalidMetadata, "setting %q is not a tree", key)
	}
	return s.entries[i].Children, nil
}

// Has reports whether an entry named key exists.
func (s *Settings) Has(key string) bool {
	return s.index(key) >= 0
}

// Keys returns entry keys in insertion order.
func (s *Settings) Keys() []string {
	keys := make([]string, len(s.entries))
	for i, e := range s.entries {
		keys[i] = e.Key
	}
	return keys
}

// Len returns the number of entries.
func (s *Settings) Len() int {
	return len(s.entries)
}

// MarshalJSON encodes the tree as an ordered list of entries.
func (s *Settings) MarshalJSON() ([]byte, error) {
	entries := s.entries
	if entries == nil {
		entries = []settingsEntry{}
	}
	return gojson.Marshal(entries)
}

// UnmarshalJSON decodes a tree produced by MarshalJSON.
func (s *Settings) UnmarshalJSON(data []byte) error {
	var entries []settingsEntry
	if err := gojson.Unmarshal(data, &entries); err != nil {
		return err
	}
	for _, e := range entries {
		if (e.Value == nil) == (e.Children == nil) {
			return errors.Newf(errors.ErrorTypeInvalidMetadata, "setting %q must hold exactly one of value or children", e.Key)
		}
	}
	s.entries = entries
	return nil
}

// Save writes the tree as indented JSON to path.
func (s *Settings) Save(path string) error {
	data, err := gojson.MarshalIndent(s, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeInvalidMetadata, "failed to encode settings")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // side-car files are not secret
		return errors.Wrap(err, errors.ErrorTypeIO, "failed to write settings").WithDetail("path", path)
	}
	return nil
}

// LoadSettings reads a tree written by Save.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is chosen by the caller
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeIO, "failed to read settings").WithDetail("path", path)
	}
	s := NewSettings()
	if err := gojson.Unmarshal(data, s); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeInvalidMetadata, "failed to decode settings").WithDetail("path", path)
	}
	return s, nil
}

// SidecarPath returns the conventional side-car metadata path of a table file.
func SidecarPath(tablePath string) string {
	return tablePath + ".meta.json"
}
