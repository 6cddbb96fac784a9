package dictionary

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"os"
)

// Entry maps a misspelled proper noun to its canonical spelling.
type Entry struct {
	Incorrect string `json:"incorrect"`
	Correct   string `json:"correct"`
}

// Dictionary is an immutable, ordered set of proper-noun corrections.
// Order follows the keys of the source JSON object.
type Dictionary struct {
	entries []Entry
}

// New builds a dictionary from entries. A repeated Incorrect term keeps its
// first position and takes the last Correct value.
func New(entries ...Entry) *Dictionary {
	d := &Dictionary{}
	index := make(map[string]int, len(entries))
	for _, e := range entries {
		if i, ok := index[e.Incorrect]; ok {
			d.entries[i].Correct = e.Correct
			continue
		}
		index[e.Incorrect] = len(d.entries)
		d.entries = append(d.entries, e)
	}
	return d
}

// Empty returns a dictionary with no entries.
func Empty() *Dictionary {
	return &Dictionary{}
}

// Len returns the number of entries.
func (d *Dictionary) Len() int {
	if d == nil {
		return 0
	}
	return len(d.entries)
}

// All iterates entries as (incorrect, correct) pairs in dictionary order.
func (d *Dictionary) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		if d == nil {
			return
		}
		for _, e := range d.entries {
			if !yield(e.Incorrect, e.Correct) {
				return
			}
		}
	}
}

// Entries returns a copy of the entries in order.
func (d *Dictionary) Entries() []Entry {
	if d == nil {
		return nil
	}
	out := make([]Entry, len(d.entries))
	copy(out, d.entries)
	return out
}

// Parse decodes a JSON object of string keys to string values, keeping key
// order.
func Parse(r io.Reader) (*Dictionary, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("read dictionary: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New("dictionary must be a JSON object")
	}

	var entries []Entry
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("read dictionary key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected dictionary key %v", keyTok)
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("dictionary value for %q: %w", key, err)
		}
		entries = append(entries, Entry{Incorrect: key, Correct: value})
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("read dictionary: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after dictionary object")
	}

	return New(entries...), nil
}

// Load reads and parses the dictionary file at path.
func Load(path string) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	d, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// LoadOrEmpty loads the dictionary at path. Any failure is logged as a
// warning and yields an empty dictionary.
func LoadOrEmpty(path string, log *slog.Logger) *Dictionary {
	d, err := Load(path)
	if err != nil {
		log.Warn("dictionary not found or invalid, skipping proper noun correction",
			"path", path, "error", err)
		return Empty()
	}
	log.Info("loaded proper nouns from dictionary", "path", path, "entries", d.Len())
	return d
}
