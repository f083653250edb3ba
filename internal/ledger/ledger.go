package ledger

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrLedger marks a ledger file that is missing or is not a JSON object.
	ErrLedger = errors.New("invalid ledger")
	// ErrMissingClassHash is returned when a contract has no recorded declare.
	ErrMissingClassHash = errors.New("missing class_hash")
)

// Phase is how far a contract got: nothing recorded, declared, or deployed.
type Phase string

const (
	PhaseUndeclared Phase = "undeclared"
	PhaseDeclared   Phase = "declared"
	PhaseDeployed   Phase = "deployed"
)

// Record is what the ledger keeps for one contract name.
type Record struct {
	ClassHash string `json:"class_hash"`
	Address   string `json:"address,omitempty"`
}

// Phase derives the phase from which fields are set.
func (r Record) Phase() Phase {
	switch {
	case r.ClassHash == "":
		return PhaseUndeclared
	case r.Address == "":
		return PhaseDeclared
	default:
		return PhaseDeployed
	}
}

// Ledger maps contract names to their deployment record. Names keep the
// order they had in the file; new names go last.
type Ledger struct {
	names   []string
	records map[string]Record
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{records: map[string]Record{}}
}

func (l *Ledger) set(name string, rec Record) {
	if l.records == nil {
		l.records = map[string]Record{}
	}
	if _, ok := l.records[name]; !ok {
		l.names = append(l.names, name)
	}
	l.records[name] = rec
}

// Get returns the record for name.
func (l *Ledger) Get(name string) (Record, bool) {
	rec, ok := l.records[name]
	return rec, ok
}

// Len is the number of contracts recorded.
func (l *Ledger) Len() int {
	return len(l.names)
}

// ClassHash returns the class hash recorded for name.
func (l *Ledger) ClassHash(name string) (string, error) {
	rec, ok := l.records[name]
	if !ok || strings.TrimSpace(rec.ClassHash) == "" {
		return "", fmt.Errorf("%w for contract %q, declare it first", ErrMissingClassHash, name)
	}
	return rec.ClassHash, nil
}

// Declared replaces the record for name with a freshly declared one.
func (l *Ledger) Declared(name, classHash string) {
	l.set(name, Record{ClassHash: classHash})
}

// Deployed stores the address of name, keeping its class hash.
func (l *Ledger) Deployed(name, address string) error {
	classHash, err := l.ClassHash(name)
	if err != nil {
		return err
	}
	l.set(name, Record{ClassHash: classHash, Address: address})
	return nil
}

// Names returns the contract names in ledger order.
func (l *Ledger) Names() []string {
	return append([]string(nil), l.names...)
}

// MarshalJSON writes the records as one object in ledger order.
func (l *Ledger) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	buf.WriteByte('{')
	for i, name := range l.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := enc.Encode(name); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := enc.Encode(l.records[name]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object of records, remembering key order. A
// repeated key keeps its first position and its last value.
func (l *Ledger) UnmarshalJSON(b []byte) error {
	*l = Ledger{records: map[string]Record{}}

	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("ledger must be a JSON object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected ledger key %v", tok)
		}
		var rec Record
		if err := dec.Decode(&rec); err != nil {
			return fmt.Errorf("contract %q: %w", name, err)
		}
		l.set(name, rec)
	}
	_, err = dec.Token()
	return err
}

// Store reads and rewrites the ledger file as a whole.
type Store struct {
	path string
}

// NewStore returns a store for the ledger file at path. Nothing is read
// until Load.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path is the ledger file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads and parses the ledger file. A missing file and anything other
// than a JSON object fail with ErrLedger; a literal null is an empty ledger.
func (s *Store) Load() (*Ledger, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrLedger, s.path, err)
	}

	l := New()
	if err := json.Unmarshal(b, l); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrLedger, s.path, err)
	}
	return l, nil
}

// Save overwrites the ledger file with l, indented by two spaces with keys
// in ledger order. The document is written to a sibling temp file first and
// renamed over the target.
func (s *Store) Save(l *Ledger) error {
	if l == nil {
		l = New()
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(l); err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create ledger dir: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace ledger: %w", err)
	}
	return nil
}
