// Package auditlog is a persistent, append-only log of pseudonym usage.
//
// A verifier that wants to observe pseudonym stability over time —
// without any opening or revocation capability — needs somewhere to
// keep the (basename, NYM) pairs it has seen. This is ambient
// bookkeeping for a demo verifier, not a core protocol component.
package auditlog

import (
	"encoding/hex"
	"encoding/json"
	"os"
	"sync"

	"groupsig/internal/groupsig"
)

// Entry is one observed (basename, pseudonym) pairing, recorded at
// verify time.
type Entry struct {
	BasenameHash string `json:"basenameHash"`
	NYM          string `json:"nym"`
}

// Log is an append-only, basename-scoped record of pseudonym sightings.
// It is safe for concurrent use.
type Log struct {
	mu      sync.Mutex
	entries []Entry
}

// New returns a new, empty log.
func New() *Log {
	return &Log{entries: make([]Entry, 0)}
}

// Record appends a sighting of nym under basename bsn. It does not
// itself verify the signature the pseudonym came from — callers must
// call groupsig.Verify first.
func (l *Log) Record(bsn []byte, nym *groupsig.G1) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, Entry{
		BasenameHash: hashHex(bsn),
		NYM:          encodeG1Hex(nym),
	})
}

// SeenWithDifferentBasename reports whether nym has been recorded under
// any basename other than bsn — the observable signal that two
// signatures came from different pseudonym scopes, not necessarily
// different signers.
func (l *Log) SeenWithDifferentBasename(nym *groupsig.G1, bsn []byte) bool {
	target := encodeG1Hex(nym)
	want := hashHex(bsn)
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.NYM == target && e.BasenameHash != want {
			return true
		}
	}
	return false
}

// Entries returns a copy of every recorded sighting.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// SaveToFile persists the log as indented JSON, overwriting path if it
// already exists.
func (l *Log) SaveToFile(path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(l.entries)
}

// LoadFromFile loads a previously persisted log.
func LoadFromFile(path string) (*Log, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var entries []Entry
	if err := json.NewDecoder(f).Decode(&entries); err != nil {
		return nil, err
	}
	return &Log{entries: entries}, nil
}

func hashHex(bsn []byte) string {
	return hex.EncodeToString(groupsig.HashBasename(bsn))
}

func encodeG1Hex(p *groupsig.G1) string {
	buf := make([]byte, groupsig.G1Size)
	_, _ = groupsig.EncodeG1Point(buf, p)
	return hex.EncodeToString(buf)
}
