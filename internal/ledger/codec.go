package ledger

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// CorruptDataError reports a persisted ledger document that could not be
// parsed. Callers must not treat it as an empty ledger.
type CorruptDataError struct {
	Source string
	Err    error
}

func (e *CorruptDataError) Error() string {
	return fmt.Sprintf("corrupt ledger data in %s: %v", e.Source, e.Err)
}

func (e *CorruptDataError) Unwrap() error { return e.Err }

// Decode parses a persisted document. Blank input is an empty ledger.
func Decode(source string, data []byte) (*Ledger, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return New(), nil
	}
	l := New()
	if err := json.Unmarshal(data, l); err != nil {
		return nil, &CorruptDataError{Source: source, Err: err}
	}
	return l, nil
}

// Encode serializes the ledger in its canonical form.
func Encode(l *Ledger) ([]byte, error) {
	return json.Marshal(l)
}

// MarshalJSON writes {user_id: {"username": ..., "points": ...}} in ledger
// order.
func (l *Ledger) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range l.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(id)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(l.records[id])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// storedRecord accepts both "name" and "username" spellings.
type storedRecord struct {
	Name     *string `json:"name"`
	Username *string `json:"username"`
	Points   *int    `json:"points"`
}

// UnmarshalJSON reads the canonical form and the legacy {user_id: points}
// form, keeping document key order.
func (l *Ledger) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected object, got %v", tok)
	}
	fresh := New()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		id, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected user id key, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("user %s: %w", id, err)
		}
		rec, err := decodeRecord(id, raw)
		if err != nil {
			return err
		}
		fresh.insert(rec)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("unexpected data after ledger object")
	}
	*l = *fresh
	return nil
}

func decodeRecord(id string, raw json.RawMessage) (*UserRecord, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '{' {
		var sr storedRecord
		if err := json.Unmarshal(raw, &sr); err != nil {
			return nil, fmt.Errorf("user %s: %w", id, err)
		}
		if sr.Points == nil {
			return nil, fmt.Errorf("user %s: missing points", id)
		}
		rec := &UserRecord{UserID: id, Points: *sr.Points}
		switch {
		case sr.Username != nil:
			rec.Name = *sr.Username
		case sr.Name != nil:
			rec.Name = *sr.Name
		}
		return rec, nil
	}
	if len(raw) == 0 || !(raw[0] == '-' || raw[0] >= '0' && raw[0] <= '9') {
		return nil, fmt.Errorf("user %s: expected record object or points, got %s", id, raw)
	}
	var points int
	if err := json.Unmarshal(raw, &points); err != nil {
		return nil, fmt.Errorf("user %s: %w", id, err)
	}
	return &UserRecord{UserID: id, Points: points}, nil
}
