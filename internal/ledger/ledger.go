package ledger

import (
	"errors"
	"sort"
	"strings"
)

var ErrUserNotFound = errors.New("user not found")

// UserRecord is the per-user point entry.
type UserRecord struct {
	UserID string `json:"-"`
	Name   string `json:"username"`
	Points int    `json:"points"`
}

// Ledger maps user ids to records and remembers insertion order, which is
// the order the document keys were read in after a load.
type Ledger struct {
	order   []string
	records map[string]*UserRecord
}

// Standing is one leaderboard row.
type Standing struct {
	Rank   int
	Record UserRecord
}

func New() *Ledger {
	return &Ledger{records: make(map[string]*UserRecord)}
}

func (l *Ledger) Len() int {
	return len(l.order)
}

func (l *Ledger) Get(userID string) (*UserRecord, bool) {
	r, ok := l.records[userID]
	return r, ok
}

// Records returns the records in ledger order.
func (l *Ledger) Records() []*UserRecord {
	out := make([]*UserRecord, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.records[id])
	}
	return out
}

// GetOrCreate returns the record for userID with its name refreshed,
// creating a zero-point record when the user is unknown.
func (l *Ledger) GetOrCreate(userID, name string) *UserRecord {
	if r, ok := l.records[userID]; ok {
		r.Name = name
		return r
	}
	r := &UserRecord{UserID: userID, Name: name}
	l.insert(r)
	return r
}

// AddPoints adds amount (possibly negative) to an existing record.
func (l *Ledger) AddPoints(userID string, amount int) (*UserRecord, error) {
	r, ok := l.records[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	r.Points += amount
	return r, nil
}

// FindByName matches display names case-insensitively. A leading "@" on
// the query is ignored.
func (l *Ledger) FindByName(name string) (*UserRecord, error) {
	name = strings.TrimPrefix(strings.TrimSpace(name), "@")
	if name == "" {
		return nil, ErrUserNotFound
	}
	for _, id := range l.order {
		r := l.records[id]
		if strings.EqualFold(r.Name, name) {
			return r, nil
		}
	}
	return nil, ErrUserNotFound
}

// Top ranks records by points, highest first. Equal scores keep ledger
// order. At most n standings are returned; n <= 0 means all.
func (l *Ledger) Top(n int) []Standing {
	recs := l.Records()
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Points > recs[j].Points
	})
	if n > 0 && n < len(recs) {
		recs = recs[:n]
	}
	out := make([]Standing, len(recs))
	for i, r := range recs {
		out[i] = Standing{Rank: i + 1, Record: *r}
	}
	return out
}

func (l *Ledger) insert(r *UserRecord) {
	if l.records == nil {
		l.records = make(map[string]*UserRecord)
	}
	if _, ok := l.records[r.UserID]; !ok {
		l.order = append(l.order, r.UserID)
	}
	l.records[r.UserID] = r
}
