package inbox

import (
	"sort"
	"strings"

	"github.com/tejzpr/audience-inbox/internal/errs"
)

// Filter narrows a listing. Zero-valued fields match everything.
type Filter struct {
	Search   string
	Priority Priority
	Status   Status
	Channel  Channel
	Tag      Tag
}

// Validate rejects enum fields set to values outside their enumeration.
func (f Filter) Validate() error {
	if f.Priority != "" && !f.Priority.Valid() {
		return errs.Wrapf(ErrInvalidInput, "unknown priority %q", f.Priority)
	}
	if f.Status != "" && !f.Status.Valid() {
		return errs.Wrapf(ErrInvalidInput, "unknown status %q", f.Status)
	}
	if f.Channel != "" && !f.Channel.Valid() {
		return errs.Wrapf(ErrInvalidInput, "unknown channel %q", f.Channel)
	}
	if f.Tag != "" && !f.Tag.Valid() {
		return errs.Wrapf(ErrInvalidInput, "unknown tag %q", f.Tag)
	}
	return nil
}

// Match reports whether q passes every set field of f.
func (f Filter) Match(q Query) bool {
	if s := strings.ToLower(strings.TrimSpace(f.Search)); s != "" {
		if !strings.Contains(strings.ToLower(q.Content), s) &&
			!strings.Contains(strings.ToLower(q.Sender), s) &&
			!strings.Contains(strings.ToLower(q.SenderHandle), s) {
			return false
		}
	}
	if f.Priority != "" && q.Priority != f.Priority {
		return false
	}
	if f.Status != "" && q.Status != f.Status {
		return false
	}
	if f.Channel != "" && q.Channel != f.Channel {
		return false
	}
	if f.Tag != "" && !HasTag(q.Tags, f.Tag) {
		return false
	}
	return true
}

// Apply returns the queries matching f in triage order. The input is not modified.
func (f Filter) Apply(queries []Query) []Query {
	out := make([]Query, 0, len(queries))
	for _, q := range queries {
		if f.Match(q) {
			out = append(out, q)
		}
	}
	SortForTriage(out)
	return out
}

// SortForTriage orders most pressing first, newest first within a priority.
func SortForTriage(queries []Query) {
	sort.SliceStable(queries, func(i, j int) bool {
		ri, rj := queries[i].Priority.Rank(), queries[j].Priority.Rank()
		if ri != rj {
			return ri < rj
		}
		return queries[i].ReceivedAt.After(queries[j].ReceivedAt)
	})
}
