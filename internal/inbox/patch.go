package inbox

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/tejzpr/audience-inbox/internal/errs"
)

// NoteTimeLayout stamps each appended note entry.
const NoteTimeLayout = "15:04:05"

// Validate reports ErrInvalidInput for values a stored query may not hold.
func (p QueryPatch) Validate() error {
	if p.Sender != nil && strings.TrimSpace(*p.Sender) == "" {
		return errs.Wrap(ErrInvalidInput, "sender cannot be empty")
	}
	if p.Channel != nil && !p.Channel.Valid() {
		return errs.Wrapf(ErrInvalidInput, "unknown channel %q", *p.Channel)
	}
	if p.Tags != nil {
		if err := ValidateTags(*p.Tags); err != nil {
			return err
		}
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return errs.Wrapf(ErrInvalidInput, "unknown priority %q", *p.Priority)
	}
	if p.Status != nil && !p.Status.Valid() {
		return errs.Wrapf(ErrInvalidInput, "unknown status %q", *p.Status)
	}
	return nil
}

// Apply merges p into q and stamps LastUpdate with now. The first move into
// a done status records ResponseTime as whole minutes since ReceivedAt.
func (p QueryPatch) Apply(q *Query, now time.Time) {
	if p.Sender != nil {
		q.Sender = strings.TrimSpace(*p.Sender)
	}
	if p.SenderHandle != nil {
		q.SenderHandle = strings.TrimSpace(*p.SenderHandle)
	}
	if p.Channel != nil {
		q.Channel = *p.Channel
	}
	if p.Tags != nil {
		q.Tags = DedupeTags(*p.Tags)
	}
	if p.Priority != nil {
		q.Priority = *p.Priority
	}
	if p.AssignedTo != nil {
		q.AssignedTo = *p.AssignedTo
	}
	if p.Status != nil {
		q.Status = *p.Status
		if q.Status.Done() && q.ResponseTime == nil {
			q.ResponseTime = ResponseMinutes(q.ReceivedAt, now)
		}
	}
	if note := strings.TrimSpace(p.AppendNote); note != "" {
		entry := fmt.Sprintf("[%s] %s", now.Format(NoteTimeLayout), note)
		if q.Notes == "" {
			q.Notes = entry
		} else {
			q.Notes = q.Notes + "\n\n" + entry
		}
	}
	stamp := now
	q.LastUpdate = &stamp
}

// ResponseMinutes rounds the time between received and resolved to minutes.
func ResponseMinutes(received, resolved time.Time) *int {
	m := int(math.Round(resolved.Sub(received).Minutes()))
	if m < 0 {
		m = 0
	}
	return &m
}

// ValidateTags requires at least one tag, each from the known set.
func ValidateTags(tags []Tag) error {
	if len(tags) == 0 {
		return errs.Wrap(ErrInvalidInput, "at least one tag is required")
	}
	for _, t := range tags {
		if !t.Valid() {
			return errs.Wrapf(ErrInvalidInput, "unknown tag %q", t)
		}
	}
	return nil
}

// DedupeTags drops repeats, keeping first occurrence order.
func DedupeTags(tags []Tag) []Tag {
	out := make([]Tag, 0, len(tags))
	for _, t := range tags {
		if !HasTag(out, t) {
			out = append(out, t)
		}
	}
	return out
}
