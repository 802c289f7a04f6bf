package manager

import (
	"context"
	"log/slog"
	"strings"

	"github.com/tejzpr/audience-inbox/internal/analytics"
	"github.com/tejzpr/audience-inbox/internal/classifier"
	"github.com/tejzpr/audience-inbox/internal/errs"
	"github.com/tejzpr/audience-inbox/internal/inbox"
	"github.com/tejzpr/audience-inbox/internal/logging"
)

// Store is the persistence the manager works against.
type Store interface {
	List(ctx context.Context) ([]inbox.Query, error)
	Get(ctx context.Context, id string) (inbox.Query, error)
	Insert(ctx context.Context, q inbox.Query) (inbox.Query, error)
	Update(ctx context.Context, id string, patch inbox.QueryPatch) (inbox.Query, error)
	Delete(ctx context.Context, id string) error
	ListTeamMembers(ctx context.Context) ([]inbox.TeamMember, error)
	GetTeamMember(ctx context.Context, id string) (inbox.TeamMember, error)
}

// Publisher receives query lifecycle events.
type Publisher interface {
	Publish(evt Event)
}

type QueryManager struct {
	store   Store
	events  Publisher
	autoTag bool
}

// NewQueryManager wires a manager. autoTag is the default for CreateInput.AutoClassify
// when the caller leaves it unset. events may be nil.
func NewQueryManager(store Store, events Publisher, autoTag bool) *QueryManager {
	return &QueryManager{store: store, events: events, autoTag: autoTag}
}

type CreateInput struct {
	Content      string         `json:"content"`
	Sender       string         `json:"sender"`
	SenderHandle string         `json:"senderHandle,omitempty"`
	Channel      inbox.Channel  `json:"channel"`
	Tags         []inbox.Tag    `json:"tags,omitempty"`
	Priority     inbox.Priority `json:"priority,omitempty"`
	// AutoClassify replaces Tags and Priority with the classifier's output.
	AutoClassify *bool `json:"autoClassify,omitempty"`
}

// Create validates in and stores a new query with status new. Missing tags or
// priority are filled in by the classifier so every query carries a tag.
func (m *QueryManager) Create(ctx context.Context, in CreateInput) (inbox.Query, error) {
	if strings.TrimSpace(in.Content) == "" {
		return inbox.Query{}, errs.Wrap(inbox.ErrInvalidInput, "content is required")
	}
	if strings.TrimSpace(in.Sender) == "" {
		return inbox.Query{}, errs.Wrap(inbox.ErrInvalidInput, "sender is required")
	}
	if !in.Channel.Valid() {
		return inbox.Query{}, errs.Wrapf(inbox.ErrInvalidInput, "unknown channel %q", in.Channel)
	}
	if len(in.Tags) > 0 {
		if err := inbox.ValidateTags(in.Tags); err != nil {
			return inbox.Query{}, err
		}
	}
	if in.Priority != "" && !in.Priority.Valid() {
		return inbox.Query{}, errs.Wrapf(inbox.ErrInvalidInput, "unknown priority %q", in.Priority)
	}

	auto := m.autoTag
	if in.AutoClassify != nil {
		auto = *in.AutoClassify
	}

	q := inbox.Query{
		Content:      in.Content,
		Sender:       strings.TrimSpace(in.Sender),
		SenderHandle: strings.TrimSpace(in.SenderHandle),
		Channel:      in.Channel,
		Tags:         inbox.DedupeTags(in.Tags),
		Priority:     in.Priority,
		Status:       inbox.StatusNew,
	}
	if auto || len(q.Tags) == 0 || q.Priority == "" {
		result := classifier.Classify(in.Content)
		if auto || len(q.Tags) == 0 {
			q.Tags = result.Tags
		}
		if auto || q.Priority == "" {
			q.Priority = result.Priority
		}
	}

	created, err := m.store.Insert(ctx, q)
	if err != nil {
		return inbox.Query{}, err
	}
	logging.Info(m.logCtx(ctx), "query created",
		slog.String("id", created.ID),
		slog.String("channel", string(created.Channel)),
		slog.String("priority", string(created.Priority)),
	)
	m.publish(EventCreated, created)
	return created, nil
}

func (m *QueryManager) Get(ctx context.Context, id string) (inbox.Query, error) {
	return m.store.Get(ctx, id)
}

// List returns the queries matching f, most pressing first.
func (m *QueryManager) List(ctx context.Context, f inbox.Filter) ([]inbox.Query, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	all, err := m.store.List(ctx)
	if err != nil {
		return nil, err
	}
	return f.Apply(all), nil
}

func (m *QueryManager) Update(ctx context.Context, id string, patch inbox.QueryPatch) (inbox.Query, error) {
	if err := patch.Validate(); err != nil {
		return inbox.Query{}, err
	}
	if patch.AssignedTo != nil && *patch.AssignedTo != "" {
		if _, err := m.store.GetTeamMember(ctx, *patch.AssignedTo); err != nil {
			return inbox.Query{}, err
		}
	}
	updated, err := m.store.Update(ctx, id, patch)
	if err != nil {
		return inbox.Query{}, err
	}
	logging.Info(m.logCtx(ctx), "query updated", slog.String("id", id), slog.String("status", string(updated.Status)))
	m.publish(EventUpdated, updated)
	return updated, nil
}

// Assign hands the query to a team member and moves it to assigned.
func (m *QueryManager) Assign(ctx context.Context, id, memberID string) (inbox.Query, error) {
	memberID = strings.TrimSpace(memberID)
	if memberID == "" {
		return inbox.Query{}, errs.Wrap(inbox.ErrInvalidInput, "teamMemberId is required")
	}
	status := inbox.StatusAssigned
	return m.Update(ctx, id, inbox.QueryPatch{AssignedTo: &memberID, Status: &status})
}

// AddNote appends a timestamped note entry.
func (m *QueryManager) AddNote(ctx context.Context, id, note string) (inbox.Query, error) {
	if strings.TrimSpace(note) == "" {
		return inbox.Query{}, errs.Wrap(inbox.ErrInvalidInput, "note cannot be empty")
	}
	return m.Update(ctx, id, inbox.QueryPatch{AppendNote: note})
}

func (m *QueryManager) Delete(ctx context.Context, id string) error {
	if err := m.store.Delete(ctx, id); err != nil {
		return err
	}
	logging.Info(m.logCtx(ctx), "query deleted", slog.String("id", id))
	m.publish(EventDeleted, inbox.Query{ID: id})
	return nil
}

// Analytics summarises the current contents of the store.
func (m *QueryManager) Analytics(ctx context.Context) (inbox.Analytics, error) {
	all, err := m.store.List(ctx)
	if err != nil {
		return inbox.Analytics{}, err
	}
	return analytics.Compute(all), nil
}

func (m *QueryManager) Team(ctx context.Context) ([]inbox.TeamMember, error) {
	return m.store.ListTeamMembers(ctx)
}

func (m *QueryManager) publish(kind string, q inbox.Query) {
	if m.events == nil {
		return
	}
	m.events.Publish(Event{Type: kind, Query: q})
}

func (m *QueryManager) logCtx(ctx context.Context) context.Context {
	return logging.WithAttrs(ctx, slog.String("component", "manager"))
}
