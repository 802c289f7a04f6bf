package manager

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/tejzpr/audience-inbox/internal/db"
	"github.com/tejzpr/audience-inbox/internal/inbox"
)

func setupTestStore(t *testing.T) *db.Store {
	t.Helper()
	d, err := db.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := d.DB(); err == nil {
			sqlDB.Close()
		}
	})
	s := db.NewStore(d)
	if err := s.UpsertTeamMember(context.Background(), inbox.TeamMember{ID: "tm-1", Name: "Ava", Email: "ava@example.com", Role: "support"}); err != nil {
		t.Fatalf("failed to seed team: %v", err)
	}
	return s
}

type recorder struct{ events []Event }

func (r *recorder) Publish(evt Event) { r.events = append(r.events, evt) }

func boolPtr(b bool) *bool { return &b }

func TestCreateAutoClassifies(t *testing.T) {
	rec := &recorder{}
	m := NewQueryManager(setupTestStore(t), rec, true)

	q, err := m.Create(context.Background(), CreateInput{
		Content: "the app keeps crashing, please help",
		Sender:  "Ben",
		Channel: inbox.ChannelEmail,
		Tags:    []inbox.Tag{inbox.TagFeedback},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if q.ID == "" {
		t.Fatal("expected non-empty ID")
	}
	if q.Status != inbox.StatusNew {
		t.Errorf("expected status 'new', got %q", q.Status)
	}
	if !reflect.DeepEqual(q.Tags, []inbox.Tag{inbox.TagRequest, inbox.TagBug}) {
		t.Errorf("expected classifier tags, got %v", q.Tags)
	}
	if q.Priority != inbox.PriorityUrgent {
		t.Errorf("expected urgent, got %q", q.Priority)
	}
	if len(rec.events) != 1 || rec.events[0].Type != EventCreated {
		t.Errorf("expected one created event, got %+v", rec.events)
	}
}

func TestCreateKeepsCallerTagsWhenAutoOff(t *testing.T) {
	m := NewQueryManager(setupTestStore(t), nil, true)

	q, err := m.Create(context.Background(), CreateInput{
		Content:      "the app keeps crashing",
		Sender:       "Ben",
		Channel:      inbox.ChannelChat,
		Tags:         []inbox.Tag{inbox.TagFeedback},
		Priority:     inbox.PriorityLow,
		AutoClassify: boolPtr(false),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !reflect.DeepEqual(q.Tags, []inbox.Tag{inbox.TagFeedback}) || q.Priority != inbox.PriorityLow {
		t.Errorf("caller classification overwritten: %v %q", q.Tags, q.Priority)
	}
}

func TestCreateDropsRepeatedTags(t *testing.T) {
	m := NewQueryManager(setupTestStore(t), nil, true)
	ctx := context.Background()

	q, err := m.Create(ctx, CreateInput{
		Content:      "checkout fails",
		Sender:       "Ben",
		Channel:      inbox.ChannelEmail,
		Tags:         []inbox.Tag{inbox.TagBug, inbox.TagBug, inbox.TagQuestion},
		Priority:     inbox.PriorityHigh,
		AutoClassify: boolPtr(false),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !reflect.DeepEqual(q.Tags, []inbox.Tag{inbox.TagBug, inbox.TagQuestion}) {
		t.Errorf("expected repeats dropped, got %v", q.Tags)
	}

	a, err := m.Analytics(ctx)
	if err != nil {
		t.Fatalf("Analytics failed: %v", err)
	}
	if a.TotalQueries != 1 || a.QueriesByTag[inbox.TagBug] != 1 {
		t.Errorf("expected bug counted once, got total=%d bug=%d", a.TotalQueries, a.QueriesByTag[inbox.TagBug])
	}
}

func TestCreateStoresContentAsReceived(t *testing.T) {
	m := NewQueryManager(setupTestStore(t), nil, true)
	ctx := context.Background()

	content := "  hello team\n"
	q, err := m.Create(ctx, CreateInput{Content: content, Sender: "Dev", Channel: inbox.ChannelChat})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	stored, err := m.Get(ctx, q.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if stored.Content != content {
		t.Errorf("expected content %q, got %q", content, stored.Content)
	}
}

func TestCreateFillsMissingTags(t *testing.T) {
	m := NewQueryManager(setupTestStore(t), nil, false)

	q, err := m.Create(context.Background(), CreateInput{
		Content:  "hello team",
		Sender:   "Cleo",
		Channel:  inbox.ChannelCommunity,
		Priority: inbox.PriorityHigh,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !reflect.DeepEqual(q.Tags, []inbox.Tag{inbox.TagInquiry}) {
		t.Errorf("expected fallback inquiry tag, got %v", q.Tags)
	}
	if q.Priority != inbox.PriorityHigh {
		t.Errorf("expected caller priority kept, got %q", q.Priority)
	}
}

func TestCreateValidation(t *testing.T) {
	m := NewQueryManager(setupTestStore(t), nil, true)
	cases := []struct {
		name string
		in   CreateInput
	}{
		{"blank content", CreateInput{Content: "  ", Sender: "a", Channel: inbox.ChannelEmail}},
		{"blank sender", CreateInput{Content: "hi", Channel: inbox.ChannelEmail}},
		{"unknown channel", CreateInput{Content: "hi", Sender: "a", Channel: "fax"}},
		{"unknown tag", CreateInput{Content: "hi", Sender: "a", Channel: inbox.ChannelEmail, Tags: []inbox.Tag{"praise"}}},
		{"unknown priority", CreateInput{Content: "hi", Sender: "a", Channel: inbox.ChannelEmail, Priority: "p0"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := m.Create(context.Background(), tc.in); !errors.Is(err, inbox.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestAssign(t *testing.T) {
	rec := &recorder{}
	m := NewQueryManager(setupTestStore(t), rec, true)
	ctx := context.Background()
	q, _ := m.Create(ctx, CreateInput{Content: "need a refund", Sender: "Dev", Channel: inbox.ChannelEmail})

	assigned, err := m.Assign(ctx, q.ID, "tm-1")
	if err != nil {
		t.Fatalf("Assign failed: %v", err)
	}
	if assigned.AssignedTo != "tm-1" || assigned.Status != inbox.StatusAssigned {
		t.Errorf("expected assigned to tm-1, got %q/%q", assigned.AssignedTo, assigned.Status)
	}
	if assigned.LastUpdate == nil {
		t.Error("expected lastUpdate to be set")
	}
	if rec.events[len(rec.events)-1].Type != EventUpdated {
		t.Errorf("expected updated event, got %+v", rec.events)
	}
}

func TestAssignUnknownMember(t *testing.T) {
	m := NewQueryManager(setupTestStore(t), nil, true)
	ctx := context.Background()
	q, _ := m.Create(ctx, CreateInput{Content: "hi", Sender: "Dev", Channel: inbox.ChannelEmail})

	if _, err := m.Assign(ctx, q.ID, "tm-404"); !errors.Is(err, inbox.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := m.Assign(ctx, q.ID, " "); !errors.Is(err, inbox.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAddNote(t *testing.T) {
	m := NewQueryManager(setupTestStore(t), nil, true)
	ctx := context.Background()
	q, _ := m.Create(ctx, CreateInput{Content: "hi", Sender: "Dev", Channel: inbox.ChannelEmail})

	if _, err := m.AddNote(ctx, q.ID, ""); !errors.Is(err, inbox.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for blank note, got %v", err)
	}
	updated, err := m.AddNote(ctx, q.ID, "first")
	if err != nil {
		t.Fatalf("AddNote failed: %v", err)
	}
	updated, _ = m.AddNote(ctx, q.ID, "second")
	if updated.Notes == "" {
		t.Fatal("expected notes")
	}
	if _, err := m.AddNote(ctx, "missing", "x"); !errors.Is(err, inbox.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestResolveRecordsResponseTimeAndAnalytics(t *testing.T) {
	m := NewQueryManager(setupTestStore(t), nil, true)
	ctx := context.Background()

	a, _ := m.Create(ctx, CreateInput{Content: "app crashed", Sender: "A", Channel: inbox.ChannelEmail})
	b, _ := m.Create(ctx, CreateInput{Content: "love it", Sender: "B", Channel: inbox.ChannelTwitter})
	m.Create(ctx, CreateInput{Content: "please add export", Sender: "C", Channel: inbox.ChannelChat})

	resolved := inbox.StatusResolved
	closed := inbox.StatusClosed
	ra, err := m.Update(ctx, a.ID, inbox.QueryPatch{Status: &resolved})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if ra.ResponseTime == nil {
		t.Error("expected response time after resolving")
	}
	m.Update(ctx, b.ID, inbox.QueryPatch{Status: &closed})

	got, err := m.Analytics(ctx)
	if err != nil {
		t.Fatalf("Analytics failed: %v", err)
	}
	if got.TotalQueries != 3 {
		t.Errorf("expected 3 queries, got %d", got.TotalQueries)
	}
	if got.ResolutionRate != 67 {
		t.Errorf("expected resolution rate 67, got %d", got.ResolutionRate)
	}
	if got.QueriesByChannel[inbox.ChannelFacebook] != 0 || len(got.QueriesByChannel) != 6 {
		t.Errorf("expected total channel map, got %v", got.QueriesByChannel)
	}
}

func TestUpdateRejectsInvalidPatch(t *testing.T) {
	m := NewQueryManager(setupTestStore(t), nil, true)
	ctx := context.Background()
	q, _ := m.Create(ctx, CreateInput{Content: "hi", Sender: "Dev", Channel: inbox.ChannelEmail})

	bad := inbox.Status("open")
	if _, err := m.Update(ctx, q.ID, inbox.QueryPatch{Status: &bad}); !errors.Is(err, inbox.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestListFiltersAndSorts(t *testing.T) {
	m := NewQueryManager(setupTestStore(t), nil, true)
	ctx := context.Background()
	m.Create(ctx, CreateInput{Content: "thanks, great work", Sender: "A", Channel: inbox.ChannelTwitter})
	m.Create(ctx, CreateInput{Content: "checkout is broken", Sender: "B", Channel: inbox.ChannelEmail})
	m.Create(ctx, CreateInput{Content: "please add dark mode", Sender: "C", Channel: inbox.ChannelEmail})

	all, err := m.List(ctx, inbox.Filter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 3 || all[0].Priority != inbox.PriorityUrgent || all[2].Priority != inbox.PriorityLow {
		t.Errorf("expected urgent first and low last, got %+v", all)
	}

	email, _ := m.List(ctx, inbox.Filter{Channel: inbox.ChannelEmail})
	if len(email) != 2 {
		t.Errorf("expected 2 email queries, got %d", len(email))
	}
}

func TestDelete(t *testing.T) {
	rec := &recorder{}
	m := NewQueryManager(setupTestStore(t), rec, true)
	ctx := context.Background()
	q, _ := m.Create(ctx, CreateInput{Content: "hi", Sender: "Dev", Channel: inbox.ChannelEmail})

	if err := m.Delete(ctx, q.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := m.Delete(ctx, q.ID); !errors.Is(err, inbox.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	last := rec.events[len(rec.events)-1]
	if last.Type != EventDeleted || last.Query.ID != q.ID {
		t.Errorf("expected deleted event for %s, got %+v", q.ID, last)
	}
}

func TestTeam(t *testing.T) {
	m := NewQueryManager(setupTestStore(t), nil, true)
	team, err := m.Team(context.Background())
	if err != nil {
		t.Fatalf("Team failed: %v", err)
	}
	if len(team) != 1 || team[0].ID != "tm-1" {
		t.Errorf("expected seeded member, got %+v", team)
	}
}
