package inbox

import (
	"errors"
	"testing"
	"time"
)

func sampleQueries() []Query {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return []Query{
		{ID: "a", Content: "Love the new release", Sender: "Ana", Channel: ChannelTwitter, Tags: []Tag{TagFeedback}, Priority: PriorityLow, Status: StatusNew, ReceivedAt: base},
		{ID: "b", Content: "App crashes on login", Sender: "Ben", SenderHandle: "@benny", Channel: ChannelEmail, Tags: []Tag{TagBug}, Priority: PriorityUrgent, Status: StatusAssigned, ReceivedAt: base.Add(time.Hour)},
		{ID: "c", Content: "Please add dark mode", Sender: "Cleo", Channel: ChannelCommunity, Tags: []Tag{TagRequest}, Priority: PriorityMedium, Status: StatusNew, ReceivedAt: base.Add(2 * time.Hour)},
		{ID: "d", Content: "Checkout is broken", Sender: "Dev", Channel: ChannelChat, Tags: []Tag{TagComplaint, TagBug}, Priority: PriorityUrgent, Status: StatusResolved, ReceivedAt: base.Add(3 * time.Hour)},
	}
}

func ids(qs []Query) []string {
	out := make([]string, len(qs))
	for i, q := range qs {
		out[i] = q.ID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestFilterApply(t *testing.T) {
	cases := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"empty filter sorts urgent then newest", Filter{}, []string{"d", "b", "c", "a"}},
		{"search content", Filter{Search: "DARK"}, []string{"c"}},
		{"search handle", Filter{Search: "benny"}, []string{"b"}},
		{"priority", Filter{Priority: PriorityUrgent}, []string{"d", "b"}},
		{"status", Filter{Status: StatusNew}, []string{"c", "a"}},
		{"channel", Filter{Channel: ChannelTwitter}, []string{"a"}},
		{"tag membership", Filter{Tag: TagBug}, []string{"d", "b"}},
		{"combined", Filter{Tag: TagBug, Status: StatusResolved}, []string{"d"}},
		{"no match", Filter{Search: "refund"}, []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ids(tc.filter.Apply(sampleQueries()))
			if !equalIDs(got, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestFilterApplyLeavesInputOrder(t *testing.T) {
	in := sampleQueries()
	Filter{}.Apply(in)
	if got := ids(in); !equalIDs(got, []string{"a", "b", "c", "d"}) {
		t.Errorf("input reordered: %v", got)
	}
}

func TestEnumValidity(t *testing.T) {
	if !Channel("email").Valid() || Channel("fax").Valid() {
		t.Error("channel validity wrong")
	}
	if !Tag("bug").Valid() || Tag("praise").Valid() {
		t.Error("tag validity wrong")
	}
	if !Priority("urgent").Valid() || Priority("p0").Valid() {
		t.Error("priority validity wrong")
	}
	if !Status("in-progress").Valid() || Status("open").Valid() {
		t.Error("status validity wrong")
	}
	if !StatusClosed.Done() || !StatusResolved.Done() || StatusInProgress.Done() {
		t.Error("done statuses wrong")
	}
}

func TestFilterValidate(t *testing.T) {
	if err := (Filter{}).Validate(); err != nil {
		t.Errorf("empty filter: unexpected error %v", err)
	}
	if err := (Filter{Priority: PriorityHigh, Status: StatusNew, Channel: ChannelChat, Tag: TagBug}).Validate(); err != nil {
		t.Errorf("valid filter: unexpected error %v", err)
	}
	for _, f := range []Filter{
		{Priority: "p0"},
		{Status: "open"},
		{Channel: "fax"},
		{Tag: "praise"},
	} {
		if err := f.Validate(); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("%+v: expected ErrInvalidInput, got %v", f, err)
		}
	}
}
