// Package inbox holds the audience-query domain types shared by the
// classifier, the aggregator and the store.
package inbox

import "time"

type Channel string

const (
	ChannelEmail     Channel = "email"
	ChannelTwitter   Channel = "twitter"
	ChannelInstagram Channel = "instagram"
	ChannelFacebook  Channel = "facebook"
	ChannelChat      Channel = "chat"
	ChannelCommunity Channel = "community"
)

// AllChannels lists every channel in declaration order.
var AllChannels = []Channel{
	ChannelEmail, ChannelTwitter, ChannelInstagram,
	ChannelFacebook, ChannelChat, ChannelCommunity,
}

func (c Channel) Valid() bool {
	for _, v := range AllChannels {
		if c == v {
			return true
		}
	}
	return false
}

type Tag string

const (
	TagQuestion  Tag = "question"
	TagRequest   Tag = "request"
	TagComplaint Tag = "complaint"
	TagFeedback  Tag = "feedback"
	TagBug       Tag = "bug"
	TagInquiry   Tag = "inquiry"
)

// AllTags lists every tag in declaration order.
var AllTags = []Tag{
	TagQuestion, TagRequest, TagComplaint,
	TagFeedback, TagBug, TagInquiry,
}

func (t Tag) Valid() bool {
	for _, v := range AllTags {
		if t == v {
			return true
		}
	}
	return false
}

// HasTag reports whether tags contains want.
func HasTag(tags []Tag, want Tag) bool {
	for _, t := range tags {
		if t == want {
			return true
		}
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// AllPriorities lists every priority from least to most pressing.
var AllPriorities = []Priority{
	PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent,
}

func (p Priority) Valid() bool {
	for _, v := range AllPriorities {
		if p == v {
			return true
		}
	}
	return false
}

// Rank orders priorities for triage: urgent is 0, low is 3.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	}
	return len(AllPriorities)
}

type Status string

const (
	StatusNew        Status = "new"
	StatusAssigned   Status = "assigned"
	StatusInProgress Status = "in-progress"
	StatusResolved   Status = "resolved"
	StatusClosed     Status = "closed"
)

// AllStatuses lists the lifecycle stages in order.
var AllStatuses = []Status{
	StatusNew, StatusAssigned, StatusInProgress, StatusResolved, StatusClosed,
}

func (s Status) Valid() bool {
	for _, v := range AllStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Done reports whether the query counts as resolved.
func (s Status) Done() bool {
	return s == StatusResolved || s == StatusClosed
}

// Query is a single inbound audience message and its triage state.
type Query struct {
	ID           string     `json:"id"`
	Content      string     `json:"content"`
	Sender       string     `json:"sender"`
	SenderHandle string     `json:"senderHandle,omitempty"`
	Channel      Channel    `json:"channel"`
	ReceivedAt   time.Time  `json:"receivedAt"`
	Tags         []Tag      `json:"tags"`
	Priority     Priority   `json:"priority"`
	Status       Status     `json:"status"`
	AssignedTo   string     `json:"assignedTo,omitempty"`
	ResponseTime *int       `json:"responseTime,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	LastUpdate   *time.Time `json:"lastUpdate,omitempty"`
}

// QueryPatch carries a partial update. Nil fields are left untouched.
// Content and ReceivedAt are immutable and have no patch field.
type QueryPatch struct {
	Sender       *string   `json:"sender,omitempty"`
	SenderHandle *string   `json:"senderHandle,omitempty"`
	Channel      *Channel  `json:"channel,omitempty"`
	Tags         *[]Tag    `json:"tags,omitempty"`
	Priority     *Priority `json:"priority,omitempty"`
	Status       *Status   `json:"status,omitempty"`
	AssignedTo   *string   `json:"assignedTo,omitempty"`
	// AppendNote adds one timestamped entry to Notes.
	AppendNote string `json:"-"`
}

type TeamMember struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Analytics is derived from a snapshot of queries and never stored.
type Analytics struct {
	TotalQueries        int              `json:"totalQueries"`
	AverageResponseTime int              `json:"averageResponseTime"`
	QueriesByPriority   map[Priority]int `json:"queriesByPriority"`
	QueriesByTag        map[Tag]int      `json:"queriesByTag"`
	QueriesByChannel    map[Channel]int  `json:"queriesByChannel"`
	ResolutionRate      int              `json:"resolutionRate"`
}
