package db

import (
	"time"

	"github.com/tejzpr/audience-inbox/internal/inbox"
)

type QueryRecord struct {
	ID           string      `gorm:"primaryKey"`
	Content      string      `gorm:"type:text;not null"`
	Sender       string      `gorm:"not null"`
	SenderHandle string      `gorm:"not null;default:''"`
	Channel      string      `gorm:"index;not null"`
	ReceivedAt   time.Time   `gorm:"index;not null"`
	Tags         []inbox.Tag `gorm:"serializer:json;not null"`
	Priority     string      `gorm:"index;not null"`
	Status       string      `gorm:"index;not null;default:new"`
	AssignedTo   string      `gorm:"index;not null;default:''"`
	ResponseTime *int
	Notes        string `gorm:"type:text;not null;default:''"`
	LastUpdate   *time.Time
}

func (QueryRecord) TableName() string { return "queries" }

type TeamMemberRecord struct {
	ID    string `gorm:"primaryKey"`
	Name  string `gorm:"not null"`
	Email string `gorm:"not null"`
	Role  string `gorm:"not null;default:''"`
}

func (TeamMemberRecord) TableName() string { return "team_members" }

func fromQuery(q inbox.Query) QueryRecord {
	return QueryRecord{
		ID:           q.ID,
		Content:      q.Content,
		Sender:       q.Sender,
		SenderHandle: q.SenderHandle,
		Channel:      string(q.Channel),
		ReceivedAt:   q.ReceivedAt,
		Tags:         q.Tags,
		Priority:     string(q.Priority),
		Status:       string(q.Status),
		AssignedTo:   q.AssignedTo,
		ResponseTime: q.ResponseTime,
		Notes:        q.Notes,
		LastUpdate:   q.LastUpdate,
	}
}

func (r QueryRecord) toQuery() inbox.Query {
	return inbox.Query{
		ID:           r.ID,
		Content:      r.Content,
		Sender:       r.Sender,
		SenderHandle: r.SenderHandle,
		Channel:      inbox.Channel(r.Channel),
		ReceivedAt:   r.ReceivedAt,
		Tags:         r.Tags,
		Priority:     inbox.Priority(r.Priority),
		Status:       inbox.Status(r.Status),
		AssignedTo:   r.AssignedTo,
		ResponseTime: r.ResponseTime,
		Notes:        r.Notes,
		LastUpdate:   r.LastUpdate,
	}
}

func (r TeamMemberRecord) toMember() inbox.TeamMember {
	return inbox.TeamMember{ID: r.ID, Name: r.Name, Email: r.Email, Role: r.Role}
}
