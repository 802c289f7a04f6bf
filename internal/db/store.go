package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tejzpr/audience-inbox/internal/errs"
	"github.com/tejzpr/audience-inbox/internal/inbox"
)

// Store persists queries and the team directory with gorm.
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

func NewStore(d *gorm.DB) *Store {
	return &Store{db: d, now: time.Now}
}

// List returns every query, oldest first.
func (s *Store) List(ctx context.Context) ([]inbox.Query, error) {
	var records []QueryRecord
	if err := s.db.WithContext(ctx).Order("received_at ASC").Find(&records).Error; err != nil {
		return nil, errs.Wrap(err, "list queries")
	}
	out := make([]inbox.Query, len(records))
	for i, r := range records {
		out[i] = r.toQuery()
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, id string) (inbox.Query, error) {
	var r QueryRecord
	if err := s.db.WithContext(ctx).First(&r, "id = ?", id).Error; err != nil {
		return inbox.Query{}, notFound(err, "query %s", id)
	}
	return r.toQuery(), nil
}

// Insert stores q, assigning an ID and ReceivedAt when they are unset.
func (s *Store) Insert(ctx context.Context, q inbox.Query) (inbox.Query, error) {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.ReceivedAt.IsZero() {
		q.ReceivedAt = s.now()
	}
	r := fromQuery(q)
	if err := s.db.WithContext(ctx).Create(&r).Error; err != nil {
		return inbox.Query{}, errs.Wrap(err, "insert query")
	}
	return r.toQuery(), nil
}

// Update merges patch into the stored query inside a transaction and
// refreshes its LastUpdate.
func (s *Store) Update(ctx context.Context, id string, patch inbox.QueryPatch) (inbox.Query, error) {
	var updated inbox.Query
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var r QueryRecord
		if err := tx.First(&r, "id = ?", id).Error; err != nil {
			return notFound(err, "query %s", id)
		}
		q := r.toQuery()
		patch.Apply(&q, s.now())

		next := fromQuery(q)
		if err := tx.Save(&next).Error; err != nil {
			return errs.Wrap(err, "save query")
		}
		updated = q
		return nil
	})
	if err != nil {
		return inbox.Query{}, err
	}
	return updated, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&QueryRecord{}, "id = ?", id)
	if result.Error != nil {
		return errs.Wrap(result.Error, "delete query")
	}
	if result.RowsAffected == 0 {
		return errs.Wrapf(inbox.ErrNotFound, "query %s", id)
	}
	return nil
}

func (s *Store) ListTeamMembers(ctx context.Context) ([]inbox.TeamMember, error) {
	var records []TeamMemberRecord
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&records).Error; err != nil {
		return nil, errs.Wrap(err, "list team members")
	}
	out := make([]inbox.TeamMember, len(records))
	for i, r := range records {
		out[i] = r.toMember()
	}
	return out, nil
}

func (s *Store) GetTeamMember(ctx context.Context, id string) (inbox.TeamMember, error) {
	var r TeamMemberRecord
	if err := s.db.WithContext(ctx).First(&r, "id = ?", id).Error; err != nil {
		return inbox.TeamMember{}, notFound(err, "team member %s", id)
	}
	return r.toMember(), nil
}

// UpsertTeamMember creates or replaces a directory entry.
func (s *Store) UpsertTeamMember(ctx context.Context, m inbox.TeamMember) error {
	r := TeamMemberRecord{ID: m.ID, Name: m.Name, Email: m.Email, Role: m.Role}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&r).Error
	return errs.Wrap(err, "upsert team member")
}

func notFound(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.Wrapf(inbox.ErrNotFound, format, args...)
	}
	return errs.Wrapf(err, "load "+format, args...)
}
