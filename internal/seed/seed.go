// Package seed loads the team directory and sample queries into an empty store.
package seed

import (
	"context"
	_ "embed"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tejzpr/audience-inbox/internal/classifier"
	"github.com/tejzpr/audience-inbox/internal/errs"
	"github.com/tejzpr/audience-inbox/internal/inbox"
	"github.com/tejzpr/audience-inbox/internal/logging"
)

//go:embed default.yaml
var defaultData []byte

type Data struct {
	Team    []inbox.TeamMember `yaml:"team"`
	Queries []Query            `yaml:"queries"`
}

// Query is a sample message. Received time is relative to load time and
// tags/priority come from the classifier.
type Query struct {
	Content         string        `yaml:"content"`
	Sender          string        `yaml:"sender"`
	SenderHandle    string        `yaml:"senderHandle"`
	Channel         inbox.Channel `yaml:"channel"`
	MinutesAgo      int           `yaml:"minutesAgo"`
	Status          inbox.Status  `yaml:"status"`
	AssignedTo      string        `yaml:"assignedTo"`
	ResponseMinutes *int          `yaml:"responseMinutes"`
}

// Target is what seeding writes into.
type Target interface {
	List(ctx context.Context) ([]inbox.Query, error)
	Insert(ctx context.Context, q inbox.Query) (inbox.Query, error)
	UpsertTeamMember(ctx context.Context, m inbox.TeamMember) error
}

// Parse decodes and validates seed YAML.
func Parse(raw []byte) (Data, error) {
	var d Data
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return Data{}, errs.Wrap(err, "decode seed yaml")
	}
	for i, m := range d.Team {
		if m.ID == "" || m.Name == "" {
			return Data{}, errs.Wrapf(inbox.ErrInvalidInput, "team entry %d needs id and name", i)
		}
	}
	for i, q := range d.Queries {
		if q.Content == "" || q.Sender == "" {
			return Data{}, errs.Wrapf(inbox.ErrInvalidInput, "query entry %d needs content and sender", i)
		}
		if !q.Channel.Valid() {
			return Data{}, errs.Wrapf(inbox.ErrInvalidInput, "query entry %d has unknown channel %q", i, q.Channel)
		}
		if q.Status != "" && !q.Status.Valid() {
			return Data{}, errs.Wrapf(inbox.ErrInvalidInput, "query entry %d has unknown status %q", i, q.Status)
		}
	}
	return d, nil
}

// Read loads the seed file at path, or the built-in data set when path is empty.
func Read(path string) (Data, error) {
	if path == "" {
		return Parse(defaultData)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Data{}, errs.Wrapf(err, "read seed file %s", path)
	}
	return Parse(raw)
}

// Load upserts the team directory and, when the store holds no queries,
// inserts the sample queries. It returns the number of queries inserted.
func Load(ctx context.Context, t Target, d Data, now time.Time) (int, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "seed"))

	for _, m := range d.Team {
		if err := t.UpsertTeamMember(ctx, m); err != nil {
			return 0, err
		}
	}

	existing, err := t.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		logging.Debug(logCtx, "store already has queries, skipping samples", slog.Int("existing", len(existing)))
		return 0, nil
	}

	for _, sq := range d.Queries {
		result := classifier.Classify(sq.Content)
		status := sq.Status
		if status == "" {
			status = inbox.StatusNew
		}
		q := inbox.Query{
			Content:      sq.Content,
			Sender:       sq.Sender,
			SenderHandle: sq.SenderHandle,
			Channel:      sq.Channel,
			ReceivedAt:   now.Add(-time.Duration(sq.MinutesAgo) * time.Minute),
			Tags:         result.Tags,
			Priority:     result.Priority,
			Status:       status,
			AssignedTo:   sq.AssignedTo,
		}
		if status.Done() {
			q.ResponseTime = sq.ResponseMinutes
		}
		if _, err := t.Insert(ctx, q); err != nil {
			return 0, err
		}
	}
	logging.Info(logCtx, "seed loaded", slog.Int("team", len(d.Team)), slog.Int("queries", len(d.Queries)))
	return len(d.Queries), nil
}
