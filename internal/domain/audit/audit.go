package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	ActionCreate  = "create"
	ActionUpdate  = "update"
	ActionDelete  = "delete"
	ActionApprove = "approve"
)

type Event struct {
	ID         string          `json:"id"`
	Actor      string          `json:"actor"`
	Action     string          `json:"action"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	RequestID  string          `json:"requestId"`
	IP         string          `json:"ip"`
	CreatedAt  time.Time       `json:"createdAt"`
	After      json.RawMessage `json:"after,omitempty"`
}

type Filter struct {
	Action     string
	EntityType string
	Actor      string
}

func (f Filter) matches(evt Event) bool {
	return (f.Action == "" || f.Action == evt.Action) &&
		(f.EntityType == "" || f.EntityType == evt.EntityType) &&
		(f.Actor == "" || f.Actor == evt.Actor)
}

// Recorder keeps the trail of gateway mutations.
type Recorder interface {
	Record(ctx context.Context, evt Event, after any) error
	List(ctx context.Context, filter Filter, limit int) ([]Event, error)
}

func prepare(evt Event, after any) (Event, error) {
	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}
	if evt.CreatedAt.IsZero() {
		evt.CreatedAt = time.Now().UTC()
	}
	if after != nil {
		payload, err := json.Marshal(after)
		if err != nil {
			return Event{}, fmt.Errorf("marshal audit payload: %w", err)
		}
		evt.After = payload
	}
	return evt, nil
}

type Service struct {
	DB *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Service {
	return &Service{DB: db}
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func (s *Service) Record(ctx context.Context, evt Event, after any) error {
	evt, err := prepare(evt, after)
	if err != nil {
		return err
	}
	query, args, err := psql.Insert("audit_events").
		Columns("id", "actor", "action", "entity_type", "entity_id", "request_id", "ip", "after_json", "created_at").
		Values(evt.ID, evt.Actor, evt.Action, evt.EntityType, evt.EntityID, evt.RequestID, evt.IP, []byte(evt.After), evt.CreatedAt).
		ToSql()
	if err != nil {
		return err
	}
	_, err = s.DB.Exec(ctx, query, args...)
	return err
}

func (s *Service) List(ctx context.Context, filter Filter, limit int) ([]Event, error) {
	builder := psql.Select("id::text", "actor", "action", "entity_type", "entity_id", "request_id", "ip", "created_at", "after_json").
		From("audit_events").
		OrderBy("created_at DESC")
	if filter.Action != "" {
		builder = builder.Where(sq.Eq{"action": filter.Action})
	}
	if filter.EntityType != "" {
		builder = builder.Where(sq.Eq{"entity_type": filter.EntityType})
	}
	if filter.Actor != "" {
		builder = builder.Where(sq.Eq{"actor": filter.Actor})
	}
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var evt Event
		var after []byte
		if err := rows.Scan(&evt.ID, &evt.Actor, &evt.Action, &evt.EntityType, &evt.EntityID, &evt.RequestID, &evt.IP, &evt.CreatedAt, &after); err != nil {
			return nil, err
		}
		evt.After = after
		out = append(out, evt)
	}
	return out, rows.Err()
}

// MemoryLog is the Recorder used when the gateway runs without a database.
// It keeps at most max events, dropping the oldest.
type MemoryLog struct {
	max int

	mu     sync.Mutex
	events []Event
}

func NewMemoryLog(max int) *MemoryLog {
	return &MemoryLog{max: max}
}

func (m *MemoryLog) Record(ctx context.Context, evt Event, after any) error {
	evt, err := prepare(evt, after)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, evt)
	if m.max > 0 && len(m.events) > m.max {
		m.events = m.events[len(m.events)-m.max:]
	}
	return nil
}

func (m *MemoryLog) List(ctx context.Context, filter Filter, limit int) ([]Event, error) {
	m.mu.Lock()
	out := make([]Event, 0, len(m.events))
	for _, evt := range m.events {
		if filter.matches(evt) {
			out = append(out, evt)
		}
	}
	m.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
