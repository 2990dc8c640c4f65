package masterdata

import (
	"context"
	"log/slog"
	"net/url"
	"sync"

	"hrconsole/internal/gateway"
	"hrconsole/internal/notify"
)

// Gateway is the part of gateway.Client the screens use.
type Gateway interface {
	List(ctx context.Context, path string, query url.Values) ([]gateway.Row, error)
	Post(ctx context.Context, path string, query url.Values, body any) (gateway.Result, error)
	Delete(ctx context.Context, path string, query url.Values) (gateway.Result, error)
}

// List is the entity cache plus its filtered view. The cache is only ever
// replaced as a whole.
type List struct {
	def      Definition
	gw       Gateway
	notifier notify.Notifier

	mu       sync.Mutex
	records  []Record
	colleges CollegeMap
	query    string
	view     []int
	issued   uint64
}

func NewList(def Definition, gw Gateway, notifier notify.Notifier) *List {
	return &List{def: def, gw: gw, notifier: notifier, colleges: CollegeMap{}}
}

// Load replaces the cache from the gateway. On failure the cache and view
// are emptied and one error notification is sent.
func (l *List) Load(ctx context.Context) error {
	err := l.refresh(ctx)
	if err != nil {
		notify.Error(l.notifier, "Could not load "+l.def.Title+": "+gateway.UserMessage(err))
	}
	return err
}

// refresh is Load without the notification, for callers that already
// report their own outcome.
func (l *List) refresh(ctx context.Context) error {
	l.mu.Lock()
	l.issued++
	gen := l.issued
	l.mu.Unlock()

	rows, err := l.gw.List(ctx, l.def.Endpoints.List, nil)

	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.issued {
		slog.Debug("discarding stale list response", "entity", l.def.Name, "generation", gen, "latest", l.issued)
		return nil
	}
	if err != nil {
		l.replaceLocked(nil)
		return err
	}
	l.replaceLocked(rows)
	return nil
}

func (l *List) replaceLocked(rows []Record) {
	records := make([]Record, 0, len(rows))
	records = append(records, rows...)
	l.records = records
	l.recomputeLocked()
}

func (l *List) recomputeLocked() {
	records := l.records
	l.view = FilterIndices(len(records), l.query, func(i int) []string {
		return SearchText(l.def, l.colleges, records[i])
	})
}

func (l *List) SetQuery(query string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.query = query
	l.recomputeLocked()
}

func (l *List) Query() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.query
}

func (l *List) SetColleges(colleges CollegeMap) {
	if colleges == nil {
		colleges = CollegeMap{}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.colleges = colleges
	l.recomputeLocked()
}

func (l *List) Colleges() CollegeMap {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.colleges
}

// Records returns the whole cache in gateway order.
func (l *List) Records() []Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}

// View returns the filtered subsequence of the cache.
func (l *List) View() []Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Record, 0, len(l.view))
	for _, i := range l.view {
		out = append(out, l.records[i])
	}
	return out
}

func (l *List) Find(id string) (Record, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, rec := range l.records {
		if RecordID(l.def, rec) == id {
			return rec, true
		}
	}
	return nil, false
}
