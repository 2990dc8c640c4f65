package masterdata

import (
	"context"
	"fmt"
	"strconv"

	"hrconsole/internal/export"
	"hrconsole/internal/gateway"
	"hrconsole/internal/notify"
)

// Screen is one master-data page: its cache and filter, its form and its
// delete confirmation. Screens never share state.
type Screen struct {
	Def    Definition
	List   *List
	Form   *Form
	Delete *DeleteFlow

	gw       Gateway
	notifier notify.Notifier
}

func NewScreen(def Definition, gw Gateway, notifier notify.Notifier) *Screen {
	list := NewList(def, gw, notifier)
	return &Screen{
		Def:      def,
		List:     list,
		Form:     NewForm(def, gw, list, notifier),
		Delete:   NewDeleteFlow(def, gw, list, notifier),
		gw:       gw,
		notifier: notifier,
	}
}

// Open loads the college lookup (when the entity uses it) and then the
// entity list. A failed lookup leaves raw codes on screen.
func (s *Screen) Open(ctx context.Context) error {
	if s.Def.UsesColleges() {
		colleges, err := LoadColleges(ctx, s.gw)
		if err != nil {
			notify.Error(s.notifier, "Could not load colleges: "+gateway.UserMessage(err))
		}
		s.List.SetColleges(colleges)
	}
	return s.List.Load(ctx)
}

// EditByID switches the form to edit the cached record with identity id.
func (s *Screen) EditByID(id string) error {
	rec, ok := s.List.Find(id)
	if !ok {
		return fmt.Errorf("%w: %s %s", ErrRecordNotFound, s.Def.IDField, id)
	}
	return s.Form.Edit(rec)
}

type Row struct {
	ID     string            `json:"id"`
	Values map[string]string `json:"values"`
}

type View struct {
	Entity        string    `json:"entity"`
	Title         string    `json:"title"`
	IDField       string    `json:"idField"`
	Fields        []Field   `json:"fields"`
	Query         string    `json:"query"`
	Total         int       `json:"total"`
	Rows          []Row     `json:"rows"`
	Form          FormState `json:"form"`
	PendingDelete string    `json:"pendingDelete,omitempty"`
	Colleges      []College `json:"colleges,omitempty"`
}

// Snapshot renders the current state for the browser.
func (s *Screen) Snapshot() View {
	colleges := s.List.Colleges()
	records := s.List.View()
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, Row{ID: RecordID(s.Def, rec), Values: displayValues(s.Def, colleges, rec)})
	}
	pending, _ := s.Delete.Pending()
	view := View{
		Entity:        s.Def.Name,
		Title:         s.Def.Title,
		IDField:       s.Def.IDField,
		Fields:        s.Def.Fields,
		Query:         s.List.Query(),
		Total:         len(s.List.Records()),
		Rows:          rows,
		Form:          s.Form.State(),
		PendingDelete: pending,
	}
	if s.Def.UsesColleges() {
		view.Colleges = colleges.Options()
	}
	return view
}

func displayValues(def Definition, colleges CollegeMap, rec Record) map[string]string {
	out := make(map[string]string, len(def.Fields))
	for _, f := range def.Fields {
		out[f.Key] = displayValue(f, colleges, rec)
	}
	return out
}

func displayValue(f Field, colleges CollegeMap, rec Record) string {
	raw := Text(rec, f.Key)
	switch f.Kind {
	case KindCollege:
		return colleges.Name(raw)
	case KindBool:
		if parsed, err := strconv.ParseBool(raw); err == nil && parsed {
			return "Yes"
		}
		return "No"
	default:
		return raw
	}
}

// Table projects the filtered view for export.
func (s *Screen) Table() export.Table {
	colleges := s.List.Colleges()
	headers := make([]string, 0, len(s.Def.Fields)+1)
	headers = append(headers, s.Def.IDLabel)
	for _, f := range s.Def.Fields {
		headers = append(headers, f.Label)
	}
	records := s.List.View()
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		row := make([]string, 0, len(headers))
		row = append(row, Text(rec, s.Def.IDField))
		for _, f := range s.Def.Fields {
			row = append(row, displayValue(f, colleges, rec))
		}
		rows = append(rows, row)
	}
	return export.Table{Title: s.Def.Title, FileName: s.Def.FileName, Headers: headers, Rows: rows}
}
