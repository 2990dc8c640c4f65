package masterdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"hrconsole/internal/gateway"
	"hrconsole/internal/notify"
	"hrconsole/internal/validation"
)

type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

type FormState struct {
	Mode       Mode   `json:"mode"`
	EditingID  string `json:"editingId,omitempty"`
	Draft      Draft  `json:"draft"`
	Submitting bool   `json:"submitting"`
}

// Form is the create/edit controller for one entity. The edit identity is
// kept apart from the draft so it cannot be typed over.
type Form struct {
	def      Definition
	gw       Gateway
	list     *List
	notifier notify.Notifier

	mu         sync.Mutex
	mode       Mode
	editingID  string
	editingRaw any
	draft      Draft
	submitting bool
}

func NewForm(def Definition, gw Gateway, list *List, notifier notify.Notifier) *Form {
	return &Form{def: def, gw: gw, list: list, notifier: notifier, mode: ModeCreate, draft: Draft{}}
}

func (f *Form) State() FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return FormState{Mode: f.mode, EditingID: f.editingID, Draft: f.draft.clone(), Submitting: f.submitting}
}

// Edit loads rec into the draft and switches to edit mode.
func (f *Form) Edit(rec Record) error {
	id := RecordID(f.def, rec)
	if id == "" {
		return fmt.Errorf("%w: record has no %s", ErrRecordNotFound, f.def.IDField)
	}
	draft := Draft{}
	for _, field := range f.def.Fields {
		draft[field.Key] = Text(rec, field.Key)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitting {
		return ErrSubmitInFlight
	}
	f.mode = ModeEdit
	f.editingID = id
	f.editingRaw = rec[f.def.IDField]
	f.draft = draft
	return nil
}

// Set changes one draft field.
func (f *Form) Set(key, value string) error {
	if _, ok := f.def.Field(key); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, key)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitting {
		return ErrSubmitInFlight
	}
	f.draft[key] = value
	return nil
}

// SetDraft applies several fields at once; unknown keys reject the whole
// update.
func (f *Form) SetDraft(values Draft) error {
	for key := range values {
		if _, ok := f.def.Field(key); !ok {
			return fmt.Errorf("%w: %s", ErrUnknownField, key)
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitting {
		return ErrSubmitInFlight
	}
	for key, value := range values {
		f.draft[key] = value
	}
	return nil
}

// Reset abandons any edit and clears the draft.
func (f *Form) Reset() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitting {
		return ErrSubmitInFlight
	}
	f.resetLocked()
	return nil
}

func (f *Form) resetLocked() {
	f.mode = ModeCreate
	f.editingID = ""
	f.editingRaw = nil
	f.draft = Draft{}
}

// Validate checks every field of draft against the definition and reports
// each failing field.
func Validate(def Definition, draft Draft) error {
	v := validation.NewValidator()
	for _, field := range def.Fields {
		value := draft[field.Key]
		switch field.Kind {
		case KindNumber:
			if field.Required || strings.TrimSpace(value) != "" {
				v.Numeric(field.Key, value)
			}
		case KindBool:
			v.Boolean(field.Key, value)
		default:
			if field.Required {
				v.Required(field.Key, value)
			}
		}
	}
	return v.Err()
}

// Submit saves the draft. It sends exactly one notification, and on success
// returns to create mode and reloads the list from the gateway.
func (f *Form) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return ErrSubmitInFlight
	}
	draft := f.draft.clone()
	mode := f.mode
	editingID := f.editingID
	editingRaw := f.editingRaw
	err := Validate(f.def, draft)
	var payload map[string]any
	if err == nil {
		payload, err = buildPayload(f.def, draft)
	}
	if err != nil {
		f.mu.Unlock()
		notify.Error(f.notifier, describeValidation(f.def, err))
		return err
	}
	f.submitting = true
	f.mu.Unlock()

	endpoint := f.def.Endpoints.Save
	payload[f.def.IDField] = json.Number("0")
	if mode == ModeEdit {
		endpoint = f.def.Endpoints.Update
		payload[f.def.IDField] = idValue(editingRaw, editingID)
	}

	res, err := f.gw.Post(ctx, endpoint, nil, payload)
	if err == nil {
		err = res.Err()
	}

	f.mu.Lock()
	f.submitting = false
	if err != nil {
		f.mu.Unlock()
		notify.Error(f.notifier, gateway.UserMessage(err))
		return err
	}
	f.resetLocked()
	f.mu.Unlock()

	verb := "saved"
	if mode == ModeEdit {
		verb = "updated"
	}
	message := strings.TrimSpace(res.Message)
	if message == "" {
		message = fmt.Sprintf("%s %s successfully", f.def.Noun, verb)
	}
	notify.Success(f.notifier, message)

	if f.list != nil {
		if err := f.list.refresh(ctx); err != nil {
			slog.Warn("reload after submit failed", "entity", f.def.Name, "err", err)
		}
	}
	return nil
}

// buildPayload converts the draft to wire values. Numbers are rewritten in
// canonical form since inputs like "07" are not valid JSON literals.
func buildPayload(def Definition, draft Draft) (map[string]any, error) {
	payload := make(map[string]any, len(def.Fields)+1)
	for _, field := range def.Fields {
		value := strings.TrimSpace(draft[field.Key])
		switch field.Kind {
		case KindNumber:
			if value == "" {
				payload[field.Key] = nil
				continue
			}
			n, err := decimal.NewFromString(strings.TrimPrefix(value, "+"))
			if err != nil {
				return nil, validation.New(field.Key, "must be a number")
			}
			payload[field.Key] = json.Number(n.String())
		case KindBool:
			payload[field.Key] = boolValue(value)
		default:
			payload[field.Key] = value
		}
	}
	return payload, nil
}

func describeValidation(def Definition, err error) string {
	var verr *validation.Error
	if !errors.As(err, &verr) {
		return err.Error()
	}
	parts := make([]string, 0, len(verr.Issues))
	for _, issue := range verr.Issues {
		label := issue.Field
		if field, ok := def.Field(issue.Field); ok {
			label = field.Label
		}
		parts = append(parts, label+" "+issue.Reason)
	}
	return strings.Join(parts, "; ")
}
