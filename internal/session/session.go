// Package session owns the mutable state of one interactive composition: the template,
// the variable store and the pack registry. Every mutation goes through a Session
// method, which bumps the revision and notifies subscribers so a rendering layer knows
// when to redraw.
package session

import (
	"github.com/google/uuid"

	"github.com/dpshade/pocket-meta/internal/logging"
	"github.com/dpshade/pocket-meta/internal/models"
	"github.com/dpshade/pocket-meta/internal/packs"
	"github.com/dpshade/pocket-meta/internal/renderer"
)

// EventKind identifies what changed.
type EventKind int

const (
	TemplateChanged EventKind = iota
	VariableChanged
	PackAdded
	PackSelected
	PackUpdated
)

func (k EventKind) String() string {
	switch k {
	case TemplateChanged:
		return "template_changed"
	case VariableChanged:
		return "variable_changed"
	case PackAdded:
		return "pack_added"
	case PackSelected:
		return "pack_selected"
	case PackUpdated:
		return "pack_updated"
	default:
		return "unknown"
	}
}

// Event describes one state change.
type Event struct {
	Kind     EventKind
	Revision uint64
	Name     string // variable name for VariableChanged
	PackID   string // pack id for pack events
}

// Session is single-writer state scoped to one interactive session. It is not safe
// for concurrent use.
type Session struct {
	ID string

	template  string
	variables models.Variables
	registry  *packs.Registry

	revision  uint64
	listeners []func(Event)
	log       *logging.Logger
}

// New creates a session. When vars has no pack_name entry it is seeded from the
// active pack so the first render already reflects the default selection.
func New(template string, vars models.Variables, registry *packs.Registry, log *logging.Logger) *Session {
	if log == nil {
		log = logging.Nop()
	}
	id := uuid.NewString()

	s := &Session{
		ID:        id,
		template:  template,
		variables: vars.Clone(),
		registry:  registry,
		log:       log.With("session", id),
	}

	registry.OnPackName(func(packName string) {
		s.variables[models.PackNameVariable] = packName
	})

	if _, ok := s.variables[models.PackNameVariable]; !ok {
		if active := registry.Active(); active != nil {
			s.variables[models.PackNameVariable] = active.PackName
		}
	}

	return s
}

// Subscribe registers fn to be called after every state change.
func (s *Session) Subscribe(fn func(Event)) {
	s.listeners = append(s.listeners, fn)
}

// Revision increases by one with every state change.
func (s *Session) Revision() uint64 {
	return s.revision
}

func (s *Session) emit(e Event) {
	s.revision++
	e.Revision = s.revision
	s.log.Debug("session changed", "event", e.Kind.String(), "revision", e.Revision, "name", e.Name, "pack", e.PackID)
	for _, fn := range s.listeners {
		fn(e)
	}
}

// Template returns the current template text.
func (s *Session) Template() string {
	return s.template
}

// SetTemplate replaces the template. Variable entries are kept even when their
// placeholder disappears.
func (s *Session) SetTemplate(template string) {
	if template == s.template {
		return
	}
	s.template = template
	s.emit(Event{Kind: TemplateChanged})
}

// Variables returns a copy of the variable store.
func (s *Session) Variables() models.Variables {
	return s.variables.Clone()
}

// Variable returns the value of name and whether an entry exists.
func (s *Session) Variable(name string) (string, bool) {
	return s.variables.Get(name)
}

// SetVariable stores value under name. Editing pack_name by hand sticks until the
// next pack selection or pack-name edit.
func (s *Session) SetVariable(name, value string) {
	if current, ok := s.variables[name]; ok && current == value {
		return
	}
	s.variables[name] = value
	s.emit(Event{Kind: VariableChanged, Name: name})
}

// Packs returns the pack records in order.
func (s *Session) Packs() []models.PackRecord {
	return s.registry.List()
}

// FindPacks fuzzily filters the pack records.
func (s *Session) FindPacks(query string) []models.PackRecord {
	return s.registry.Find(query)
}

// ActivePack returns the selected pack, or nil when there are none.
func (s *Session) ActivePack() *models.PackRecord {
	return s.registry.Active()
}

// ResolvePack finds a pack by id or pack name without selecting it.
func (s *Session) ResolvePack(ref string) (*models.PackRecord, error) {
	return s.registry.Resolve(ref)
}

// AddPack creates a pack with default values and selects it.
func (s *Session) AddPack() *models.PackRecord {
	rec := s.registry.Add()
	s.log.Info("pack added", "pack", rec.ID)
	s.emit(Event{Kind: PackAdded, PackID: rec.ID})
	return rec
}

// SelectPack activates the pack with id. Unknown ids return a not-found error and
// change nothing.
func (s *Session) SelectPack(id string) error {
	if err := s.registry.Select(id); err != nil {
		s.log.Warn("pack select failed", "pack", id, "error", err)
		return err
	}
	s.emit(Event{Kind: PackSelected, PackID: id})
	return nil
}

// UpdatePack sets one field of the pack with id.
func (s *Session) UpdatePack(id string, field models.PackField, value string) error {
	if err := s.registry.Update(id, field, value); err != nil {
		s.log.Warn("pack update failed", "pack", id, "field", field.String(), "error", err)
		return err
	}
	s.emit(Event{Kind: PackUpdated, PackID: id})
	return nil
}

// Placeholders returns the names detected in the template.
func (s *Session) Placeholders() []string {
	return renderer.Scan(s.template)
}

// Slots pairs each detected placeholder with its value.
func (s *Session) Slots() []models.Slot {
	return renderer.Slots(s.template, s.variables)
}

// Unresolved lists placeholders that would render as markers.
func (s *Session) Unresolved() []string {
	return renderer.Unresolved(s.template, s.variables)
}

// Rendered returns the template with variables substituted.
func (s *Session) Rendered() string {
	return renderer.Render(s.template, s.variables)
}

// Combined returns the rendered template joined with the active pack block.
func (s *Session) Combined() string {
	return renderer.Compose(s.Rendered(), s.registry.Active())
}

// Snapshot returns the JSON export of the current composition.
func (s *Session) Snapshot() ([]byte, error) {
	return renderer.MarshalSnapshot(s.Rendered(), s.registry.Active(), s.variables)
}
