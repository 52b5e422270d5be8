// Package packs holds the ordered collection of pack records and the active selection.
package packs

import (
	"fmt"

	"github.com/sahilm/fuzzy"

	"github.com/dpshade/pocket-meta/internal/errors"
	"github.com/dpshade/pocket-meta/internal/models"
)

// Defaults applied to records created by Add.
const (
	DefaultName        = "New Pack"
	DefaultPackName    = "NEW_PACK"
	DefaultGoal        = "Describe what this pack should produce"
	DefaultDirectives  = "Directive for image 1\nDirective for image 2"
	DefaultSystemNotes = "Notes for the generation system"
)

// Registry is an ordered collection of pack records with exactly one active record
// whenever it is non-empty. Records are never removed and identifiers are never reused.
type Registry struct {
	records  []models.PackRecord
	activeID string
	issued   map[string]struct{}
	counter  int

	onPackName func(packName string)
}

// NewRegistry creates a registry from seed records. Seeds without an ID get a
// generated one; duplicate IDs are rejected. The first record becomes active.
func NewRegistry(seed []models.PackRecord) (*Registry, error) {
	r := &Registry{
		records: make([]models.PackRecord, 0, len(seed)),
		issued:  make(map[string]struct{}, len(seed)),
	}

	for _, rec := range seed {
		if rec.ID != "" {
			if _, dup := r.issued[rec.ID]; dup {
				return nil, errors.ValidationError(fmt.Sprintf("duplicate pack id '%s'", rec.ID))
			}
			r.issued[rec.ID] = struct{}{}
		}
	}
	for _, rec := range seed {
		if rec.ID == "" {
			rec.ID = r.nextID()
		}
		r.records = append(r.records, rec)
	}

	if len(r.records) > 0 {
		r.activeID = r.records[0].ID
	}
	return r, nil
}

// OnPackName installs the hook called with the pack identifier string whenever a
// selection, an add, or a pack-name edit changes it.
func (r *Registry) OnPackName(fn func(packName string)) {
	r.onPackName = fn
}

// nextID issues an identifier distinct from every identifier seen so far.
func (r *Registry) nextID() string {
	for {
		r.counter++
		id := fmt.Sprintf("pack-%d", len(r.records)+r.counter)
		if _, taken := r.issued[id]; !taken {
			r.issued[id] = struct{}{}
			return id
		}
	}
}

func (r *Registry) index(id string) int {
	for i := range r.records {
		if r.records[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *Registry) notify(packName string) {
	if r.onPackName != nil {
		r.onPackName(packName)
	}
}

// Len returns the number of records.
func (r *Registry) Len() int {
	return len(r.records)
}

// List returns a copy of the records in order.
func (r *Registry) List() []models.PackRecord {
	out := make([]models.PackRecord, len(r.records))
	copy(out, r.records)
	return out
}

// Get returns a copy of the record with the given id.
func (r *Registry) Get(id string) (*models.PackRecord, error) {
	i := r.index(id)
	if i < 0 {
		return nil, errors.NotFoundError(fmt.Sprintf("pack '%s'", id))
	}
	rec := r.records[i]
	return &rec, nil
}

// ActiveID returns the id of the active record, or "" when the registry is empty.
func (r *Registry) ActiveID() string {
	return r.activeID
}

// Active returns a copy of the active record, or nil when the registry is empty.
func (r *Registry) Active() *models.PackRecord {
	i := r.index(r.activeID)
	if i < 0 {
		return nil
	}
	rec := r.records[i]
	return &rec
}

// Add appends a record with default field values and a fresh identifier and makes it active.
func (r *Registry) Add() *models.PackRecord {
	rec := models.PackRecord{
		ID:          r.nextID(),
		Name:        DefaultName,
		PackName:    DefaultPackName,
		Goal:        DefaultGoal,
		Directives:  DefaultDirectives,
		SystemNotes: DefaultSystemNotes,
	}
	r.records = append(r.records, rec)
	r.activeID = rec.ID
	r.notify(rec.PackName)
	return &rec
}

// Select makes the record with id active. An unknown id leaves the selection unchanged.
func (r *Registry) Select(id string) error {
	i := r.index(id)
	if i < 0 {
		return errors.NotFoundError(fmt.Sprintf("pack '%s'", id))
	}
	r.activeID = id
	r.notify(r.records[i].PackName)
	return nil
}

// Update replaces one field of the record with id.
func (r *Registry) Update(id string, field models.PackField, value string) error {
	i := r.index(id)
	if i < 0 {
		return errors.NotFoundError(fmt.Sprintf("pack '%s'", id))
	}

	rec := &r.records[i]
	switch field {
	case models.FieldName:
		rec.Name = value
	case models.FieldPackName:
		rec.PackName = value
		r.notify(value)
	case models.FieldGoal:
		rec.Goal = value
	case models.FieldDirectives:
		rec.Directives = value
	case models.FieldSystemNotes:
		rec.SystemNotes = value
	default:
		return errors.ValidationError(fmt.Sprintf("unknown pack field %d", int(field)))
	}
	return nil
}

// UpdateName sets the display name of a record.
func (r *Registry) UpdateName(id, value string) error {
	return r.Update(id, models.FieldName, value)
}

// UpdatePackName sets the pack identifier string and syncs the pack_name variable.
func (r *Registry) UpdatePackName(id, value string) error {
	return r.Update(id, models.FieldPackName, value)
}

// UpdateGoal sets the objective text.
func (r *Registry) UpdateGoal(id, value string) error {
	return r.Update(id, models.FieldGoal, value)
}

// UpdateDirectives sets the newline-delimited directive list.
func (r *Registry) UpdateDirectives(id, value string) error {
	return r.Update(id, models.FieldDirectives, value)
}

// UpdateSystemNotes sets the free-form system notes.
func (r *Registry) UpdateSystemNotes(id, value string) error {
	return r.Update(id, models.FieldSystemNotes, value)
}

// packSource adapts the records for fuzzy matching on name and pack name.
type packSource []models.PackRecord

func (s packSource) String(i int) string { return s[i].Name + " " + s[i].PackName }
func (s packSource) Len() int            { return len(s) }

// Find returns records fuzzily matching query, best match first. An empty query
// returns every record in order.
func (r *Registry) Find(query string) []models.PackRecord {
	if query == "" {
		return r.List()
	}
	matches := fuzzy.FindFrom(query, packSource(r.records))
	out := make([]models.PackRecord, 0, len(matches))
	for _, m := range matches {
		out = append(out, r.records[m.Index])
	}
	return out
}

// Resolve looks a record up by exact id first, then by exact pack name.
func (r *Registry) Resolve(ref string) (*models.PackRecord, error) {
	if rec, err := r.Get(ref); err == nil {
		return rec, nil
	}
	for i := range r.records {
		if r.records[i].PackName == ref {
			rec := r.records[i]
			return &rec, nil
		}
	}
	return nil, errors.NotFoundError(fmt.Sprintf("pack '%s'", ref))
}
