package packs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpshade/pocket-meta/internal/errors"
	"github.com/dpshade/pocket-meta/internal/models"
)

func newTestRegistry(t *testing.T) (*Registry, *[]string) {
	t.Helper()
	r, err := NewRegistry(DefaultSeed())
	require.NoError(t, err)

	synced := []string{}
	r.OnPackName(func(packName string) {
		synced = append(synced, packName)
	})
	return r, &synced
}

func TestNewRegistryDefaultsToFirst(t *testing.T) {
	r, _ := newTestRegistry(t)

	assert.Equal(t, 3, r.Len())
	require.NotNil(t, r.Active())
	assert.Equal(t, "pack-1", r.Active().ID)
}

func TestNewRegistryEmpty(t *testing.T) {
	r, err := NewRegistry(nil)
	require.NoError(t, err)

	assert.Nil(t, r.Active())
	assert.Equal(t, "", r.ActiveID())

	added := r.Add()
	assert.Equal(t, added.ID, r.ActiveID())
}

func TestNewRegistryAssignsMissingIDs(t *testing.T) {
	r, err := NewRegistry([]models.PackRecord{
		{PackName: "A"},
		{ID: "pack-1", PackName: "B"},
		{PackName: "C"},
	})
	require.NoError(t, err)

	ids := map[string]bool{}
	for _, rec := range r.List() {
		assert.NotEmpty(t, rec.ID)
		assert.False(t, ids[rec.ID], "duplicate id %s", rec.ID)
		ids[rec.ID] = true
	}
}

func TestNewRegistryRejectsDuplicateIDs(t *testing.T) {
	_, err := NewRegistry([]models.PackRecord{{ID: "x"}, {ID: "x"}})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidation))
}

func TestAdd(t *testing.T) {
	r, synced := newTestRegistry(t)

	before := r.Len()
	seen := map[string]bool{}
	for _, rec := range r.List() {
		seen[rec.ID] = true
	}

	for i := 0; i < 50; i++ {
		added := r.Add()
		assert.False(t, seen[added.ID], "id %s reused", added.ID)
		seen[added.ID] = true
		assert.Equal(t, added.ID, r.ActiveID())
		assert.Equal(t, before+i+1, r.Len())
	}

	last := r.Active()
	assert.Equal(t, DefaultName, last.Name)
	assert.Equal(t, DefaultPackName, last.PackName)
	assert.Equal(t, DefaultPackName, (*synced)[len(*synced)-1])
}

func TestAddAvoidsSeedCollisions(t *testing.T) {
	r, err := NewRegistry([]models.PackRecord{{ID: "pack-2"}, {ID: "pack-3"}})
	require.NoError(t, err)

	added := r.Add()
	assert.NotEqual(t, "pack-2", added.ID)
	assert.NotEqual(t, "pack-3", added.ID)
}

func TestSelect(t *testing.T) {
	r, synced := newTestRegistry(t)

	require.NoError(t, r.Select("pack-2"))
	assert.Equal(t, "pack-2", r.ActiveID())
	assert.Equal(t, []string{"TR_INVOICE"}, *synced)
}

func TestSelectUnknownLeavesStateUnchanged(t *testing.T) {
	r, synced := newTestRegistry(t)
	require.NoError(t, r.Select("pack-3"))
	before := r.List()

	err := r.Select("pack-404")

	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
	assert.Equal(t, "pack-3", r.ActiveID())
	assert.Equal(t, before, r.List())
	assert.Equal(t, []string{"RECEIPT_MIX"}, *synced)
}

func TestUpdateFields(t *testing.T) {
	r, synced := newTestRegistry(t)
	before := r.List()

	require.NoError(t, r.UpdateName("pack-2", "Invoices"))
	require.NoError(t, r.UpdateGoal("pack-2", "G"))
	require.NoError(t, r.UpdateDirectives("pack-2", "a\nb"))
	require.NoError(t, r.UpdateSystemNotes("pack-2", "N"))
	assert.Empty(t, *synced)

	require.NoError(t, r.UpdatePackName("pack-2", "FOO"))
	assert.Equal(t, []string{"FOO"}, *synced)

	got, err := r.Get("pack-2")
	require.NoError(t, err)
	assert.Equal(t, models.PackRecord{
		ID:          "pack-2",
		Name:        "Invoices",
		PackName:    "FOO",
		Goal:        "G",
		Directives:  "a\nb",
		SystemNotes: "N",
	}, *got)

	after := r.List()
	assert.Equal(t, before[0], after[0])
	assert.Equal(t, before[2], after[2])
	assert.Equal(t, "pack-1", r.ActiveID())
}

func TestUpdateUnknownID(t *testing.T) {
	r, synced := newTestRegistry(t)
	before := r.List()

	err := r.UpdatePackName("nope", "FOO")

	assert.True(t, errors.IsNotFound(err))
	assert.Equal(t, before, r.List())
	assert.Empty(t, *synced)
}

func TestUpdateUnknownField(t *testing.T) {
	r, _ := newTestRegistry(t)
	err := r.Update("pack-1", models.PackField(99), "x")
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidation))
}

func TestReturnedRecordsAreCopies(t *testing.T) {
	r, _ := newTestRegistry(t)

	active := r.Active()
	active.PackName = "MUTATED"
	list := r.List()
	list[0].Goal = "MUTATED"

	assert.Equal(t, "US_ID_V1", r.Active().PackName)
	assert.NotEqual(t, "MUTATED", r.List()[0].Goal)
}

func TestFind(t *testing.T) {
	r, _ := newTestRegistry(t)

	assert.Len(t, r.Find(""), 3)

	found := r.Find("invoice")
	require.NotEmpty(t, found)
	assert.Equal(t, "TR_INVOICE", found[0].PackName)

	assert.Empty(t, r.Find("zzzzqqq"))
}

func TestResolve(t *testing.T) {
	r, _ := newTestRegistry(t)

	byID, err := r.Resolve("pack-3")
	require.NoError(t, err)
	assert.Equal(t, "RECEIPT_MIX", byID.PackName)

	byName, err := r.Resolve("US_ID_V1")
	require.NoError(t, err)
	assert.Equal(t, "pack-1", byName.ID)

	_, err = r.Resolve("missing")
	assert.True(t, errors.IsNotFound(err))
}
