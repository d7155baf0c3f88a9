package db

import (
	"fmt"
	"testing"
	"time"

	"github.com/fragrancepalette/backend/internal/errs"
	"github.com/fragrancepalette/backend/internal/model"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	return New(NewRouter(migrated(t, openSQLite(t))))
}

func seedFamily(t *testing.T, d *DB) *model.FragranceFamily {
	t.Helper()
	family := &model.FragranceFamily{
		Name:        "Citrus",
		Description: "Fresh, zesty, and energizing scents",
		Ingredients: model.Ingredients{"Lemon", "Orange", "Bergamot"},
	}
	_, err := d.EnsureFamily(family)
	require.NoError(t, err)
	return family
}

func TestCreateFormulaLoadsFamily(t *testing.T) {
	d := testDB(t)
	family := seedFamily(t, d)

	f := &model.Formula{
		UserID:            1,
		FragranceFamilyID: family.ID,
		Name:              "Golden Dawn",
		TopNote:           "Yuzu",
		MiddleNote:        "Neroli",
		BaseNote:          "Oakmoss",
		Mixing:            "Combine and wait.",
	}
	require.NoError(t, d.CreateFormula(f))
	assert.NotZero(t, f.ID)
	require.NotNil(t, f.FragranceFamily)
	assert.Equal(t, "Citrus", f.FragranceFamily.Name)
	assert.Equal(t, model.Ingredients{"Lemon", "Orange", "Bergamot"}, f.FragranceFamily.Ingredients)
}

func TestListFormulasByUserPaginates(t *testing.T) {
	d := testDB(t)
	family := seedFamily(t, d)
	for i := 0; i < 25; i++ {
		f := &model.Formula{
			UserID:            7,
			FragranceFamilyID: family.ID,
			Name:              fmt.Sprintf("Formula %02d", i),
			CreatedAt:         time.Now().Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, d.CreateFormula(f))
	}
	// Another user's rows must not leak in.
	require.NoError(t, d.CreateFormula(&model.Formula{UserID: 8, FragranceFamilyID: family.ID, Name: "Other"}))

	formulas, total, err := d.ListFormulasByUser(7, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 25, total)
	require.Len(t, formulas, 10)
	// Newest first.
	assert.Equal(t, "Formula 24", formulas[0].Name)
	require.NotNil(t, formulas[0].FragranceFamily)

	formulas, total, err = d.ListFormulasByUser(7, 3, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 25, total)
	assert.Len(t, formulas, 5)
}

func TestListFormulasByUserEmpty(t *testing.T) {
	d := testDB(t)
	formulas, total, err := d.ListFormulasByUser(42, 1, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.NotNil(t, formulas)
	assert.Empty(t, formulas)
}

func TestListFormulasByUserClampsParams(t *testing.T) {
	d := testDB(t)
	family := seedFamily(t, d)
	require.NoError(t, d.CreateFormula(&model.Formula{UserID: 7, FragranceFamilyID: family.ID, Name: "One"}))

	formulas, total, err := d.ListFormulasByUser(7, 0, -5)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, formulas, 1)
}

func TestEnsureFamilyIdempotent(t *testing.T) {
	d := testDB(t)
	family := seedFamily(t, d)

	again := &model.FragranceFamily{Name: "Citrus", Description: "different"}
	created, err := d.EnsureFamily(again)
	require.NoError(t, err)
	assert.False(t, created)
	// Existing row wins; the seed payload is not overwritten.
	assert.Equal(t, family.ID, again.ID)
	assert.Equal(t, "Fresh, zesty, and energizing scents", again.Description)
}

func TestGetFamilyByNameNotFound(t *testing.T) {
	d := testDB(t)
	_, err := d.GetFamilyByName("Citrus")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.FamilyNotFound))
}
