package testhelpers

import (
	"testing"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupSQLite(t *testing.T) {
	db := SetupSQLite(t)

	author := CreateTestUser(t, db, "author")
	tag := CreateTestTag(t, db, "Breakfast", "breakfast")
	egg := CreateTestIngredient(t, db, "egg", "pcs")
	recipe := CreateTestRecipe(t, db, author, "omelette", []*models.Tag{tag}, Amount{egg, 3})

	var loaded models.Recipe
	require.NoError(t, db.Preload("Tags").Preload("IngredientAmounts").First(&loaded, "id = ?", recipe.ID).Error)
	assert.Equal(t, author.ID, loaded.AuthorID)
	require.Len(t, loaded.Tags, 1)
	assert.Equal(t, "breakfast", loaded.Tags[0].Slug)
	require.Len(t, loaded.IngredientAmounts, 1)
	assert.Equal(t, 3, loaded.IngredientAmounts[0].Amount)
	assert.Equal(t, int64(1), CountRows(t, db, &models.Tag{}, ""))
}

func TestSetupPostgres(t *testing.T) {
	db := SetupPostgres(t)

	var applied int64
	require.NoError(t, db.Table("schema_migrations").Count(&applied).Error)
	assert.Equal(t, int64(4), applied)

	user := CreateTestUser(t, db, "pg_user")
	assert.NotEqual(t, "", user.ID.String())
}
