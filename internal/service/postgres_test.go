package service_test

import (
	"context"
	"testing"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPostgresRecipeFlow runs the main write and read paths against the SQL
// migrations on a real postgres
func TestPostgresRecipeFlow(t *testing.T) {
	db := testhelpers.SetupPostgres(t)
	ctx := context.Background()
	images := testhelpers.NewImageStore(t)

	tags := service.NewTagService(db)
	ingredients := service.NewIngredientService(db)
	recipes := service.NewRecipeService(db, images, defaultRules)
	cart := service.NewShoppingCartService(db, images, "FoodGram")
	users := service.NewUserService(db)

	n, err := tags.ImportTags(ctx, []types.TagInput{{Name: "Lunch", Color: "#00FF00", Slug: "lunch"}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = tags.ImportTags(ctx, []types.TagInput{{Name: "Lunch", Color: "#00FF00", Slug: "lunch"}})
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = ingredients.ImportIngredients(ctx, []types.IngredientInput{
		{Name: "rice", MeasurementUnit: "g"},
		{Name: "beans", MeasurementUnit: "g"},
	})
	require.NoError(t, err)
	found, err := ingredients.SearchIngredients(ctx, "RI")
	require.NoError(t, err)
	require.Len(t, found, 1)
	rice := found[0]
	found, err = ingredients.SearchIngredients(ctx, "bean")
	require.NoError(t, err)
	require.Len(t, found, 1)
	beans := found[0]

	lunch, err := tags.ListTags(ctx)
	require.NoError(t, err)
	require.Len(t, lunch, 1)

	author := testhelpers.CreateTestUser(t, db, "chef")
	req := &types.RecipeRequest{
		Ingredients: []types.RecipeIngredientInput{{ID: rice.ID, Amount: 200}, {ID: beans.ID, Amount: 100}},
		Tags:        []uint{lunch[0].ID},
		Image:       testhelpers.PNGDataURI,
		Name:        "Rice and beans",
		Text:        "Simmer.",
		CookingTime: 40,
	}
	first, err := recipes.CreateRecipe(ctx, author.ID, req)
	require.NoError(t, err)
	req.Name = "Rice bowl"
	req.Ingredients = []types.RecipeIngredientInput{{ID: rice.ID, Amount: 150}}
	second, err := recipes.CreateRecipe(ctx, author.ID, req)
	require.NoError(t, err)

	viewer := author.ID
	listed, total, err := recipes.ListRecipes(ctx, &viewer, service.RecipeFilter{Tags: []string{"lunch"}, Author: author.ID.String()}, types.Pagination{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, listed, 2)

	_, err = cart.AddToCart(ctx, author.ID, first.ID)
	require.NoError(t, err)
	_, err = cart.AddToCart(ctx, author.ID, second.ID)
	require.NoError(t, err)
	items, err := cart.ShoppingList(ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, []types.ShoppingListItem{
		{Name: "beans", MeasurementUnit: "g", Total: 100},
		{Name: "rice", MeasurementUnit: "g", Total: 350},
	}, items)

	inCart, total, err := recipes.ListRecipes(ctx, &viewer, service.RecipeFilter{IsInShoppingCart: true}, types.Pagination{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.True(t, inCart[0].IsInShoppingCart)

	assert.ErrorIs(t, users.DeleteUser(ctx, author.ID), service.ErrProtectedReference)

	require.NoError(t, recipes.DeleteRecipe(ctx, author.ID, first.ID))
	require.NoError(t, recipes.DeleteRecipe(ctx, author.ID, second.ID))
	assert.Zero(t, testhelpers.CountRows(t, db, &models.ShoppingListEntry{}, ""))
	assert.Zero(t, testhelpers.CountRows(t, db, &models.IngredientInRecipe{}, ""))
	require.NoError(t, users.DeleteUser(ctx, author.ID))
}
