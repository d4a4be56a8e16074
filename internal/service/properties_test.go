package service_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

// TestValidateIngredientsProperty checks that a list is accepted exactly when
// it is non-empty, has no repeated id and every amount meets the floor
func TestValidateIngredientsProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("accepts only valid ingredient lists", prop.ForAll(
		func(ids []uint, amounts []int, minAmount int) bool {
			n := len(ids)
			if len(amounts) < n {
				n = len(amounts)
			}
			items := make([]types.RecipeIngredientInput, 0, n)
			for i := 0; i < n; i++ {
				items = append(items, types.RecipeIngredientInput{ID: ids[i], Amount: amounts[i]})
			}

			floor := minAmount
			if floor < 1 {
				floor = 1
			}
			valid := len(items) > 0
			seen := make(map[uint]bool)
			for _, item := range items {
				if seen[item.ID] || item.Amount < floor {
					valid = false
				}
				seen[item.ID] = true
			}

			err := service.ValidateIngredients(items, minAmount)
			return valid == (err == nil)
		},
		gen.SliceOf(gen.UIntRange(1, 6)),
		gen.SliceOf(gen.IntRange(-3, 12)),
		gen.IntRange(-1, 5),
	))

	properties.TestingRun(t)
}

// TestRenderShoppingListProperty checks the line layout of the shopping list
func TestRenderShoppingListProperty(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("one line per item followed by the footer", prop.ForAll(
		func(names []string, totals []int64, year int) bool {
			n := len(names)
			if len(totals) < n {
				n = len(totals)
			}
			items := make([]types.ShoppingListItem, 0, n)
			for i := 0; i < n; i++ {
				items = append(items, types.ShoppingListItem{Name: names[i], MeasurementUnit: "g", Total: totals[i]})
			}

			lines := strings.Split(service.RenderShoppingList(items, "FoodGram", year), "\n")
			footer := fmt.Sprintf("FoodGram, %d", year)
			if n == 0 {
				// An empty list keeps the blank line before the footer
				return len(lines) == 2 && lines[0] == "" && lines[1] == footer
			}
			if len(lines) != n+1 {
				return false
			}
			for i, item := range items {
				if lines[i] != fmt.Sprintf("%s - %d g", item.Name, item.Total) {
					return false
				}
			}
			return lines[n] == footer
		},
		gen.SliceOf(gen.AlphaString()),
		gen.SliceOf(gen.Int64Range(1, 100000)),
		gen.IntRange(2000, 2100),
	))

	properties.TestingRun(t)
}

// TestShoppingListSumsProperty checks that the aggregated total of each
// ingredient equals the sum of its amounts over the recipes in the cart
func TestShoppingListSumsProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20
	parameters.MaxSize = 8
	properties := gopter.NewProperties(parameters)

	properties.Property("totals are sums over the cart", prop.ForAll(
		func(recipes [][]int) bool {
			db := testhelpers.SetupSQLite(t)
			ctx := context.Background()
			cart := service.NewShoppingCartService(db, testhelpers.NewImageStore(t), "FoodGram")

			author := testhelpers.CreateTestUser(t, db, "author")
			ingredients := []*models.Ingredient{
				testhelpers.CreateTestIngredient(t, db, "flour", "g"),
				testhelpers.CreateTestIngredient(t, db, "milk", "ml"),
				testhelpers.CreateTestIngredient(t, db, "salt", "g"),
			}

			expected := make(map[string]int64)
			for i, amounts := range recipes {
				var rows []testhelpers.Amount
				for j, amount := range amounts {
					if j >= len(ingredients) {
						break
					}
					rows = append(rows, testhelpers.Amount{Ingredient: ingredients[j], Value: amount})
					expected[ingredients[j].Name] += int64(amount)
				}
				recipe := testhelpers.CreateTestRecipe(t, db, author, fmt.Sprintf("recipe-%d", i), nil, rows...)
				if _, err := cart.AddToCart(ctx, author.ID, recipe.ID); err != nil {
					return false
				}
			}

			items, err := cart.ShoppingList(ctx, author.ID)
			if err != nil || len(items) != len(expected) {
				return false
			}
			for _, item := range items {
				if item.Total != expected[item.Name] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.SliceOf(gen.IntRange(1, 500))),
	))

	properties.TestingRun(t)
}
