package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/storage"
	"github.com/pageza/foodgram/backend/internal/types"
	"gorm.io/gorm"
)

// ShoppingCartService manages the cart and renders the shopping list
type ShoppingCartService struct {
	db     *gorm.DB
	marks  recipeMarks
	footer string
	now    func() time.Time
}

func NewShoppingCartService(db *gorm.DB, images storage.ImageStore, footer string) *ShoppingCartService {
	return &ShoppingCartService{
		db: db,
		marks: recipeMarks{
			db:     db,
			images: images,
			kind:   "shopping_cart",
			label:  "the shopping cart",
			model:  func() interface{} { return &models.ShoppingListEntry{} },
			newRow: func(userID, recipeID uuid.UUID) interface{} {
				return &models.ShoppingListEntry{UserID: userID, RecipeID: recipeID}
			},
		},
		footer: footer,
		now:    time.Now,
	}
}

func (s *ShoppingCartService) AddToCart(ctx context.Context, userID, recipeID uuid.UUID) (*types.RecipeShortResponse, error) {
	return s.marks.add(ctx, userID, recipeID)
}

func (s *ShoppingCartService) RemoveFromCart(ctx context.Context, userID, recipeID uuid.UUID) error {
	return s.marks.remove(ctx, userID, recipeID)
}

// ShoppingList sums ingredient amounts over every recipe in the user's cart,
// grouped by (name, unit) and ordered by name
func (s *ShoppingCartService) ShoppingList(ctx context.Context, userID uuid.UUID) ([]types.ShoppingListItem, error) {
	var items []types.ShoppingListItem
	err := s.db.WithContext(ctx).
		Table("ingredient_in_recipes AS iir").
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, CAST(SUM(iir.amount) AS BIGINT) AS total").
		Joins("JOIN shopping_list_entries AS sle ON sle.recipe_id = iir.recipe_id").
		Joins("JOIN ingredients ON ingredients.id = iir.ingredient_id").
		Where("sle.user_id = ?", userID).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name, ingredients.measurement_unit").
		Scan(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate shopping list: %w", err)
	}
	return items, nil
}

// DownloadShoppingList renders the user's shopping list as plain text
func (s *ShoppingCartService) DownloadShoppingList(ctx context.Context, userID uuid.UUID) (string, error) {
	items, err := s.ShoppingList(ctx, userID)
	if err != nil {
		return "", err
	}
	metrics.RecordShoppingListDownload()
	return RenderShoppingList(items, s.footer, s.now().Year()), nil
}

// RenderShoppingList writes one "<name> - <total> <unit>" line per item
// followed by the "<footer>, <year>" line
func RenderShoppingList(items []types.ShoppingListItem, footer string, year int) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("%s - %d %s", item.Name, item.Total, item.MeasurementUnit))
	}
	return strings.Join(lines, "\n") + fmt.Sprintf("\n%s, %d", footer, year)
}
