package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/storage"
	"github.com/pageza/foodgram/backend/internal/types"
	"gorm.io/gorm"
)

func tagView(t models.Tag) types.TagResponse {
	return types.TagResponse{ID: t.ID, Name: t.Name, Color: t.Color, Slug: t.Slug}
}

func ingredientView(i models.Ingredient) types.IngredientResponse {
	return types.IngredientResponse{ID: i.ID, Name: i.Name, MeasurementUnit: i.MeasurementUnit}
}

func userView(u models.User, subscribed bool) types.UserResponse {
	return types.UserResponse{
		Email:        u.Email,
		ID:           u.ID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
	}
}

func recipeShortView(images storage.ImageStore, r models.Recipe) types.RecipeShortResponse {
	return types.RecipeShortResponse{
		ID:          r.ID,
		Name:        r.Name,
		Image:       images.URL(r.Image),
		CookingTime: r.CookingTime,
	}
}

// subscribedTo returns which of authorIDs the viewer follows
func subscribedTo(ctx context.Context, db *gorm.DB, viewer *uuid.UUID, authorIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	set := make(map[uuid.UUID]bool)
	if viewer == nil || len(authorIDs) == 0 {
		return set, nil
	}

	var ids []uuid.UUID
	err := db.WithContext(ctx).Model(&models.Follow{}).
		Where("user_id = ? AND author_id IN ?", *viewer, authorIDs).
		Pluck("author_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load subscriptions: %w", err)
	}
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// markedBy returns which of recipeIDs the viewer has in the given mark model
func markedBy(ctx context.Context, db *gorm.DB, model interface{}, viewer *uuid.UUID, recipeIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	set := make(map[uuid.UUID]bool)
	if viewer == nil || len(recipeIDs) == 0 {
		return set, nil
	}

	var ids []uuid.UUID
	err := db.WithContext(ctx).Model(model).
		Where("user_id = ? AND recipe_id IN ?", *viewer, recipeIDs).
		Pluck("recipe_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load recipe marks: %w", err)
	}
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// preloadRecipe loads everything the full recipe representation needs
func preloadRecipe(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB {
			return db.Order("tags.name")
		}).
		Preload("IngredientAmounts", func(db *gorm.DB) *gorm.DB {
			return db.Order("ingredient_in_recipes.id")
		}).
		Preload("IngredientAmounts.Ingredient")
}

// recipeViews shapes preloaded recipes for the viewer
func recipeViews(ctx context.Context, db *gorm.DB, images storage.ImageStore, viewer *uuid.UUID, recipes []models.Recipe) ([]types.RecipeResponse, error) {
	recipeIDs := make([]uuid.UUID, 0, len(recipes))
	authorIDs := make([]uuid.UUID, 0, len(recipes))
	for _, r := range recipes {
		recipeIDs = append(recipeIDs, r.ID)
		authorIDs = append(authorIDs, r.AuthorID)
	}

	subscribed, err := subscribedTo(ctx, db, viewer, authorIDs)
	if err != nil {
		return nil, err
	}
	favorited, err := markedBy(ctx, db, &models.Favorite{}, viewer, recipeIDs)
	if err != nil {
		return nil, err
	}
	inCart, err := markedBy(ctx, db, &models.ShoppingListEntry{}, viewer, recipeIDs)
	if err != nil {
		return nil, err
	}

	views := make([]types.RecipeResponse, 0, len(recipes))
	for _, r := range recipes {
		tags := make([]types.TagResponse, 0, len(r.Tags))
		for _, t := range r.Tags {
			tags = append(tags, tagView(t))
		}
		ingredients := make([]types.RecipeIngredientResponse, 0, len(r.IngredientAmounts))
		for _, ia := range r.IngredientAmounts {
			ingredients = append(ingredients, types.RecipeIngredientResponse{
				ID:              ia.IngredientID,
				Name:            ia.Ingredient.Name,
				MeasurementUnit: ia.Ingredient.MeasurementUnit,
				Amount:          ia.Amount,
			})
		}
		views = append(views, types.RecipeResponse{
			ID:               r.ID,
			Tags:             tags,
			Author:           userView(r.Author, subscribed[r.AuthorID]),
			Ingredients:      ingredients,
			IsFavorited:      favorited[r.ID],
			IsInShoppingCart: inCart[r.ID],
			Name:             r.Name,
			Image:            images.URL(r.Image),
			Text:             r.Text,
			CookingTime:      r.CookingTime,
		})
	}
	return views, nil
}
