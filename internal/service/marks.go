package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/storage"
	"github.com/pageza/foodgram/backend/internal/types"
	"gorm.io/gorm"
)

// recipeMarks manages one kind of unique (user, recipe) pair
type recipeMarks struct {
	db     *gorm.DB
	images storage.ImageStore
	kind   string
	label  string
	model  func() interface{}
	newRow func(userID, recipeID uuid.UUID) interface{}
}

func (m *recipeMarks) loadRecipe(ctx context.Context, recipeID uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := m.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		return nil, notFound(err, "recipe")
	}
	return &recipe, nil
}

func (m *recipeMarks) duplicate() error {
	return NewValidationError("recipe", fmt.Sprintf("recipe is already in %s", m.label))
}

func (m *recipeMarks) add(ctx context.Context, userID, recipeID uuid.UUID) (*types.RecipeShortResponse, error) {
	recipe, err := m.loadRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	var count int64
	if err := m.db.WithContext(ctx).Model(m.model()).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check %s: %w", m.label, err)
	}
	if count > 0 {
		return nil, m.duplicate()
	}

	if err := m.db.WithContext(ctx).Create(m.newRow(userID, recipeID)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, m.duplicate()
		}
		return nil, fmt.Errorf("failed to add recipe to %s: %w", m.label, err)
	}

	metrics.RecordMark(m.kind, "add")
	view := recipeShortView(m.images, *recipe)
	return &view, nil
}

func (m *recipeMarks) remove(ctx context.Context, userID, recipeID uuid.UUID) error {
	if _, err := m.loadRecipe(ctx, recipeID); err != nil {
		return err
	}

	result := m.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(m.model())
	if result.Error != nil {
		return fmt.Errorf("failed to remove recipe from %s: %w", m.label, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("recipe is not in %s: %w", m.label, ErrNotFound)
	}

	metrics.RecordMark(m.kind, "remove")
	return nil
}

// FavoriteService manages the user's favorite recipes
type FavoriteService struct {
	marks recipeMarks
}

func NewFavoriteService(db *gorm.DB, images storage.ImageStore) *FavoriteService {
	return &FavoriteService{marks: recipeMarks{
		db:     db,
		images: images,
		kind:   "favorite",
		label:  "favorites",
		model:  func() interface{} { return &models.Favorite{} },
		newRow: func(userID, recipeID uuid.UUID) interface{} {
			return &models.Favorite{UserID: userID, RecipeID: recipeID}
		},
	}}
}

func (s *FavoriteService) AddFavorite(ctx context.Context, userID, recipeID uuid.UUID) (*types.RecipeShortResponse, error) {
	return s.marks.add(ctx, userID, recipeID)
}

func (s *FavoriteService) RemoveFavorite(ctx context.Context, userID, recipeID uuid.UUID) error {
	return s.marks.remove(ctx, userID, recipeID)
}
