package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/storage"
	"github.com/pageza/foodgram/backend/internal/types"
	"gorm.io/gorm"
)

// RecipeRules are the configured lower bounds for recipe fields
type RecipeRules struct {
	MinCookingTime      int
	MinIngredientAmount int
}

// RecipeService handles recipe operations
type RecipeService struct {
	db     *gorm.DB
	images storage.ImageStore
	rules  RecipeRules
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB, images storage.ImageStore, rules RecipeRules) *RecipeService {
	return &RecipeService{
		db:     db,
		images: images,
		rules:  rules,
	}
}

// ValidateIngredients checks the submitted ingredient list: at least one
// entry, no repeated id and every amount at or above the floor (never below 1)
func ValidateIngredients(items []types.RecipeIngredientInput, minAmount int) error {
	v := &ValidationError{}
	checkIngredients(v, items, minAmount)
	return v.OrNil()
}

func checkIngredients(v *ValidationError, items []types.RecipeIngredientInput, minAmount int) {
	if minAmount < 1 {
		minAmount = 1
	}
	if len(items) == 0 {
		v.Add("ingredients", "at least one ingredient is required")
		return
	}

	seen := make(map[uint]bool, len(items))
	for _, item := range items {
		if seen[item.ID] {
			v.Add("ingredients", fmt.Sprintf("ingredient %d is listed more than once", item.ID))
		}
		seen[item.ID] = true
		if item.Amount < minAmount {
			v.Add("ingredients", fmt.Sprintf("amount of ingredient %d must be at least %d", item.ID, minAmount))
		}
	}
}

// recipeInput is a validated write request
type recipeInput struct {
	req   *types.RecipeRequest
	tags  []models.Tag
	image *storage.Image
}

func (s *RecipeService) validate(ctx context.Context, req *types.RecipeRequest, requireImage bool) (*recipeInput, error) {
	v := &ValidationError{}
	in := &recipeInput{req: req}

	checkIngredients(v, req.Ingredients, s.rules.MinIngredientAmount)

	minCookingTime := s.rules.MinCookingTime
	if minCookingTime < 1 {
		minCookingTime = 1
	}
	if req.CookingTime < minCookingTime {
		v.Add("cooking_time", fmt.Sprintf("must be at least %d", minCookingTime))
	}

	if strings.TrimSpace(req.Name) == "" {
		v.Add("name", "must not be blank")
	}
	if strings.TrimSpace(req.Text) == "" {
		v.Add("text", "must not be blank")
	}

	switch {
	case req.Image != "":
		img, err := storage.DecodeDataURI(req.Image)
		if err != nil {
			v.Add("image", err.Error())
		}
		in.image = img
	case requireImage:
		v.Add("image", "is required")
	}

	tagIDs := uniqueIDs(req.Tags)
	if len(tagIDs) > 0 {
		if err := s.db.WithContext(ctx).Where("id IN ?", tagIDs).Order("name").Find(&in.tags).Error; err != nil {
			return nil, fmt.Errorf("failed to load tags: %w", err)
		}
		if len(in.tags) != len(tagIDs) {
			found := make(map[uint]bool, len(in.tags))
			for _, t := range in.tags {
				found[t.ID] = true
			}
			for _, id := range tagIDs {
				if !found[id] {
					v.Add("tags", fmt.Sprintf("tag %d does not exist", id))
				}
			}
		}
	}

	if err := v.OrNil(); err != nil {
		return nil, err
	}

	ingredientIDs := make([]uint, 0, len(req.Ingredients))
	for _, item := range req.Ingredients {
		ingredientIDs = append(ingredientIDs, item.ID)
	}
	var existing []uint
	if err := s.db.WithContext(ctx).Model(&models.Ingredient{}).Where("id IN ?", ingredientIDs).Pluck("id", &existing).Error; err != nil {
		return nil, fmt.Errorf("failed to load ingredients: %w", err)
	}
	if len(existing) != len(ingredientIDs) {
		found := make(map[uint]bool, len(existing))
		for _, id := range existing {
			found[id] = true
		}
		for _, id := range ingredientIDs {
			if !found[id] {
				return nil, fmt.Errorf("ingredient %d: %w", id, ErrNotFound)
			}
		}
	}

	return in, nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func ingredientRows(recipeID uuid.UUID, items []types.RecipeIngredientInput) []models.IngredientInRecipe {
	rows := make([]models.IngredientInRecipe, 0, len(items))
	for _, item := range items {
		rows = append(rows, models.IngredientInRecipe{
			RecipeID:     recipeID,
			IngredientID: item.ID,
			Amount:       item.Amount,
		})
	}
	return rows
}

// storeImage writes a decoded image and returns its key; no image yields ""
func (s *RecipeService) storeImage(ctx context.Context, img *storage.Image) (string, error) {
	if img == nil {
		return "", nil
	}
	key := storage.NewImageKey(img.Extension)
	if err := s.images.Save(ctx, key, img.Data, img.ContentType); err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}
	return key, nil
}

// discardImage removes an image that is no longer referenced
func (s *RecipeService) discardImage(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.images.Delete(ctx, key); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("image", key).Msg("failed to remove image")
	}
}

// CreateRecipe validates the request and stores the recipe with its tags and
// ingredient amounts in one transaction
func (s *RecipeService) CreateRecipe(ctx context.Context, authorID uuid.UUID, req *types.RecipeRequest) (*types.RecipeResponse, error) {
	in, err := s.validate(ctx, req, true)
	if err != nil {
		return nil, err
	}

	imageKey, err := s.storeImage(ctx, in.image)
	if err != nil {
		return nil, err
	}

	recipe := &models.Recipe{
		AuthorID:    authorID,
		Name:        req.Name,
		Image:       imageKey,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		Tags:        in.tags,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Tags.*").Create(recipe).Error; err != nil {
			return err
		}
		return tx.CreateInBatches(ingredientRows(recipe.ID, req.Ingredients), 100).Error
	})
	if err != nil {
		s.discardImage(ctx, imageKey)
		return nil, fmt.Errorf("failed to create recipe: %w", err)
	}

	metrics.RecordRecipeWrite("create")
	logging.Ctx(ctx).Info().Str("recipe_id", recipe.ID.String()).Msg("recipe created")

	return s.GetRecipe(ctx, &authorID, recipe.ID)
}

// loadForWrite returns the recipe if actorID may modify it
func (s *RecipeService) loadForWrite(ctx context.Context, actorID, recipeID uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		return nil, notFound(err, "recipe")
	}
	if recipe.AuthorID == actorID {
		return &recipe, nil
	}

	var actor models.User
	if err := s.db.WithContext(ctx).First(&actor, "id = ?", actorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrForbidden
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !actor.IsAdmin {
		return nil, ErrForbidden
	}
	return &recipe, nil
}

// UpdateRecipe replaces the recipe's fields, tags and ingredient set. The
// stored image is kept unless a new one is supplied.
func (s *RecipeService) UpdateRecipe(ctx context.Context, actorID, recipeID uuid.UUID, req *types.RecipeRequest) (*types.RecipeResponse, error) {
	recipe, err := s.loadForWrite(ctx, actorID, recipeID)
	if err != nil {
		return nil, err
	}

	in, err := s.validate(ctx, req, false)
	if err != nil {
		return nil, err
	}

	imageKey, err := s.storeImage(ctx, in.image)
	if err != nil {
		return nil, err
	}
	oldImage := recipe.Image

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.IngredientInRecipe{}).Error; err != nil {
			return err
		}
		if err := tx.CreateInBatches(ingredientRows(recipe.ID, req.Ingredients), 100).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{
			"name":         req.Name,
			"text":         req.Text,
			"cooking_time": req.CookingTime,
		}
		if imageKey != "" {
			updates["image"] = imageKey
		}
		if err := tx.Model(recipe).Updates(updates).Error; err != nil {
			return err
		}

		tags := tx.Model(recipe).Association("Tags")
		if len(in.tags) == 0 {
			return tags.Clear()
		}
		return tags.Replace(in.tags)
	})
	if err != nil {
		s.discardImage(ctx, imageKey)
		return nil, fmt.Errorf("failed to update recipe: %w", err)
	}

	if imageKey != "" {
		s.discardImage(ctx, oldImage)
	}

	metrics.RecordRecipeWrite("update")
	return s.GetRecipe(ctx, &actorID, recipe.ID)
}

// DeleteRecipe removes the recipe with its ingredient amounts, tag links,
// favorites and shopping cart entries
func (s *RecipeService) DeleteRecipe(ctx context.Context, actorID, recipeID uuid.UUID) error {
	recipe, err := s.loadForWrite(ctx, actorID, recipeID)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, dependent := range []interface{}{
			&models.IngredientInRecipe{},
			&models.Favorite{},
			&models.ShoppingListEntry{},
		} {
			if err := tx.Where("recipe_id = ?", recipe.ID).Delete(dependent).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(recipe).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(recipe).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}

	s.discardImage(ctx, recipe.Image)
	metrics.RecordRecipeWrite("delete")
	return nil
}

// GetRecipe returns the full representation of one recipe for the viewer
func (s *RecipeService) GetRecipe(ctx context.Context, viewer *uuid.UUID, id uuid.UUID) (*types.RecipeResponse, error) {
	var recipe models.Recipe
	if err := preloadRecipe(s.db.WithContext(ctx)).First(&recipe, "recipes.id = ?", id).Error; err != nil {
		return nil, notFound(err, "recipe")
	}

	views, err := recipeViews(ctx, s.db, s.images, viewer, []models.Recipe{recipe})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ListRecipes returns one page of recipes matching filter, newest first
func (s *RecipeService) ListRecipes(ctx context.Context, viewer *uuid.UUID, filter RecipeFilter, page types.Pagination) ([]types.RecipeResponse, int64, error) {
	base := s.db.WithContext(ctx)
	query := func() *gorm.DB {
		return base.Model(&models.Recipe{}).Scopes(filter.Scope(base, viewer))
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count recipes: %w", err)
	}
	if total == 0 {
		return []types.RecipeResponse{}, 0, nil
	}

	var recipes []models.Recipe
	err := preloadRecipe(query()).
		Order("recipes.pub_date DESC").
		Order("recipes.id").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&recipes).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list recipes: %w", err)
	}

	views, err := recipeViews(ctx, s.db, s.images, viewer, recipes)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}
