package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TagService reads and seeds tags
type TagService struct {
	db *gorm.DB
}

func NewTagService(db *gorm.DB) *TagService {
	return &TagService{db: db}
}

func (s *TagService) ListTags(ctx context.Context) ([]types.TagResponse, error) {
	var tags []models.Tag
	if err := s.db.WithContext(ctx).Order("name").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	views := make([]types.TagResponse, 0, len(tags))
	for _, t := range tags {
		views = append(views, tagView(t))
	}
	return views, nil
}

func (s *TagService) GetTag(ctx context.Context, id uint) (*types.TagResponse, error) {
	var tag models.Tag
	if err := s.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		return nil, notFound(err, "tag")
	}
	view := tagView(tag)
	return &view, nil
}

// ImportTags validates and inserts tags, skipping ones whose name or slug exists.
// It returns the number of inserted rows.
func (s *TagService) ImportTags(ctx context.Context, inputs []types.TagInput) (int64, error) {
	tags := make([]models.Tag, 0, len(inputs))
	for i := range inputs {
		if err := validateStruct(&inputs[i]); err != nil {
			return 0, fmt.Errorf("tag %q: %w", inputs[i].Name, err)
		}
		tags = append(tags, models.Tag{
			Name:  inputs[i].Name,
			Color: strings.ToUpper(inputs[i].Color),
			Slug:  inputs[i].Slug,
		})
	}
	if len(tags) == 0 {
		return 0, nil
	}

	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&tags)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to import tags: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// IngredientService reads and seeds ingredients
type IngredientService struct {
	db *gorm.DB
}

func NewIngredientService(db *gorm.DB) *IngredientService {
	return &IngredientService{db: db}
}

// SearchIngredients matches names containing query, case-insensitively
func (s *IngredientService) SearchIngredients(ctx context.Context, query string) ([]types.IngredientResponse, error) {
	q := s.db.WithContext(ctx).Order("name").Order("measurement_unit")
	if query = strings.TrimSpace(query); query != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(query)+"%")
	}

	var ingredients []models.Ingredient
	if err := q.Find(&ingredients).Error; err != nil {
		return nil, fmt.Errorf("failed to search ingredients: %w", err)
	}
	views := make([]types.IngredientResponse, 0, len(ingredients))
	for _, i := range ingredients {
		views = append(views, ingredientView(i))
	}
	return views, nil
}

func (s *IngredientService) GetIngredient(ctx context.Context, id uint) (*types.IngredientResponse, error) {
	var ingredient models.Ingredient
	if err := s.db.WithContext(ctx).First(&ingredient, id).Error; err != nil {
		return nil, notFound(err, "ingredient")
	}
	view := ingredientView(ingredient)
	return &view, nil
}

// ImportIngredients inserts ingredients, skipping existing (name, unit) pairs.
// It returns the number of inserted rows.
func (s *IngredientService) ImportIngredients(ctx context.Context, inputs []types.IngredientInput) (int64, error) {
	rows := make([]models.Ingredient, 0, len(inputs))
	for i := range inputs {
		if err := validateStruct(&inputs[i]); err != nil {
			return 0, fmt.Errorf("ingredient %q: %w", inputs[i].Name, err)
		}
		rows = append(rows, models.Ingredient{
			Name:            strings.TrimSpace(inputs[i].Name),
			MeasurementUnit: strings.TrimSpace(inputs[i].MeasurementUnit),
		})
	}
	if len(rows) == 0 {
		return 0, nil
	}

	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(&rows, 500)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to import ingredients: %w", result.Error)
	}
	return result.RowsAffected, nil
}
