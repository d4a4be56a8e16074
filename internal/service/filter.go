package service

import (
	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/models"
	"gorm.io/gorm"
)

// RecipeFilter holds the recipe list query parameters. Author is the raw
// user id as received; a value that does not parse matches nothing.
type RecipeFilter struct {
	Tags             []string
	Author           string
	IsFavorited      bool
	IsInShoppingCart bool
}

// Scope narrows a recipes query for the viewer. base is used to build the
// sub-queries and must not carry conditions of its own.
func (f RecipeFilter) Scope(base *gorm.DB, viewer *uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if len(f.Tags) > 0 {
			tagged := base.Table("recipe_tags").
				Select("recipe_tags.recipe_id").
				Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
				Where("tags.slug IN ?", f.Tags)
			q = q.Where("recipes.id IN (?)", tagged)
		}

		if f.Author != "" {
			authorID, err := uuid.Parse(f.Author)
			if err != nil {
				return matchNothing(q)
			}
			q = q.Where("recipes.author_id = ?", authorID)
		}

		if f.IsFavorited {
			if viewer == nil {
				return matchNothing(q)
			}
			q = q.Where("recipes.id IN (?)", base.Model(&models.Favorite{}).
				Select("recipe_id").Where("user_id = ?", *viewer))
		}

		if f.IsInShoppingCart {
			if viewer == nil {
				return matchNothing(q)
			}
			q = q.Where("recipes.id IN (?)", base.Model(&models.ShoppingListEntry{}).
				Select("recipe_id").Where("user_id = ?", *viewer))
		}

		return q
	}
}

func matchNothing(q *gorm.DB) *gorm.DB {
	return q.Where("1 = 0")
}
