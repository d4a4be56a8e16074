package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Recipe struct {
	ID                uuid.UUID            `gorm:"type:varchar(36);primarykey" json:"id"`
	PubDate           time.Time            `gorm:"autoCreateTime;index;not null" json:"pub_date"`
	UpdatedAt         time.Time            `json:"updated_at"`
	AuthorID          uuid.UUID            `gorm:"type:varchar(36);not null;index" json:"author_id"`
	Author            User                 `gorm:"foreignKey:AuthorID;constraint:OnDelete:RESTRICT" json:"author"`
	Name              string               `gorm:"size:50;not null" json:"name"`
	Image             string               `gorm:"size:255;not null" json:"image"`
	Text              string               `gorm:"size:1000;not null" json:"text"`
	CookingTime       int                  `gorm:"not null" json:"cooking_time"`
	Tags              []Tag                `gorm:"many2many:recipe_tags;constraint:OnDelete:CASCADE" json:"tags"`
	IngredientAmounts []IngredientInRecipe `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"ingredients"`
}

func (Recipe) TableName() string {
	return "recipes"
}

func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// IngredientInRecipe is the quantified link between a recipe and an ingredient
type IngredientInRecipe struct {
	ID           uint       `gorm:"primarykey" json:"-"`
	RecipeID     uuid.UUID  `gorm:"type:varchar(36);not null;uniqueIndex:idx_recipe_ingredient" json:"-"`
	IngredientID uint       `gorm:"not null;uniqueIndex:idx_recipe_ingredient;index" json:"id"`
	Ingredient   Ingredient `gorm:"foreignKey:IngredientID;constraint:OnDelete:CASCADE" json:"-"`
	Amount       int        `gorm:"not null" json:"amount"`
}

func (IngredientInRecipe) TableName() string {
	return "ingredient_in_recipes"
}

// Favorite marks a recipe as one of the user's favorites
type Favorite struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UserID    uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_favorites_user_recipe" json:"user_id"`
	RecipeID  uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_favorites_user_recipe;index" json:"recipe_id"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Recipe    Recipe    `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Favorite) TableName() string {
	return "favorites"
}

// ShoppingListEntry puts a recipe into the user's shopping cart
type ShoppingListEntry struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UserID    uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_shopping_list_user_recipe" json:"user_id"`
	RecipeID  uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_shopping_list_user_recipe;index" json:"recipe_id"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Recipe    Recipe    `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"-"`
}

func (ShoppingListEntry) TableName() string {
	return "shopping_list_entries"
}

// All lists every model in dependency order for AutoMigrate
func All() []interface{} {
	return []interface{}{
		&User{},
		&Tag{},
		&Ingredient{},
		&Recipe{},
		&IngredientInRecipe{},
		&Follow{},
		&Favorite{},
		&ShoppingListEntry{},
	}
}
