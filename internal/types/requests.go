package types

// RecipeIngredientInput is one {id, amount} pair of a recipe write
type RecipeIngredientInput struct {
	ID     uint `json:"id" binding:"required"`
	Amount int  `json:"amount"`
}

// RecipeRequest is the body of POST /recipes and PATCH /recipes/:id.
// Image is a base64 data URI; on update an empty image keeps the stored one.
type RecipeRequest struct {
	Ingredients []RecipeIngredientInput `json:"ingredients" binding:"required,dive"`
	Tags        []uint                  `json:"tags"`
	Image       string                  `json:"image"`
	Name        string                  `json:"name" binding:"required,max=50"`
	Text        string                  `json:"text" binding:"required,max=1000"`
	CookingTime int                     `json:"cooking_time"`
}

type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email,max=254"`
	Username  string `json:"username" binding:"required,max=150"`
	FirstName string `json:"first_name" binding:"required,max=150"`
	LastName  string `json:"last_name" binding:"required,max=150"`
	Password  string `json:"password" binding:"required,min=8,max=150"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type SetPasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=150"`
}

// TagInput is one entry of the tag seed file
type TagInput struct {
	Name  string `json:"name" validate:"required,max=50"`
	Color string `json:"color" validate:"required,max=7,hexcolor"`
	Slug  string `json:"slug" validate:"required,max=50,slug"`
}

// IngredientInput is one entry of the ingredient seed file
type IngredientInput struct {
	Name            string `json:"name" validate:"required,max=200"`
	MeasurementUnit string `json:"measurement_unit" validate:"required,max=20"`
}

// Pagination carries the requested page window
type Pagination struct {
	Page  int
	Limit int
}

// Offset returns the number of rows to skip
func (p Pagination) Offset() int {
	if p.Page < 1 || p.Limit < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}
