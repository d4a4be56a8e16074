package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		ServerHost:            "localhost",
		ServerPort:            "8080",
		CORSOrigins:           []string{"*"},
		JWTSecret:             "test-secret",
		TokenTTL:              time.Hour,
		MinCookingTime:        1,
		MinIngredientAmount:   1,
		PageSize:              6,
		MaxPageSize:           100,
		SubscriptionsPageSize: 10,
		RecipesPreviewLimit:   3,
		ReportFooter:          "FoodGram",
		RecipeCreateLimit:     30,
		RecipeCreateWindow:    time.Hour,
		ImageStorage:          "local",
		MediaDir:              t.TempDir(),
		MediaURL:              "/media",
	}
}

type client struct {
	t      *testing.T
	router *gin.Engine
	token  string
}

func (c *client) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)
	return w
}

func (c *client) login(email string) {
	c.t.Helper()
	w := c.do(http.MethodPost, "/api/v1/auth/token/login", types.LoginRequest{Email: email, Password: testhelpers.TestPassword})
	require.Equal(c.t, http.StatusOK, w.Code, w.Body.String())
	var resp types.TokenResponse
	require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &resp))
	c.token = resp.AuthToken
}

func setup(t *testing.T) (*Server, *gorm.DB) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig(t)
	db := testhelpers.SetupSQLite(t)
	images := testhelpers.NewImageStore(t)
	return New(cfg, db, nil, images), db
}

func TestNew(t *testing.T) {
	srv, _ := setup(t)
	assert.NotNil(t, srv)

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")

	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRecipeLifecycle(t *testing.T) {
	srv, db := setup(t)
	author := testhelpers.CreateTestUser(t, db, "author")
	reader := testhelpers.CreateTestUser(t, db, "reader")
	tag := testhelpers.CreateTestTag(t, db, "Breakfast", "breakfast")
	flour := testhelpers.CreateTestIngredient(t, db, "flour", "g")
	milk := testhelpers.CreateTestIngredient(t, db, "milk", "ml")

	authorClient := &client{t: t, router: srv.Router()}
	authorClient.login(author.Email)

	body := map[string]interface{}{
		"ingredients":  []map[string]interface{}{{"id": flour.ID, "amount": 100}, {"id": milk.ID, "amount": 200}},
		"tags":         []uint{tag.ID},
		"image":        testhelpers.PNGDataURI,
		"name":         "Pancakes",
		"text":         "Whisk and fry.",
		"cooking_time": 15,
	}
	w := authorClient.do(http.MethodPost, "/api/v1/recipes", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created types.RecipeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "Pancakes", created.Name)
	assert.True(t, strings.HasPrefix(created.Image, "/media/recipes/images/"))
	assert.Len(t, created.Ingredients, 2)
	require.Len(t, created.Tags, 1)
	assert.Equal(t, "breakfast", created.Tags[0].Slug)

	// The stored image is served from the media directory
	imgResp := httptest.NewRecorder()
	srv.Router().ServeHTTP(imgResp, httptest.NewRequest(http.MethodGet, created.Image, nil))
	assert.Equal(t, http.StatusOK, imgResp.Code)

	readerClient := &client{t: t, router: srv.Router()}
	readerClient.login(reader.Email)
	recipePath := "/api/v1/recipes/" + created.ID.String()

	// Only the author may edit
	w = readerClient.do(http.MethodPatch, recipePath, body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	require.Equal(t, http.StatusCreated, readerClient.do(http.MethodPost, recipePath+"/favorite", nil).Code)
	assert.Equal(t, http.StatusBadRequest, readerClient.do(http.MethodPost, recipePath+"/favorite", nil).Code)
	require.Equal(t, http.StatusCreated, readerClient.do(http.MethodPost, recipePath+"/shopping_cart", nil).Code)

	w = readerClient.do(http.MethodGet, "/api/v1/recipes?is_favorited=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page types.Page[types.RecipeResponse]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.Equal(t, int64(1), page.Count)
	assert.True(t, page.Results[0].IsFavorited)
	assert.True(t, page.Results[0].IsInShoppingCart)

	w = readerClient.do(http.MethodGet, "/api/v1/recipes/download_shopping_cart", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "flour - 100 g")
	assert.Contains(t, w.Body.String(), "milk - 200 ml")
	assert.Contains(t, w.Body.String(), fmt.Sprintf("FoodGram, %d", time.Now().Year()))

	// Anonymous readers see the recipe without personal flags
	anonymous := &client{t: t, router: srv.Router()}
	w = anonymous.do(http.MethodGet, recipePath, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"is_favorited":false`)

	// The author cannot leave while their recipe exists
	assert.Equal(t, http.StatusConflict, authorClient.do(http.MethodDelete, "/api/v1/users/me", nil).Code)

	assert.Equal(t, http.StatusNoContent, authorClient.do(http.MethodDelete, recipePath, nil).Code)
	assert.Equal(t, http.StatusNotFound, anonymous.do(http.MethodGet, recipePath, nil).Code)
	assert.Zero(t, testhelpers.CountRows(t, db, &models.Favorite{}, ""))
	assert.Zero(t, testhelpers.CountRows(t, db, &models.ShoppingListEntry{}, ""))
	assert.Zero(t, testhelpers.CountRows(t, db, &models.IngredientInRecipe{}, ""))

	assert.Equal(t, http.StatusNoContent, authorClient.do(http.MethodDelete, "/api/v1/users/me", nil).Code)
}

func TestSubscriptionsFlow(t *testing.T) {
	srv, db := setup(t)
	author := testhelpers.CreateTestUser(t, db, "author")
	follower := testhelpers.CreateTestUser(t, db, "follower")
	for i := 0; i < 4; i++ {
		testhelpers.CreateTestRecipe(t, db, author, fmt.Sprintf("dish-%d", i), nil)
	}

	c := &client{t: t, router: srv.Router()}
	c.login(follower.Email)

	subscribePath := "/api/v1/users/" + author.ID.String() + "/subscribe"
	w := c.do(http.MethodPost, subscribePath+"?recipes_limit=2", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var card types.SubscriptionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &card))
	assert.True(t, card.IsSubscribed)
	assert.Equal(t, int64(4), card.RecipesCount)
	assert.Len(t, card.Recipes, 2)

	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodPost, subscribePath, nil).Code)
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodPost, "/api/v1/users/"+follower.ID.String()+"/subscribe", nil).Code)

	w = c.do(http.MethodGet, "/api/v1/users/subscriptions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page types.Page[types.SubscriptionResponse]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.Equal(t, int64(1), page.Count)
	assert.Len(t, page.Results[0].Recipes, 3)

	assert.Equal(t, http.StatusNoContent, c.do(http.MethodDelete, subscribePath, nil).Code)
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodDelete, subscribePath, nil).Code)
}

func TestLogoutRevokesToken(t *testing.T) {
	srv, db := setup(t)
	user := testhelpers.CreateTestUser(t, db, "cook")

	c := &client{t: t, router: srv.Router()}
	c.login(user.Email)

	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/v1/users/me", nil).Code)
	require.Equal(t, http.StatusNoContent, c.do(http.MethodPost, "/api/v1/auth/token/logout", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodGet, "/api/v1/users/me", nil).Code)
}

func TestRegisterThenLogin(t *testing.T) {
	srv, _ := setup(t)
	c := &client{t: t, router: srv.Router()}

	w := c.do(http.MethodPost, "/api/v1/users", types.RegisterRequest{
		Email:     "New.Cook@Example.com",
		Username:  "newcook",
		FirstName: "New",
		LastName:  "Cook",
		Password:  testhelpers.TestPassword,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"email":"new.cook@example.com"`)

	c.login("new.cook@example.com")
	assert.NotEmpty(t, c.token)
}
