package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/recipes", "200"))
	RecordAPIRequest("GET", "/api/v1/recipes", 200, 15*time.Millisecond)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/recipes", "200"))
	assert.Equal(t, before+1, after)
}

func TestDomainCounters(t *testing.T) {
	tests := []struct {
		name   string
		record func()
		read   func() float64
	}{
		{
			name:   "recipe create",
			record: func() { RecordRecipeWrite("create") },
			read:   func() float64 { return testutil.ToFloat64(RecipesWritten.WithLabelValues("create")) },
		},
		{
			name:   "favorite add",
			record: func() { RecordMark("favorite", "add") },
			read:   func() float64 { return testutil.ToFloat64(MarksChanged.WithLabelValues("favorite", "add")) },
		},
		{
			name:   "shopping list download",
			record: RecordShoppingListDownload,
			read:   func() float64 { return testutil.ToFloat64(ShoppingListDownloads) },
		},
		{
			name:   "rate limit rejection",
			record: func() { RecordRateLimitRejection("recipe_create") },
			read:   func() float64 { return testutil.ToFloat64(RateLimitRejections.WithLabelValues("recipe_create")) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.read()
			tt.record()
			assert.Equal(t, before+1, tt.read())
		})
	}
}
