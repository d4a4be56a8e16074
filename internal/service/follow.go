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

// FollowService manages subscriptions between users and authors
type FollowService struct {
	db     *gorm.DB
	images storage.ImageStore
}

func NewFollowService(db *gorm.DB, images storage.ImageStore) *FollowService {
	return &FollowService{db: db, images: images}
}

func (s *FollowService) loadAuthor(ctx context.Context, authorID uuid.UUID) (*models.User, error) {
	var author models.User
	if err := s.db.WithContext(ctx).First(&author, "id = ?", authorID).Error; err != nil {
		return nil, notFound(err, "author")
	}
	return &author, nil
}

// Subscribe makes userID follow authorID and returns the author's subscription card
func (s *FollowService) Subscribe(ctx context.Context, userID, authorID uuid.UUID, recipesLimit int) (*types.SubscriptionResponse, error) {
	author, err := s.loadAuthor(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if userID == authorID {
		return nil, NewValidationError("author", "you cannot subscribe to yourself")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check subscription: %w", err)
	}
	if count > 0 {
		return nil, NewValidationError("author", "already subscribed to this author")
	}

	if err := s.db.WithContext(ctx).Create(&models.Follow{UserID: userID, AuthorID: authorID}).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, NewValidationError("author", "already subscribed to this author")
		}
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	metrics.RecordMark("follow", "add")

	cards, err := s.subscriptionCards(ctx, []models.User{*author}, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &cards[0], nil
}

// Unsubscribe removes the follow; a missing pair is ErrNotFound
func (s *FollowService) Unsubscribe(ctx context.Context, userID, authorID uuid.UUID) error {
	if _, err := s.loadAuthor(ctx, authorID); err != nil {
		return err
	}

	result := s.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&models.Follow{})
	if result.Error != nil {
		return fmt.Errorf("failed to unsubscribe: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("subscription: %w", ErrNotFound)
	}

	metrics.RecordMark("follow", "remove")
	return nil
}

// ListSubscriptions returns one page of the authors userID follows, each with
// up to recipesLimit newest recipes and the author's recipe count
func (s *FollowService) ListSubscriptions(ctx context.Context, userID uuid.UUID, page types.Pagination, recipesLimit int) ([]types.SubscriptionResponse, int64, error) {
	query := func() *gorm.DB {
		return s.db.WithContext(ctx).Model(&models.User{}).
			Joins("JOIN follows ON follows.author_id = users.id").
			Where("follows.user_id = ?", userID)
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count subscriptions: %w", err)
	}
	if total == 0 {
		return []types.SubscriptionResponse{}, 0, nil
	}

	var authors []models.User
	if err := query().
		Order("follows.id").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&authors).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	cards, err := s.subscriptionCards(ctx, authors, recipesLimit)
	if err != nil {
		return nil, 0, err
	}
	return cards, total, nil
}

// subscriptionCards builds cards for authors the requester follows
func (s *FollowService) subscriptionCards(ctx context.Context, authors []models.User, recipesLimit int) ([]types.SubscriptionResponse, error) {
	authorIDs := make([]uuid.UUID, 0, len(authors))
	for _, a := range authors {
		authorIDs = append(authorIDs, a.ID)
	}

	var counts []struct {
		AuthorID uuid.UUID
		Count    int64
	}
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Select("author_id, COUNT(*) AS count").
		Where("author_id IN ?", authorIDs).
		Group("author_id").
		Scan(&counts).Error; err != nil {
		return nil, fmt.Errorf("failed to count recipes: %w", err)
	}
	countByAuthor := make(map[uuid.UUID]int64, len(counts))
	for _, c := range counts {
		countByAuthor[c.AuthorID] = c.Count
	}

	cards := make([]types.SubscriptionResponse, 0, len(authors))
	for _, author := range authors {
		preview := []types.RecipeShortResponse{}
		if recipesLimit > 0 && countByAuthor[author.ID] > 0 {
			var recipes []models.Recipe
			if err := s.db.WithContext(ctx).
				Where("author_id = ?", author.ID).
				Order("pub_date DESC").
				Limit(recipesLimit).
				Find(&recipes).Error; err != nil {
				return nil, fmt.Errorf("failed to load recipes: %w", err)
			}
			for _, r := range recipes {
				preview = append(preview, recipeShortView(s.images, r))
			}
		}

		cards = append(cards, types.SubscriptionResponse{
			UserResponse: userView(author, true),
			Recipes:      preview,
			RecipesCount: countByAuthor[author.ID],
		})
	}
	return cards, nil
}
