package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/tareq-s/feedcraft/backend/internal/models"
	"github.com/tareq-s/feedcraft/backend/internal/repositories"
	"github.com/tareq-s/feedcraft/backend/internal/services"
	"go.uber.org/zap"
)

// RecommendationHandler serves the personalized feed and its statistics
type RecommendationHandler struct {
	feedService *services.FeedService
	postRepo    repositories.PostRepository
	userRepo    repositories.UserRepository
	feedRepo    repositories.PersonalizedFeedRepository
	log         *zap.SugaredLogger
}

// NewRecommendationHandler creates a new RecommendationHandler
func NewRecommendationHandler(
	feedService *services.FeedService,
	postRepo repositories.PostRepository,
	userRepo repositories.UserRepository,
	feedRepo repositories.PersonalizedFeedRepository,
	log *zap.SugaredLogger,
) *RecommendationHandler {
	return &RecommendationHandler{
		feedService: feedService,
		postRepo:    postRepo,
		userRepo:    userRepo,
		feedRepo:    feedRepo,
		log:         log.With("component", "recommendation_handler"),
	}
}

// RegisterRecommendationRoutes registers recommendation-related routes
func (h *RecommendationHandler) RegisterRecommendationRoutes(g *echo.Group) {
	g.GET("/recommendations", h.GetRecommendations)
	g.GET("/feeds/stats", h.GetFeedStatistics)
}

// GetRecommendations returns the ranked personalized feed for the current user
func (h *RecommendationHandler) GetRecommendations(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}

	count, _ := strconv.Atoi(c.QueryParam("count"))

	postIDs, err := h.feedService.GetRecommendations(c.Request().Context(), user.ID, count)
	if err != nil {
		// The service already degraded as far as it could; the caller gets an
		// empty feed rather than an error page.
		h.log.Errorw("recommendations unavailable", "user_id", user.ID, "error", err)
		postIDs = []string{}
	}

	posts, err := h.postRepo.GetPostsByIDs(c.Request().Context(), postIDs)
	if err != nil {
		h.log.Errorw("failed to load recommended posts", "user_id", user.ID, "error", err)
		posts = []models.Post{}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"post_ids": postIDs,
		"posts":    posts,
	})
}

// GetFeedStatistics returns total/valid/expired feed counts for monitoring
func (h *RecommendationHandler) GetFeedStatistics(c echo.Context) error {
	stats, err := h.feedRepo.GetFeedStatistics()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to collect feed statistics")
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *RecommendationHandler) currentUser(c echo.Context) (*models.User, error) {
	firebaseUID, ok := c.Get("firebaseUID").(string)
	if !ok || firebaseUID == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	}
	user, err := h.userRepo.GetUserByFirebaseUID(firebaseUID)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "unknown user")
	}
	return user, nil
}
