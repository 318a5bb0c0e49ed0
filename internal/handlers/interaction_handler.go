package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/tareq-s/feedcraft/backend/internal/models"
	"github.com/tareq-s/feedcraft/backend/internal/repositories"
	"github.com/tareq-s/feedcraft/backend/internal/services"
	"go.uber.org/zap"
)

// InteractionHandler records user interactions with posts so the interest
// tracker can learn from them. Saves and ratings also persist their own rows;
// views additionally bump the post's view counter.
type InteractionHandler struct {
	tracker       *services.InterestTracker
	postRepo      repositories.PostRepository
	userRepo      repositories.UserRepository
	savedPostRepo repositories.SavedPostRepository
	ratingRepo    repositories.PostRatingRepository
	log           *zap.SugaredLogger
}

// NewInteractionHandler creates a new InteractionHandler
func NewInteractionHandler(
	tracker *services.InterestTracker,
	postRepo repositories.PostRepository,
	userRepo repositories.UserRepository,
	savedPostRepo repositories.SavedPostRepository,
	ratingRepo repositories.PostRatingRepository,
	log *zap.SugaredLogger,
) *InteractionHandler {
	return &InteractionHandler{
		tracker:       tracker,
		postRepo:      postRepo,
		userRepo:      userRepo,
		savedPostRepo: savedPostRepo,
		ratingRepo:    ratingRepo,
		log:           log.With("component", "interaction_handler"),
	}
}

// RegisterInteractionRoutes registers interaction-related routes
func (h *InteractionHandler) RegisterInteractionRoutes(g *echo.Group) {
	g.POST("/interactions", h.RecordInteraction)
}

// RecordInteraction records one interaction with a post
func (h *InteractionHandler) RecordInteraction(c echo.Context) error {
	firebaseUID, ok := c.Get("firebaseUID").(string)
	if !ok || firebaseUID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	}
	user, err := h.userRepo.GetUserByFirebaseUID(firebaseUID)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unknown user")
	}

	var req models.RecordInteractionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if req.Type == "rate" && req.Rating == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "rating is required for rate interactions")
	}

	post, err := h.postRepo.GetPostByID(c.Request().Context(), req.PostID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "post not found")
	}

	switch req.Type {
	case "view":
		if err := h.postRepo.IncrementViewCount(c.Request().Context(), req.PostID); err != nil {
			h.log.Warnw("failed to increment view count", "post_id", req.PostID, "error", err)
		}
	case "save":
		saved := models.SavedPost{UserID: user.ID, PostID: req.PostID}
		if err := h.savedPostRepo.SavePost(&saved); err != nil {
			h.log.Warnw("failed to persist save", "user_id", user.ID, "post_id", req.PostID, "error", err)
		}
	case "rate":
		if err := h.ratingRepo.RatePost(user.ID, req.PostID, *req.Rating); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to record rating")
		}
	}

	// Interest tracking rides along with every interaction type; a failure
	// here must not fail the interaction itself.
	if err := h.tracker.RecordInteraction(user.ID, post.Tags, req.Type, req.Rating); err != nil {
		h.log.Warnw("failed to record interest", "user_id", user.ID, "post_id", req.PostID, "error", err)
	}

	return c.JSON(http.StatusAccepted, map[string]string{"status": "recorded"})
}
