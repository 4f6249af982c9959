package server

import (
	"anex/internal/models"
	"anex/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req struct {
		Body     string `json:"body"`
		Language string `json:"language"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := validation.ValidatePostBody(req.Body, models.MaxPostLength); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}
	if err := validation.ValidateLanguageTag(req.Language); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	post := &models.Post{
		Body:     req.Body,
		Language: req.Language,
		UserID:   currentUserID(c),
	}
	if err := s.postRepo.Create(c.Context(), post); err != nil {
		return respondAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetFeed handles GET /api/posts/feed. The feed is the user's own posts plus
// posts from everyone they follow, newest first.
func (s *Server) GetFeed(c *fiber.Ctx) error {
	p := parsePagination(c, 20)
	posts, err := s.postRepo.Feed(c.Context(), currentUserID(c), p.Limit, p.Offset)
	if err != nil {
		return respondAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"posts":  posts,
		"limit":  p.Limit,
		"offset": p.Offset,
	})
}

// GetExplore handles GET /api/posts/explore, listing all posts site-wide.
func (s *Server) GetExplore(c *fiber.Ctx) error {
	p := parsePagination(c, 20)
	posts, err := s.postRepo.List(c.Context(), p.Limit, p.Offset)
	if err != nil {
		return respondAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"posts":  posts,
		"limit":  p.Limit,
		"offset": p.Offset,
	})
}

// DeletePost handles DELETE /api/posts/:id. Users can only delete their own posts.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postRepo.GetByID(c.Context(), id)
	if err != nil {
		return respondAppError(c, err)
	}
	if post.UserID != currentUserID(c) {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewUnauthorizedError("You can only delete your own posts"))
	}

	if err := s.postRepo.Delete(c.Context(), id); err != nil {
		return respondAppError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
