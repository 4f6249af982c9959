package server

import (
	"anex/internal/models"

	"github.com/gofiber/fiber/v2"
)

// FollowUser handles POST /api/follow/:username
func (s *Server) FollowUser(c *fiber.Ctx) error {
	target, err := s.followTarget(c)
	if err != nil {
		return nil
	}

	if target.ID == currentUserID(c) {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("You cannot follow yourself"))
	}

	if err := s.followRepo.Follow(c.Context(), currentUserID(c), target.ID); err != nil {
		return respondAppError(c, err)
	}

	return c.JSON(fiber.Map{"following": true, "username": target.Username})
}

// UnfollowUser handles DELETE /api/follow/:username
func (s *Server) UnfollowUser(c *fiber.Ctx) error {
	target, err := s.followTarget(c)
	if err != nil {
		return nil
	}

	if target.ID == currentUserID(c) {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("You cannot unfollow yourself"))
	}

	if err := s.followRepo.Unfollow(c.Context(), currentUserID(c), target.ID); err != nil {
		return respondAppError(c, err)
	}

	return c.JSON(fiber.Map{"following": false, "username": target.Username})
}

// GetFollowStatus handles GET /api/follow/:username
func (s *Server) GetFollowStatus(c *fiber.Ctx) error {
	target, err := s.followTarget(c)
	if err != nil {
		return nil
	}

	following, err := s.followRepo.IsFollowing(c.Context(), currentUserID(c), target.ID)
	if err != nil {
		return respondAppError(c, err)
	}

	return c.JSON(fiber.Map{"following": following, "username": target.Username})
}

// followTarget resolves the :username route parameter, writing a 404 response
// and returning errResponseWritten when the user does not exist.
func (s *Server) followTarget(c *fiber.Ctx) (*models.User, error) {
	username := c.Params("username")
	user, err := s.userRepo.GetByUsername(c.Context(), username)
	if err != nil {
		_ = models.RespondWithError(c, fiber.StatusInternalServerError, err)
		return nil, errResponseWritten
	}
	if user == nil {
		_ = models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("User", username))
		return nil, errResponseWritten
	}
	return user, nil
}
