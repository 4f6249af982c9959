package server

import (
	"anex/internal/cache"
	"anex/internal/models"
	"anex/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.userRepo.GetByID(c.Context(), currentUserID(c))
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(s.profilePayload(c, user, true))
}

// UpdateMyProfile handles PUT /api/users/me
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req struct {
		Username *string `json:"username"`
		Bio      *string `json:"bio"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	userID := currentUserID(c)
	user, err := s.userRepo.GetByID(c.Context(), userID)
	if err != nil {
		return respondAppError(c, err)
	}

	if req.Username != nil && *req.Username != user.Username {
		if err := validation.ValidateUsername(*req.Username); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError(err.Error()))
		}
		existing, err := s.userRepo.GetByUsername(c.Context(), *req.Username)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
		if existing != nil {
			return models.RespondWithError(c, fiber.StatusConflict,
				models.NewValidationError("Username already taken"))
		}
		user.Username = *req.Username
	}

	if req.Bio != nil {
		if err := validation.ValidateBio(*req.Bio); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError(err.Error()))
		}
		user.Bio = *req.Bio
	}

	if err := s.userRepo.Update(c.Context(), user); err != nil {
		return respondAppError(c, err)
	}
	cache.InvalidateUser(c.Context(), userID)

	return c.JSON(s.profilePayload(c, user, true))
}

// GetUserProfile handles GET /api/users/:username
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	user, err := s.userRepo.GetByUsername(c.Context(), c.Params("username"))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if user == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("User", c.Params("username")))
	}
	return c.JSON(s.profilePayload(c, user, user.ID == currentUserID(c)))
}

// GetUserPosts handles GET /api/users/:username/posts
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	user, err := s.userRepo.GetByUsername(c.Context(), c.Params("username"))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if user == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("User", c.Params("username")))
	}

	p := parsePagination(c, 20)
	posts, err := s.postRepo.GetByUserID(c.Context(), user.ID, p.Limit, p.Offset)
	if err != nil {
		return respondAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"posts":  posts,
		"limit":  p.Limit,
		"offset": p.Offset,
	})
}

// profilePayload assembles a user profile response with follower counts and,
// for other users' profiles, the viewer's follow relationship.
func (s *Server) profilePayload(c *fiber.Ctx, user *models.User, self bool) fiber.Map {
	followers, _ := s.followRepo.CountFollowers(c.Context(), user.ID)
	following, _ := s.followRepo.CountFollowing(c.Context(), user.ID)

	payload := fiber.Map{
		"user":       user,
		"avatar_url": user.AvatarURL(128),
		"followers":  followers,
		"following":  following,
	}
	if !self {
		isFollowing, _ := s.followRepo.IsFollowing(c.Context(), currentUserID(c), user.ID)
		payload["is_following"] = isFollowing
	}
	return payload
}
