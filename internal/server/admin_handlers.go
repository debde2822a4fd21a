package server

import (
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Admin handlers expose CRUD over the stores to admin-role users. The
// whole group sits behind AuthRequired + AdminRequired, so handlers here
// never re-check identity.

// AdminListUsers handles GET /admin/users.
func (s *Server) AdminListUsers(c *fiber.Ctx) error {
	limit, offset := parsePagination(c, 25)
	users, err := s.userRepo.List(c.UserContext(), limit, offset)
	if err != nil {
		return serviceError(c, err)
	}

	out := make([]userResponse, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i]))
	}
	return c.JSON(fiber.Map{"users": out, "page": offset/limit + 1, "limit": limit})
}

// AdminGetUser handles GET /admin/users/:id.
func (s *Server) AdminGetUser(c *fiber.Ctx) error {
	userID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	user, err := s.users.GetByID(c.UserContext(), userID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(toUserResponse(user))
}

// AdminUpdateUser handles PUT /admin/users/:id: username/about edits on
// behalf of a user.
func (s *Server) AdminUpdateUser(c *fiber.Ctx) error {
	userID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	var req profileRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.users.UpdateProfile(c.UserContext(), userID, req.Username, req.AboutMe)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(toUserResponse(user))
}

// AdminGrantRole handles POST /admin/users/:id/roles/:role. The cached
// role checks for the user are invalidated so the grant takes effect
// immediately.
func (s *Server) AdminGrantRole(c *fiber.Ctx) error {
	userID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.access.GrantRole(c.UserContext(), userID, c.Params("role")); err != nil {
		return serviceError(c, err)
	}
	user, err := s.users.GetByID(c.UserContext(), userID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(toUserResponse(user))
}

// AdminRevokeRole handles DELETE /admin/users/:id/roles/:role.
func (s *Server) AdminRevokeRole(c *fiber.Ctx) error {
	userID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.access.RevokeRole(c.UserContext(), userID, c.Params("role")); err != nil {
		return serviceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AdminListRoles handles GET /admin/roles.
func (s *Server) AdminListRoles(c *fiber.Ctx) error {
	roles, err := s.userRepo.ListRoles(c.UserContext())
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"roles": roles})
}

// AdminCreateRole handles POST /admin/roles.
func (s *Server) AdminCreateRole(c *fiber.Ctx) error {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Name == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Role name is required"))
	}

	role := models.Role{Name: req.Name, Description: req.Description}
	if err := s.userRepo.CreateRole(c.UserContext(), &role); err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(role)
}

// AdminListPosts handles GET /admin/posts.
func (s *Server) AdminListPosts(c *fiber.Ctx) error {
	limit, offset := parsePagination(c, 25)
	posts, err := s.posts.List(c.UserContext(), limit, offset)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"posts": toPostResponses(posts), "page": offset/limit + 1, "limit": limit})
}

// AdminDeletePost handles DELETE /admin/posts/:id. The service's
// ownership check passes because the actor is an admin.
func (s *Server) AdminDeletePost(c *fiber.Ctx) error {
	userID, _ := currentUserID(c)
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.posts.Delete(c.UserContext(), userID, postID); err != nil {
		return serviceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AdminListComments handles GET /admin/comments.
func (s *Server) AdminListComments(c *fiber.Ctx) error {
	limit, offset := parsePagination(c, 25)
	comments, err := s.commentRepo.List(c.UserContext(), limit, offset)
	if err != nil {
		return serviceError(c, err)
	}

	out := make([]commentResponse, 0, len(comments))
	for i := range comments {
		out = append(out, toCommentResponse(&comments[i]))
	}
	return c.JSON(fiber.Map{"comments": out, "page": offset/limit + 1, "limit": limit})
}

// AdminDeleteComment handles DELETE /admin/comments/:id.
func (s *Server) AdminDeleteComment(c *fiber.Ctx) error {
	userID, _ := currentUserID(c)
	commentID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.comments.Delete(c.UserContext(), userID, commentID); err != nil {
		return serviceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AdminListTags handles GET /admin/tags.
func (s *Server) AdminListTags(c *fiber.Ctx) error {
	limit, offset := parsePagination(c, 50)
	tags, err := s.tagRepo.List(c.UserContext(), limit, offset)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"tags": tags, "page": offset/limit + 1, "limit": limit})
}

// AdminDeleteTag handles DELETE /admin/tags/:id.
func (s *Server) AdminDeleteTag(c *fiber.Ctx) error {
	tagID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.tagRepo.Delete(c.UserContext(), tagID); err != nil {
		return serviceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
