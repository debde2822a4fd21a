package server

import (
	"strings"

	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// API handlers implement the machine-facing CRUD surface. Status codes
// are part of the contract: 200 read/update, 201 create, 204 delete,
// 400 malformed, 401 unauthenticated, 403 not owner, 404 absent.

// APIListPosts handles GET /api/post.
func (s *Server) APIListPosts(c *fiber.Ctx) error {
	limit, offset := parsePagination(c, s.config.PostsPerPage)

	var (
		posts []models.Post
		err   error
	)
	switch {
	case c.Query("user") != "":
		var user *models.User
		user, err = s.users.GetByUsername(c.UserContext(), c.Query("user"))
		if err != nil {
			return serviceError(c, err)
		}
		posts, err = s.posts.ListByUser(c.UserContext(), user.ID, limit, offset)
	case c.Query("tag") != "":
		posts, err = s.posts.ListByTag(c.UserContext(), c.Query("tag"), limit, offset)
	default:
		posts, err = s.posts.List(c.UserContext(), limit, offset)
	}
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"posts": toPostResponses(posts),
		"page":  offset/limit + 1,
		"limit": limit,
	})
}

// APIGetPost handles GET /api/post/:id.
func (s *Server) APIGetPost(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	post, err := s.posts.GetByID(c.UserContext(), postID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(toPostResponse(post))
}

// APICreatePost handles POST /api/post.
func (s *Server) APICreatePost(c *fiber.Ctx) error {
	userID, _ := currentUserID(c)

	var req postRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.posts.Create(c.UserContext(), userID, req.Title, req.Text, req.Tags)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": post.ID})
}

// APIUpdatePost handles PUT /api/post/:id with partial semantics:
// absent fields stay untouched.
func (s *Server) APIUpdatePost(c *fiber.Ctx) error {
	userID, _ := currentUserID(c)
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Title *string  `json:"title"`
		Text  *string  `json:"text"`
		Tags  []string `json:"tags"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.posts.Update(c.UserContext(), userID, postID, service.PostUpdate{
		Title: req.Title,
		Text:  req.Text,
		Tags:  req.Tags,
	})
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(toPostResponse(post))
}

// APIDeletePost handles DELETE /api/post/:id.
func (s *Server) APIDeletePost(c *fiber.Ctx) error {
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

// APIListComments handles GET /api/post/:id/comments.
func (s *Server) APIListComments(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	limit, offset := parsePagination(c, s.config.PostsPerPage)

	comments, err := s.comments.ListByPost(c.UserContext(), postID, limit, offset)
	if err != nil {
		return serviceError(c, err)
	}

	out := make([]commentResponse, 0, len(comments))
	for i := range comments {
		out = append(out, toCommentResponse(&comments[i]))
	}
	return c.JSON(fiber.Map{"comments": out, "page": offset/limit + 1, "limit": limit})
}

// APICreateComment handles POST /api/comment. The token identity is
// recorded as the author so the same token can later edit or delete the
// comment; the display name defaults to the username.
func (s *Server) APICreateComment(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthenticatedError("Missing or invalid token"))
	}

	var req commentRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.PostID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("post_id is required"))
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = user.Username
	}

	comment, err := s.comments.CreateOwned(c.UserContext(), user.ID, req.PostID, name, req.Text)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": comment.ID})
}

// APIUpdateComment handles PUT /api/comment/:id.
func (s *Server) APIUpdateComment(c *fiber.Ctx) error {
	userID, _ := currentUserID(c)
	commentID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	var req commentRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.comments.Update(c.UserContext(), userID, commentID, req.Text)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(toCommentResponse(comment))
}

// APIDeleteComment handles DELETE /api/comment/:id.
func (s *Server) APIDeleteComment(c *fiber.Ctx) error {
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
