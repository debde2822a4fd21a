package server

import (
	"strings"
	"time"

	"inkwell/internal/i18n"
	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

type postRequest struct {
	Title string   `json:"title"`
	Text  string   `json:"text"`
	Tags  []string `json:"tags"`
}

type commentRequest struct {
	Name   string `json:"name"`
	Text   string `json:"text"`
	PostID uint   `json:"post_id"`
}

type postResponse struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Text        string    `json:"text,omitempty"`
	PublishDate time.Time `json:"publish_date"`
	Author      string    `json:"author,omitempty"`
	UserID      uint      `json:"user_id"`
	Tags        []string  `json:"tags,omitempty"`
}

type commentResponse struct {
	ID     uint      `json:"id"`
	Name   string    `json:"name"`
	Text   string    `json:"text"`
	Date   time.Time `json:"date"`
	PostID uint      `json:"post_id"`
}

type sidebarResponse struct {
	Recent  []postResponse `json:"recent"`
	TopTags []tagCount     `json:"top_tags"`
}

type tagCount struct {
	Title string `json:"title"`
	Count int64  `json:"count"`
}

func toPostResponse(post *models.Post) postResponse {
	resp := postResponse{
		ID:          post.ID,
		Title:       post.Title,
		Text:        post.Text,
		PublishDate: post.PublishDate,
		UserID:      post.UserID,
		Author:      post.User.Username,
	}
	for _, tag := range post.Tags {
		resp.Tags = append(resp.Tags, tag.Title)
	}
	return resp
}

func toPostResponses(posts []models.Post) []postResponse {
	out := make([]postResponse, 0, len(posts))
	for i := range posts {
		out = append(out, toPostResponse(&posts[i]))
	}
	return out
}

func toCommentResponse(comment *models.Comment) commentResponse {
	return commentResponse{
		ID:     comment.ID,
		Name:   comment.Name,
		Text:   comment.Text,
		Date:   comment.Date,
		PostID: comment.PostID,
	}
}

func toSidebarResponse(sidebar *models.Sidebar) sidebarResponse {
	resp := sidebarResponse{
		Recent:  toPostResponses(sidebar.Recent),
		TopTags: make([]tagCount, 0, len(sidebar.TopTags)),
	}
	for _, tc := range sidebar.TopTags {
		resp.TopTags = append(resp.TopTags, tagCount{Title: tc.Tag.Title, Count: tc.Count})
	}
	return resp
}

// renderListing builds the common shape of every read view: the posts,
// the cached sidebar, pagination echo and any pending flash.
func (s *Server) renderListing(c *fiber.Ctx, posts []models.Post, limit, offset int) error {
	sidebar, err := s.posts.Sidebar(c.UserContext())
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{
		"posts":   toPostResponses(posts),
		"sidebar": toSidebarResponse(sidebar),
		"page":    offset/limit + 1,
		"limit":   limit,
		"flash":   popFlash(c),
	})
}

// Home handles GET /blog/ and /blog/home.
func (s *Server) Home(c *fiber.Ctx) error {
	limit, offset := parsePagination(c, s.config.PostsPerPage)
	posts, err := s.posts.List(c.UserContext(), limit, offset)
	if err != nil {
		return serviceError(c, err)
	}
	return s.renderListing(c, posts, limit, offset)
}

// FollowedPosts handles GET /blog/followed_posts: the user's own posts
// merged with posts by followed users.
func (s *Server) FollowedPosts(c *fiber.Ctx) error {
	userID, _ := currentUserID(c)
	limit, offset := parsePagination(c, s.config.PostsPerPage)

	posts, err := s.follows.FollowedFeed(c.UserContext(), userID, limit, offset)
	if err != nil {
		return serviceError(c, err)
	}
	return s.renderListing(c, posts, limit, offset)
}

// NewPost handles POST /blog/new_post. Publishing requires the poster
// role; the check lives in the service.
func (s *Server) NewPost(c *fiber.Ctx) error {
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

	setFlash(c, i18n.T(requestLocale(c), "post_added"))
	return c.Status(fiber.StatusCreated).JSON(toPostResponse(post))
}

// EditPost handles POST /blog/edit/:id.
func (s *Server) EditPost(c *fiber.Ctx) error {
	userID, _ := currentUserID(c)
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	var req postRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.posts.Update(c.UserContext(), userID, postID, service.PostUpdate{
		Title: &req.Title,
		Text:  &req.Text,
		Tags:  req.Tags,
	})
	if err != nil {
		return serviceError(c, err)
	}

	setFlash(c, i18n.T(requestLocale(c), "post_updated"))
	return c.JSON(toPostResponse(post))
}

// ShowPost handles GET /blog/post/:id with comments and sidebar.
func (s *Server) ShowPost(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.posts.GetByID(c.UserContext(), postID)
	if err != nil {
		return serviceError(c, err)
	}
	sidebar, err := s.posts.Sidebar(c.UserContext())
	if err != nil {
		return serviceError(c, err)
	}

	comments := make([]commentResponse, 0, len(post.Comments))
	for i := range post.Comments {
		comments = append(comments, toCommentResponse(&post.Comments[i]))
	}

	return c.JSON(fiber.Map{
		"post":     toPostResponse(post),
		"comments": comments,
		"sidebar":  toSidebarResponse(sidebar),
		"flash":    popFlash(c),
	})
}

// AddComment handles POST /blog/post/:id: the session gates access, but
// the stored comment carries only the display name from the form, which
// defaults to the session username and may diverge from it.
func (s *Server) AddComment(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthenticatedError(i18n.T(requestLocale(c), "login_to_comment")))
	}
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	var req commentRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = user.Username
	}

	comment, err := s.comments.CreateNamed(c.UserContext(), postID, name, req.Text)
	if err != nil {
		return serviceError(c, err)
	}

	setFlash(c, i18n.T(requestLocale(c), "comment_added"))
	return c.Status(fiber.StatusCreated).JSON(toCommentResponse(comment))
}

// PostsByTag handles GET /blog/tag/:title.
func (s *Server) PostsByTag(c *fiber.Ctx) error {
	limit, offset := parsePagination(c, s.config.PostsPerPage)
	posts, err := s.posts.ListByTag(c.UserContext(), c.Params("title"), limit, offset)
	if err != nil {
		return serviceError(c, err)
	}
	return s.renderListing(c, posts, limit, offset)
}

// PostsByUser handles GET /blog/user/:username.
func (s *Server) PostsByUser(c *fiber.Ctx) error {
	user, err := s.users.GetByUsername(c.UserContext(), c.Params("username"))
	if err != nil {
		return serviceError(c, err)
	}

	limit, offset := parsePagination(c, s.config.PostsPerPage)
	posts, err := s.posts.ListByUser(c.UserContext(), user.ID, limit, offset)
	if err != nil {
		return serviceError(c, err)
	}

	sidebar, sErr := s.posts.Sidebar(c.UserContext())
	if sErr != nil {
		return serviceError(c, sErr)
	}
	return c.JSON(fiber.Map{
		"user":    toUserResponse(user),
		"posts":   toPostResponses(posts),
		"sidebar": toSidebarResponse(sidebar),
		"page":    offset/limit + 1,
		"limit":   limit,
		"flash":   popFlash(c),
	})
}
