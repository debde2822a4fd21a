package server

import (
	"fmt"
	"time"

	"inkwell/internal/i18n"
	"inkwell/internal/models"
	"inkwell/internal/observability"

	"github.com/gofiber/fiber/v2"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type profileRequest struct {
	Username string `json:"username"`
	AboutMe  string `json:"about_me"`
	Password string `json:"password"`
}

type oauthRequest struct {
	Subject string `json:"subject"`
}

type userResponse struct {
	ID       uint     `json:"id"`
	Username string   `json:"username"`
	AboutMe  string   `json:"about_me,omitempty"`
	Avatar   string   `json:"avatar"`
	Roles    []string `json:"roles"`
}

func toUserResponse(user *models.User) userResponse {
	return userResponse{
		ID:       user.ID,
		Username: user.Username,
		AboutMe:  user.AboutMe,
		Avatar:   user.AvatarURL(80),
		Roles:    user.RoleNames(),
	}
}

func (s *Server) setSessionCookie(c *fiber.Ctx, signed string) {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    signed,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   s.config.Env == "production",
		Expires:  time.Now().Add(7 * 24 * time.Hour),
	})
}

// Register handles POST /auth/register.
func (s *Server) Register(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.users.Register(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return serviceError(c, err)
	}

	setFlash(c, i18n.T(requestLocale(c), "register_success"))
	return c.Status(fiber.StatusCreated).JSON(toUserResponse(user))
}

// Login handles POST /auth/login: verifies credentials and sets the
// session cookie carrying the signed token.
func (s *Server) Login(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Username == "" || req.Password == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Username and password are required"))
	}

	user, err := s.users.Authenticate(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return serviceError(c, err)
	}

	signed, err := s.issuer.Issue(user.ID)
	if err != nil {
		return serviceError(c, models.NewInternalError(err))
	}

	s.setSessionCookie(c, signed)
	setFlash(c, i18n.T(requestLocale(c), "login_success"))
	return c.JSON(fiber.Map{"user": toUserResponse(user)})
}

// Logout clears the session cookie.
func (s *Server) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(-time.Hour),
	})
	setFlash(c, i18n.T(requestLocale(c), "logout_success"))
	return c.JSON(fiber.Map{"message": "logged out"})
}

// TokenLogin handles POST /auth/api: credentials in, bearer token out.
// Missing fields are 400, bad credentials 401.
func (s *Server) TokenLogin(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Username == "" || req.Password == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Username and password are required"))
	}

	user, err := s.users.Authenticate(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return serviceError(c, err)
	}

	signed, err := s.issuer.Issue(user.ID)
	if err != nil {
		return serviceError(c, models.NewInternalError(err))
	}
	observability.TokensIssued.Inc()
	return c.JSON(fiber.Map{"access_token": signed})
}

// OAuthResolve maps an upstream-verified external identity onto a local
// account and starts a session. The subject must already be verified by
// the OAuth exchange in front of this endpoint.
func (s *Server) OAuthResolve(c *fiber.Ctx) error {
	var req oauthRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.users.ResolveExternal(c.UserContext(), c.Params("provider"), req.Subject)
	if err != nil {
		return serviceError(c, err)
	}

	signed, err := s.issuer.Issue(user.ID)
	if err != nil {
		return serviceError(c, models.NewInternalError(err))
	}
	s.setSessionCookie(c, signed)
	return c.JSON(fiber.Map{"user": toUserResponse(user)})
}

// GetProfile returns the authenticated user's own profile.
func (s *Server) GetProfile(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthenticatedError("Missing or invalid token"))
	}
	return c.JSON(toUserResponse(user))
}

// EditProfile updates username and about text, and optionally the
// password when one is supplied.
func (s *Server) EditProfile(c *fiber.Ctx) error {
	userID, _ := currentUserID(c)

	var req profileRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.users.UpdateProfile(c.UserContext(), userID, req.Username, req.AboutMe)
	if err != nil {
		return serviceError(c, err)
	}
	if req.Password != "" {
		if err := s.users.SetPassword(c.UserContext(), userID, req.Password); err != nil {
			return serviceError(c, err)
		}
	}

	setFlash(c, i18n.T(requestLocale(c), "profile_saved"))
	return c.JSON(toUserResponse(user))
}

// FollowUser handles POST /auth/follow/:username.
func (s *Server) FollowUser(c *fiber.Ctx) error {
	userID, _ := currentUserID(c)
	locale := requestLocale(c)

	target, err := s.follows.Follow(c.UserContext(), userID, c.Params("username"))
	if err != nil {
		return serviceError(c, err)
	}

	message := fmt.Sprintf(i18n.T(locale, "now_following"), target.Username)
	setFlash(c, message)
	return c.JSON(fiber.Map{"message": message})
}

// UnfollowUser handles POST /auth/unfollow/:username.
func (s *Server) UnfollowUser(c *fiber.Ctx) error {
	userID, _ := currentUserID(c)
	locale := requestLocale(c)

	target, err := s.follows.Unfollow(c.UserContext(), userID, c.Params("username"))
	if err != nil {
		return serviceError(c, err)
	}

	message := fmt.Sprintf(i18n.T(locale, "no_longer_following"), target.Username)
	setFlash(c, message)
	return c.JSON(fiber.Map{"message": message})
}
