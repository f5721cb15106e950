package v1

import (
	"net/http"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/lithammer/shortuuid/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/curiocodex/curiocodex/internal/errcode"
	"github.com/curiocodex/curiocodex/server/auth"
	"github.com/curiocodex/curiocodex/store"
)

type signupRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string        `json:"token"`
	User  *UserResponse `json:"user"`
}

const minPasswordLength = 8

// Signup registers a new account and opens a session for it.
func (s *APIV1Service) Signup(c echo.Context) error {
	ctx := c.Request().Context()

	request := &signupRequest{}
	if err := c.Bind(request); err != nil {
		return writeError(c, errcode.InvalidArgument("malformed request body"))
	}
	request.Email = strings.TrimSpace(strings.ToLower(request.Email))
	request.Username = strings.TrimSpace(request.Username)

	if _, err := mail.ParseAddress(request.Email); err != nil {
		return writeError(c, errcode.InvalidArgument("invalid email address"))
	}
	if request.Username == "" {
		return writeError(c, errcode.InvalidArgument("username is required"))
	}
	if len(request.Password) < minPasswordLength {
		return writeError(c, errcode.InvalidArgumentf("password must be at least %d characters", minPasswordLength))
	}

	existing, err := s.Store.GetUser(ctx, &store.FindUser{Email: &request.Email})
	if err != nil {
		return writeError(c, errcode.Internal("failed to look up user", err))
	}
	if existing != nil {
		return writeError(c, errcode.InvalidArgument("email is already registered"))
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(request.Password), bcrypt.DefaultCost)
	if err != nil {
		return writeError(c, errcode.Internal("failed to hash password", err))
	}

	user, err := s.Store.CreateUser(ctx, &store.User{
		UID:          shortuuid.New(),
		Email:        request.Email,
		Username:     request.Username,
		PasswordHash: string(passwordHash),
	})
	if err != nil {
		return writeError(c, errcode.Internal("failed to create user", err))
	}

	token, err := s.openSession(c, user)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, &authResponse{Token: token, User: convertUser(user)})
}

// Login authenticates by email and password and opens a session.
func (s *APIV1Service) Login(c echo.Context) error {
	ctx := c.Request().Context()

	request := &loginRequest{}
	if err := c.Bind(request); err != nil {
		return writeError(c, errcode.InvalidArgument("malformed request body"))
	}
	email := strings.TrimSpace(strings.ToLower(request.Email))

	user, err := s.Store.GetUser(ctx, &store.FindUser{Email: &email})
	if err != nil {
		return writeError(c, errcode.Internal("failed to look up user", err))
	}
	// The same response for an unknown email and a wrong password keeps
	// account existence unguessable.
	if user == nil {
		return writeError(c, errcode.Unauthenticated("invalid credentials"))
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(request.Password)); err != nil {
		return writeError(c, errcode.Unauthenticated("invalid credentials"))
	}

	token, err := s.openSession(c, user)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, &authResponse{Token: token, User: convertUser(user)})
}

// Logout invalidates the caller's session token.
func (s *APIV1Service) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	token := auth.TokenFromContext(c)
	if err := s.Sessions.Delete(ctx, token); err != nil {
		return writeError(c, errcode.Internal("failed to delete session", err))
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

// Me returns the authenticated user.
func (s *APIV1Service) Me(c echo.Context) error {
	user := auth.UserFromContext(c)
	return c.JSON(http.StatusOK, map[string]*UserResponse{"user": convertUser(user)})
}

func (s *APIV1Service) openSession(c echo.Context, user *store.User) (string, error) {
	token := uuid.NewString()
	session := &auth.Session{
		Token:    token,
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
	}
	if err := s.Sessions.Create(c.Request().Context(), session); err != nil {
		return "", errcode.Internal("failed to create session", err)
	}
	return token, nil
}
