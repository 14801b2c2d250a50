package login

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/TigerArchive/TigerArchive/internal/auth"
	"github.com/TigerArchive/TigerArchive/internal/config"
	"github.com/TigerArchive/TigerArchive/internal/logger"
	"github.com/TigerArchive/TigerArchive/internal/rbac"
	"github.com/TigerArchive/TigerArchive/internal/web/handler"
	"github.com/TigerArchive/TigerArchive/internal/web/session"
)

const (
	// Path is the path to the login page.
	Path = "/login"

	// TemplateName is the login page template.
	TemplateName = "login"

	// SuccessPath is where a successful sign-in lands.
	SuccessPath = "/dashboard"
)

type form struct {
	Email    string `form:"email"    validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

// Service is the login handler service.
type Service struct {
	handler.Service
	cfg  *config.Config
	deps *handler.Deps
}

// Handler is the login handler.
var Handler = Service{}

// Init initializes the login handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, deps *handler.Deps) error {
	if app == nil || cfg == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	if err := deps.Validate(); err != nil {
		return err
	}

	s.deps = deps
	s.cfg = cfg

	// register routes
	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RouterRootPath, s.Get)
		router.Post(handler.RouterRootPath, handler.RateLimit(cfg), s.Post)
	})

	return nil
}

func (s *Service) render(c *fiber.Ctx, status int, email, errMsg string) error {
	data := fiber.Map{
		"Title":      s.cfg.Title,
		"Email":      email,
		"Registered": c.Query("registered") != "",
	}

	if errMsg != "" {
		data["error"] = errMsg
	}

	return c.Status(status).Render(TemplateName, data)
}

// Get handles the login page rendering.
func (s *Service) Get(c *fiber.Ctx) error {
	return s.render(c, fiber.StatusOK, "", "")
}

// Post handles the login form submission.
func (s *Service) Post(c *fiber.Ctx) error {
	in := new(form)

	if err := c.BodyParser(in); err != nil {
		return s.render(c, fiber.StatusBadRequest, "", ErrInvalidFormData.Error())
	}

	if err := handler.Validate(in); err != nil {
		return s.render(c, fiber.StatusBadRequest, in.Email, "Please enter your email and password")
	}

	u, err := s.deps.Accounts.Authenticate(c.UserContext(), in.Email, in.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			logger.Audit.Log().
				Str("outcome", "failure").
				Str("email", in.Email).
				Str("IP", c.IP()).
				Msg("login")

			return s.render(c, fiber.StatusUnauthorized, in.Email, "Invalid email or password")
		}

		log.Error().Err(err).Msg("failed to authenticate")

		return s.render(c, handler.StatusOf(err), in.Email, "Sign-in is temporarily unavailable")
	}

	sessionID, err := s.startSession(u.Identity())
	if err != nil {
		log.Error().Err(err).Msg("failed to start session")

		return s.render(c, fiber.StatusInternalServerError, in.Email, ErrInternalServerError.Error())
	}

	c.Cookie(s.cookie(sessionID))

	logger.Audit.Log().
		Str("outcome", "success").
		Uint64("user", u.ID).
		Str("role", u.Role.String()).
		Str("IP", c.IP()).
		Msg("login")

	return c.Redirect(SuccessPath)
}

func (s *Service) startSession(identity *rbac.Identity) (string, error) {
	sessionID, err := session.GenerateSessionID()
	if err != nil {
		return "", err //nolint:wrapcheck
	}

	data := &session.Data{
		Identity: *identity,
		IssuedAt: time.Now(),
	}

	if err = data.Write(sessionID, s.cfg.Webserver.Session.ExpiryTime); err != nil {
		return "", err //nolint:wrapcheck
	}

	return sessionID, nil
}

func (s *Service) cookie(sessionID string) *fiber.Cookie {
	cookieSettings := &fiber.Cookie{
		Name:     session.CookieName,
		Value:    sessionID,
		MaxAge:   int(s.cfg.Webserver.Session.ExpiryTime.Seconds()),
		Secure:   true,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	}

	if s.cfg.DevMode {
		cookieSettings.Secure = false
	}

	return cookieSettings
}
