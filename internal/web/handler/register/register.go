// Package register handles self-registration. New accounts are always white
// members, the request never selects the role.
package register

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/TigerArchive/TigerArchive/internal/auth"
	"github.com/TigerArchive/TigerArchive/internal/config"
	"github.com/TigerArchive/TigerArchive/internal/logger"
	"github.com/TigerArchive/TigerArchive/internal/rbac"
	"github.com/TigerArchive/TigerArchive/internal/web/handler"
	"github.com/TigerArchive/TigerArchive/internal/web/handler/login"
)

const (
	// Path is the registration page.
	Path = handler.RootPath + "register"

	// APIPath is the registration endpoint of the JSON API.
	APIPath = handler.APIPath + "/register"

	// TemplateName is the registration page template.
	TemplateName = "register"
)

// Input is a registration request. A role field, if sent, is ignored.
type Input struct {
	Email     string `json:"email"     form:"email"     validate:"required,email,max=191"`
	Password  string `json:"password"  form:"password"  validate:"required"`
	FirstName string `json:"firstName" form:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName"  form:"lastName"  validate:"required,max=100"`
	ClassYear string `json:"classYear" form:"classYear" validate:"max=10"`
}

// Service is the registration handler service.
type Service struct {
	handler.Service
	cfg  *config.Config
	deps *handler.Deps
}

// Handler is the registration handler.
var Handler = Service{}

// Init registers the page and API routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, deps *handler.Deps) error {
	if app == nil || cfg == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	if err := deps.Validate(); err != nil {
		return err
	}

	s.cfg = cfg
	s.deps = deps

	app.Get(Path, s.Get)
	app.Post(Path, handler.RateLimit(cfg), s.Post)
	app.Post(APIPath, handler.RateLimit(cfg), s.API)

	return nil
}

func (s *Service) register(c *fiber.Ctx) (*rbac.Identity, *Input, error) {
	in := new(Input)
	if err := handler.Bind(c, in); err != nil {
		return nil, in, err
	}

	u, err := s.deps.Accounts.Register(c.UserContext(), auth.RegisterInput{
		Email:     in.Email,
		Password:  in.Password,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		ClassYear: in.ClassYear,
	})
	if err != nil {
		return nil, in, err
	}

	logger.Audit.Log().
		Uint64("user", u.ID).
		Str("role", u.Role.String()).
		Str("IP", c.IP()).
		Msg("registered")

	return u.Identity(), in, nil
}

// Get renders the registration form.
func (s *Service) Get(c *fiber.Ctx) error {
	return c.Render(TemplateName, fiber.Map{"Title": s.cfg.Title})
}

// Post handles the registration form and sends the new member to sign in.
func (s *Service) Post(c *fiber.Ctx) error {
	if _, in, err := s.register(c); err != nil {
		var verr *rbac.ValidationError

		msg := "Registration is temporarily unavailable"
		if errors.As(err, &verr) {
			msg = verr.Error()
		}

		return c.Status(handler.StatusOf(err)).Render(TemplateName, fiber.Map{
			"Title": s.cfg.Title,
			"Input": in,
			"error": msg,
		})
	}

	return c.Redirect(login.Path + "?registered=1")
}

// API handles POST /api/register.
func (s *Service) API(c *fiber.Ctx) error {
	identity, _, err := s.register(c)
	if err != nil {
		return handler.JSONError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": identity})
}
