package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/TigerArchive/TigerArchive/internal/auth"
	"github.com/TigerArchive/TigerArchive/internal/rbac"
)

// ErrorTemplate renders failed page requests.
const ErrorTemplate = "error"

// StatusOf maps an error kind to its HTTP status.
func StatusOf(err error) int {
	switch rbac.KindOf(err) {
	case rbac.KindNone:
		return fiber.StatusOK
	case rbac.KindUnauthenticated:
		return fiber.StatusUnauthorized
	case rbac.KindForbidden:
		return fiber.StatusForbidden
	case rbac.KindNotFound:
		return fiber.StatusNotFound
	case rbac.KindValidation:
		return fiber.StatusBadRequest
	case rbac.KindStoreUnavailable:
		return fiber.StatusServiceUnavailable
	case rbac.KindInternal:
	}

	return fiber.StatusInternalServerError
}

// message is the client facing text of err. Internal and store failures are
// not described.
func message(err error) string {
	var verr *rbac.ValidationError

	switch kind := rbac.KindOf(err); kind {
	case rbac.KindValidation:
		if errors.As(err, &verr) {
			return verr.Error()
		}

		return err.Error()
	case rbac.KindForbidden:
		return "you do not have access to this area"
	case rbac.KindNotFound:
		return "not found"
	case rbac.KindStoreUnavailable:
		return "the archive is temporarily unavailable"
	case rbac.KindUnauthenticated:
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return "invalid email or password"
		}

		return "authentication required"
	default:
		return "internal server error"
	}
}

func logFailure(c *fiber.Ctx, err error) {
	switch rbac.KindOf(err) {
	case rbac.KindStoreUnavailable, rbac.KindInternal:
		log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
	default:
		log.Debug().Err(err).Str("path", c.Path()).Msg("request rejected")
	}
}

// JSONError writes err as a JSON error body with the status of its kind.
func JSONError(c *fiber.Ctx, err error) error {
	logFailure(c, err)

	body := fiber.Map{
		"error":   rbac.KindOf(err).String(),
		"message": message(err),
	}

	var verr *rbac.ValidationError
	if errors.As(err, &verr) && verr.Field != "" {
		body["field"] = verr.Field
	}

	var ferr *rbac.ForbiddenError
	if errors.As(err, &ferr) {
		body["capability"] = ferr.Capability.String()
	}

	return c.Status(StatusOf(err)).JSON(body)
}

// RenderError renders the error page for err with the status of its kind.
func RenderError(c *fiber.Ctx, err error, data fiber.Map) error {
	logFailure(c, err)

	if data == nil {
		data = fiber.Map{}
	}

	data["Status"] = StatusOf(err)
	data["Message"] = message(err)
	data["CurrentUser"] = auth.Identity(c)

	return c.Status(StatusOf(err)).Render(ErrorTemplate, data, BaseLayout)
}
