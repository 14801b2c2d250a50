package adminapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/TigerArchive/TigerArchive/internal/auth"
	"github.com/TigerArchive/TigerArchive/internal/importer"
	"github.com/TigerArchive/TigerArchive/internal/rbac"
	"github.com/TigerArchive/TigerArchive/internal/web/handler"
)

// ImportRequest is the body of POST /api/admin/import. Without records the
// export files of the configuration are read.
type ImportRequest struct {
	importer.Bundle
	Force bool `json:"force"`
}

func (r *ImportRequest) empty() bool {
	return len(r.Categories) == 0 && len(r.Posts) == 0
}

// LastImport handles GET /api/admin/import.
func (s *Service) LastImport(c *fiber.Ctx) error {
	last, err := s.importer.LastRun(c.UserContext())
	if err != nil {
		return handler.JSONError(c, err)
	}

	return c.JSON(fiber.Map{"lastRun": last})
}

// RunImport handles POST /api/admin/import.
func (s *Service) RunImport(c *fiber.Ctx) error {
	const action = "import.run"

	in := new(ImportRequest)
	if len(c.Body()) > 0 {
		if err := handler.Bind(c, in); err != nil {
			return failed(c, action, err)
		}
	}

	bundle := &in.Bundle

	if in.empty() {
		files := s.cfg.Import
		if files.CategoriesFile == "" || files.PostsFile == "" {
			return failed(c, action, rbac.NewValidationError("import", "no records given and no export files configured"))
		}

		loaded, err := importer.LoadFiles(files.CategoriesFile, files.PostsFile)
		if err != nil {
			return failed(c, action, err)
		}

		bundle = loaded
	}

	res, err := s.importer.Run(c.UserContext(), bundle, auth.Identity(c), in.Force)
	if err != nil {
		return failed(c, action, err)
	}

	audit(c, action).Str("outcome", "success").
		Int("posts_imported", res.Posts.Imported).
		Int("categories_imported", res.Categories.Imported).
		Bool("force", in.Force).
		Msg("admin")

	return c.JSON(fiber.Map{"result": res})
}
