package web

import (
	"embed"
	"io/fs"
	"path"
)

var (
	//go:embed static/*
	embeddedStaticFiles embed.FS

	//go:embed templates/*
	embeddedTemplates embed.FS
)

// subdirFS serves the files below dir of an embedded tree, so the view engine
// can address "archive/list" instead of "templates/archive/list".
type subdirFS struct {
	content embed.FS
	dir     string
}

func (s subdirFS) Open(name string) (fs.File, error) {
	return s.content.Open(path.Join(s.dir, name))
}
