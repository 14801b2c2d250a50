// Package main provides the entry point of TigerArchive, the members portal of
// an alumni archive. It serves yearbooks, photo galleries and history posts
// through a Fiber web interface and a JSON API. Every request passes one
// authorization check that combines the member's role with the capability the
// route needs, and every listing only returns posts up to the member's rank.
// Content lives in a gorm backed store and can be seeded from a legacy
// WordPress export with the import command.
package main
