// Package assets embeds the web templates, the stylesheet and the built-in
// seed library.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.html static/* seed.json
var FS embed.FS

// Templates returns the HTML templates rooted at templates/.
func Templates() fs.FS {
	sub, err := fs.Sub(FS, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

// Static returns the static files rooted at static/.
func Static() fs.FS {
	sub, err := fs.Sub(FS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// SeedJSON returns the built-in library in its persisted JSON form.
func SeedJSON() ([]byte, error) {
	return FS.ReadFile("seed.json")
}
