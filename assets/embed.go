package assets

import (
	"embed"
	"io/fs"
)

//go:embed configs/*.json web
var FS embed.FS

// Configs returns the built-in game configurations
func Configs() fs.FS {
	sub, err := fs.Sub(FS, "configs")
	if err != nil {
		panic(err)
	}
	return sub
}

// Web returns the browser client
func Web() fs.FS {
	sub, err := fs.Sub(FS, "web")
	if err != nil {
		panic(err)
	}
	return sub
}
