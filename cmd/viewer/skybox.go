package main

import (
	"path/filepath"
	"strings"

	"github.com/Faultbox/skyscene/internal/engine/texture"
)

// skyboxFromFace splits the path of any one face file into the skybox
// directory and name: /sky/rainbow_up.png gives /sky and rainbow.
func skyboxFromFace(path string) (dir, name string, ok bool) {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	i := strings.LastIndexByte(base, '_')
	if i <= 0 {
		return "", "", false
	}
	suffix := strings.ToLower(base[i+1:])
	for _, s := range texture.FaceSuffixes {
		if s == suffix {
			return filepath.Dir(path), base[:i], true
		}
	}
	return "", "", false
}
