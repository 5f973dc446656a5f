package main

import (
	"fmt"
	"strings"

	"metmaster/internal/release"
)

// releaseDir resolves a build id argument to its release directory. An empty
// id selects the current build.
func releaseDir(root string, args []string) (string, string, error) {
	layout := release.Layout{Root: root}
	id := ""
	if len(args) > 0 {
		id = strings.TrimSpace(args[0])
	}
	if id == "" {
		current, err := release.ReadCurrent(root)
		if err != nil {
			return "", "", err
		}
		id = current
	}
	if !release.ValidBuildID(id) {
		return "", "", fmt.Errorf("invalid build id %q", id)
	}
	return id, layout.ReleaseDir(id), nil
}
