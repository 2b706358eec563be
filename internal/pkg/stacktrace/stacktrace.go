// Package stacktrace trims raw goroutine stacks down to the frames of this module.
package stacktrace

import (
	"bufio"
	"bytes"
	"strings"
)

const maxFrames = 16

// InternalPaths returns the "internal/<pkg>/<file>.go:<line>" locations found
// in a debug.Stack dump, outermost call last. Frames outside internal/ are dropped.
func InternalPaths(stack []byte) []string {
	var paths []string

	sc := bufio.NewScanner(bytes.NewReader(stack))
	for sc.Scan() && len(paths) < maxFrames {
		line := strings.TrimSpace(sc.Text())

		// location lines look like "/src/app/internal/x/y.go:42 +0x1d"
		loc, _, _ := strings.Cut(line, " +0x")
		if !strings.Contains(loc, ".go:") {
			continue
		}

		_, rel, ok := strings.Cut(loc, "/internal/")
		if !ok {
			continue
		}
		paths = append(paths, "internal/"+rel)
	}

	return paths
}
