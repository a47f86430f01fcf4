package project

import (
	"crypto/sha256"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]`)

// ID derives a stable identifier for the project rooted at root: the
// lowercased directory name followed by a short hash of the full path, so
// two checkouts with the same name keep separate state.
func ID(root string) string {
	clean := filepath.Clean(root)
	name := strings.ToLower(nonAlnum.ReplaceAllString(filepath.Base(clean), ""))

	hash := sha256.Sum256([]byte(clean))
	return fmt.Sprintf("%s-%x", name, hash[:2])
}
