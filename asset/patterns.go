package asset

import (
	"embed"
	"io/fs"
)

//go:embed patterns/*.xml
var embedded embed.FS

// PatternsRoot is the directory inside Patterns holding the samples
const PatternsRoot = "patterns"

// Patterns returns the built-in sample patterns, used when no pattern directory is configured
// Entries discovered here have no disk path so hot reload stays off for them
func Patterns() fs.FS { return embedded }
