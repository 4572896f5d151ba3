package language

import (
	"path/filepath"
	"strings"
)

// Unknown is returned for files whose language cannot be told from the name.
const Unknown = "Unknown"

// byExtension maps lowercase extensions (without dot) to language names.
var byExtension = map[string]string{
	"ts": "TypeScript", "tsx": "TypeScript", "mts": "TypeScript",
	"js": "JavaScript", "jsx": "JavaScript", "mjs": "JavaScript", "cjs": "JavaScript",
	"py":     "Python",
	"java":   "Java",
	"groovy": "Groovy", "gradle": "Gradle",
	"kt":  "Kotlin",
	"cs":  "C#",
	"go":  "Go",
	"rb":  "Ruby",
	"php": "PHP",
	"rs":  "Rust",
	"sh":  "Shell",
	"tf":  "Terraform",
	"yml": "YAML", "yaml": "YAML",
	"json":       "JSON",
	"xml":        "XML",
	"md":         "Markdown",
	"txt":        "Text",
	"properties": "Properties",
	"dockerfile": "Dockerfile",
}

// byName covers conventional extensionless files.
var byName = map[string]string{
	"dockerfile":  "Dockerfile",
	"jenkinsfile": "Groovy",
	"makefile":    "Makefile",
}

// Detect returns the language for a file path, or Unknown.
func Detect(filePath string) string {
	base := filepath.Base(filePath)
	if lang, ok := byName[strings.ToLower(base)]; ok {
		return lang
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(base), "."))
	if lang, ok := byExtension[ext]; ok {
		return lang
	}
	return Unknown
}
