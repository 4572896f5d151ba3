package ignore

// DefaultIgnoredDirs are directory names that are never descended into.
// Matching is on the exact directory name.
var DefaultIgnoredDirs = []string{
	"node_modules",
	".git",
	"venv",
	"dist",
	"bin",
	"obj",
	".idea",
	"target",
	".vscode",
}

// DefaultTextExtensions is the admission allowlist. A file is admitted when
// its name ends with one of these (case-sensitive).
var DefaultTextExtensions = []string{
	".ts",
	".js",
	".py",
	".java",
	".groovy",
	".gradle",
	".tsx",
	".jsx",
	".mjs",
	".cjs",
	".kt",
	".sh",
	".yml",
	".yaml",
	".json",
	".md",
	".txt",
	".xml",
	".dockerfile",
	".properties",
	".cs",
	".go",
	".rb",
	".php",
	".rs",
	".tf",
}

// DefaultExtensionlessNames are admitted by exact filename.
var DefaultExtensionlessNames = []string{
	"Dockerfile",
	"Jenkinsfile",
}
