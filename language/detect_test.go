package language

import "testing"

func Test_Detect_ByExtension(t *testing.T) {
	tests := map[string]string{
		"src/app.ts":             "TypeScript",
		"src/components/App.tsx": "TypeScript",
		"lib/util.js":            "JavaScript",
		"main.py":                "Python",
		"Login.java":             "Java",
		"Keywords.groovy":        "Groovy",
		"build.gradle":           "Gradle",
		"config/app.properties":  "Properties",
		"README.MD":              "Markdown",
		"main.tf":                "Terraform",
	}
	for path, want := range tests {
		if got := Detect(path); got != want {
			t.Errorf("Detect(%q) = %q, want %q", path, got, want)
		}
	}
}

func Test_Detect_ExtensionlessNames(t *testing.T) {
	if got := Detect("ci/Jenkinsfile"); got != "Groovy" {
		t.Errorf("expected Groovy, got %s", got)
	}
	if got := Detect("Dockerfile"); got != "Dockerfile" {
		t.Errorf("expected Dockerfile, got %s", got)
	}
}

func Test_Detect_Unknown(t *testing.T) {
	if got := Detect("data.xyz"); got != Unknown {
		t.Errorf("expected Unknown, got %s", got)
	}
}
