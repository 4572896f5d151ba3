package classify

import (
	"strings"

	"github.com/lexandro/codexray/profile"
)

// PurposeRule maps a lowercase filename substring to a purpose tag.
type PurposeRule struct {
	Substring string
	Purpose   profile.Purpose
}

// DefaultPurposeRules is evaluated top to bottom; the first rule whose substring
// occurs in the lowercased filename wins. Order is load-bearing: manifest and
// config names must precede the test rule, which must precede language rules.
var DefaultPurposeRules = []PurposeRule{
	{"package.json", profile.PurposeNodeDependencies},
	{"pom.xml", profile.PurposeMavenBuild},
	{"build.gradle", profile.PurposeGradleBuild},
	{"requirements.txt", profile.PurposePythonDependencies},
	{"docker-compose", profile.PurposeDockerServices},
	{"dockerfile", profile.PurposeContainer},
	{"jenkinsfile", profile.PurposeJenkinsPipeline},
	{"playwright.config", profile.PurposePlaywrightConfig},
	{"cypress.config", profile.PurposeCypressConfig},
	{"readme.md", profile.PurposeDocumentation},
	{".env", profile.PurposeEnvironmentConfig},
	{".gitignore", profile.PurposeGitIgnore},
	{"test", profile.PurposeTestScript},
	{"spec", profile.PurposeTestScript},
	{".java", profile.PurposeJavaSource},
	{".py", profile.PurposePythonSource},
	{".js", profile.PurposeJSSource},
	{".ts", profile.PurposeJSSource},
	{".groovy", profile.PurposeKatalonScript},
	{".cs", profile.PurposeCSharpSource},
	{".go", profile.PurposeGoSource},
	{".rs", profile.PurposeRustSource},
	{".rb", profile.PurposeRubySource},
	{".php", profile.PurposePHPSource},
	{".tf", profile.PurposeTerraformConfig},
	{".sh", profile.PurposeShellScript},
}

// purposeOf runs the cascade against the base filename.
func purposeOf(rules []PurposeRule, filename string) profile.Purpose {
	name := strings.ToLower(filename)
	for _, rule := range rules {
		if strings.Contains(name, rule.Substring) {
			return rule.Purpose
		}
	}
	return profile.PurposeSourceFile
}
