// Package classify derives a file's purpose, risk findings and test objectives
// from its name and content. A Classifier is immutable after construction and
// safe for concurrent use.
package classify

import (
	"strings"

	"github.com/lexandro/codexray/profile"
)

// Objective tags.
const (
	ObjectiveJavaTest         = "Java/TestNG Test"
	ObjectivePlaywrightTest   = "JS/Playwright Test"
	ObjectiveAutomatedScript  = "Automated Script"
	javaTestMarker            = "@Test"
	playwrightTestDeclaration = "test("
)

// Classifier holds the purpose cascade and the risk catalog.
type Classifier struct {
	purposeRules []PurposeRule
	riskRules    []RiskRule
}

// New creates a Classifier. Nil slices fall back to the defaults.
func New(purposeRules []PurposeRule, riskRules []RiskRule) *Classifier {
	if purposeRules == nil {
		purposeRules = DefaultPurposeRules
	}
	if riskRules == nil {
		riskRules = DefaultRiskRules
	}
	return &Classifier{
		purposeRules: append([]PurposeRule(nil), purposeRules...),
		riskRules:    append([]RiskRule(nil), riskRules...),
	}
}

// Default returns a Classifier with the built-in rules.
func Default() *Classifier {
	return New(nil, nil)
}

// Classify maps a base filename and its content to purpose, risks and objectives.
func (c *Classifier) Classify(filename string, content string) (profile.Purpose, []profile.RiskFinding, []string) {
	return purposeOf(c.purposeRules, filename), detectRisks(c.riskRules, content), detectObjectives(filename, content)
}

// Purpose runs only the purpose cascade.
func (c *Classifier) Purpose(filename string) profile.Purpose {
	return purposeOf(c.purposeRules, filename)
}

// Risks runs only the risk catalog.
func (c *Classifier) Risks(content string) []profile.RiskFinding {
	return detectRisks(c.riskRules, content)
}

// detectObjectives yields at most one tag, and only for test-like filenames.
func detectObjectives(filename string, content string) []string {
	name := strings.ToLower(filename)
	if !strings.Contains(name, "test") && !strings.Contains(name, "spec") {
		return []string{}
	}
	switch {
	case strings.Contains(content, javaTestMarker):
		return []string{ObjectiveJavaTest}
	case strings.Contains(content, playwrightTestDeclaration):
		return []string{ObjectivePlaywrightTest}
	default:
		return []string{ObjectiveAutomatedScript}
	}
}
