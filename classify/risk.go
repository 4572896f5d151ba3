package classify

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/lexandro/codexray/profile"
)

// RiskRule is one entry of the risk catalog.
type RiskRule struct {
	Category    profile.Category
	Pattern     *regexp.Regexp
	Severity    profile.Severity
	Remediation string
}

// NewRiskRule compiles pattern case-insensitively.
func NewRiskRule(category profile.Category, pattern string, severity profile.Severity, remediation string) (RiskRule, error) {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return RiskRule{}, fmt.Errorf("compiling risk pattern for %q: %w", category, err)
	}
	return RiskRule{Category: category, Pattern: re, Severity: severity, Remediation: remediation}, nil
}

func mustRiskRule(category profile.Category, pattern string, severity profile.Severity, remediation string) RiskRule {
	rule, err := NewRiskRule(category, pattern, severity, remediation)
	if err != nil {
		panic(err)
	}
	return rule
}

// DefaultRiskRules is the built-in catalog. Compiled once at package init.
var DefaultRiskRules = []RiskRule{
	mustRiskRule(profile.CategoryHardcodedCredential,
		`(password|passwd|pwd)\s*=\s*["'][^"']+["']`,
		profile.SeverityHigh, "Move to environment variables."),
	mustRiskRule(profile.CategorySecretAssignment,
		`(api_key|secret|token)\s*=\s*["'][^"']+["']`,
		profile.SeverityCritical, "Revoke and use a Vault."),
	mustRiskRule(profile.CategoryHardcodedSleep,
		`(time\.sleep|Thread\.sleep|await\s+page\.waitForTimeout|WebUI\.delay)`,
		profile.SeverityMedium, "Use explicit waits."),
	mustRiskRule(profile.CategoryDebugPrint,
		`(console\.log|System\.out\.print|print\(|println)`,
		profile.SeverityLow, "Use a Logger."),
}

// detectRisks appends one finding per non-overlapping match, rule by rule.
func detectRisks(rules []RiskRule, content string) []profile.RiskFinding {
	var findings []profile.RiskFinding
	for _, rule := range rules {
		for _, loc := range rule.Pattern.FindAllStringIndex(content, -1) {
			findings = append(findings, profile.RiskFinding{
				Category:    rule.Category,
				Line:        LineAt(content, loc[0]),
				Severity:    rule.Severity,
				Remediation: rule.Remediation,
			})
		}
	}
	return findings
}

// LineAt returns the 1-based line containing byte offset.
func LineAt(content string, offset int) int {
	if offset > len(content) {
		offset = len(content)
	}
	return strings.Count(content[:offset], "\n") + 1
}
