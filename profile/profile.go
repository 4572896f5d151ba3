package profile

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// Purpose is a coarse label describing a file's role in the project.
type Purpose string

const (
	PurposeNodeDependencies   Purpose = "Node.js Dependencies"
	PurposeMavenBuild         Purpose = "Maven Build Config"
	PurposeGradleBuild        Purpose = "Gradle Build Config"
	PurposePythonDependencies Purpose = "Python Dependencies"
	PurposeDockerServices     Purpose = "Docker Services"
	PurposeContainer          Purpose = "Container Definition"
	PurposeJenkinsPipeline    Purpose = "Jenkins Pipeline"
	PurposePlaywrightConfig   Purpose = "Playwright Config"
	PurposeCypressConfig      Purpose = "Cypress Config"
	PurposeDocumentation      Purpose = "Project Documentation"
	PurposeEnvironmentConfig  Purpose = "Environment Config"
	PurposeGitIgnore          Purpose = "Git Ignore"
	PurposeTestScript         Purpose = "Test Script"
	PurposeJavaSource         Purpose = "Java Source"
	PurposePythonSource       Purpose = "Python Source"
	PurposeJSSource           Purpose = "JS/TS Source"
	PurposeKatalonScript      Purpose = "Katalon Script"
	PurposeCSharpSource       Purpose = "C# Source"
	PurposeGoSource           Purpose = "Go Source"
	PurposeRustSource         Purpose = "Rust Source"
	PurposeRubySource         Purpose = "Ruby Source"
	PurposePHPSource          Purpose = "PHP Source"
	PurposeTerraformConfig    Purpose = "Terraform Config"
	PurposeShellScript        Purpose = "Shell Script"
	PurposeSourceFile         Purpose = "Source File"
)

// Category identifies the kind of risk a finding reports.
type Category string

const (
	CategoryHardcodedCredential Category = "hardcoded credential"
	CategorySecretAssignment    Category = "api key or secret"
	CategoryHardcodedSleep      Category = "hardcoded sleep"
	CategoryDebugPrint          Category = "debug print"
)

// Severity is an ordered risk level. Higher values are more severe.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

var severityNames = [...]string{"Low", "Medium", "High", "Critical"}

func (s Severity) String() string {
	if s < SeverityLow || s > SeverityCritical {
		return "Unknown"
	}
	return severityNames[s]
}

// ParseSeverity converts a case-sensitive severity name back into a Severity.
func ParseSeverity(name string) (Severity, bool) {
	for i, n := range severityNames {
		if n == name {
			return Severity(i), true
		}
	}
	return SeverityLow, false
}

func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Severity) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, ok := ParseSeverity(name)
	if !ok {
		return fmt.Errorf("unknown severity %q", name)
	}
	*s = parsed
	return nil
}

// RiskFinding is a single pattern match flagged as a potential security or quality issue.
type RiskFinding struct {
	Category    Category `json:"category"`
	Line        int      `json:"line"` // 1-based
	Severity    Severity `json:"severity"`
	Remediation string   `json:"remediation"`
}

// FileRecord is the profile of one admitted file.
type FileRecord struct {
	RelativePath string        `json:"relative_path"` // forward slashes, unique within a scan
	Language     string        `json:"language"`
	Purpose      Purpose       `json:"purpose"`
	Risks        []RiskFinding `json:"risks"`
	Objectives   []string      `json:"objectives"`
	RawImports   []string      `json:"raw_imports"`
}

// Edge is a directed dependency from a source file basename to an unresolved import token.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// PathSet is a set of relative paths. It marshals as a sorted JSON array.
type PathSet map[string]struct{}

func (s PathSet) Add(path string) { s[path] = struct{}{} }

func (s PathSet) Has(path string) bool {
	_, ok := s[path]
	return ok
}

// Sorted returns the members in ascending order.
func (s PathSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func (s PathSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

func (s *PathSet) UnmarshalJSON(data []byte) error {
	var paths []string
	if err := json.Unmarshal(data, &paths); err != nil {
		return err
	}
	set := make(PathSet, len(paths))
	for _, p := range paths {
		set.Add(p)
	}
	*s = set
	return nil
}

// UsedByIndex maps a target token to the set of files that reference it.
type UsedByIndex map[string]PathSet

// Hub is a target token together with the files that depend on it.
type Hub struct {
	Token      string   `json:"token"`
	Dependents []string `json:"dependents"`
}

// Result is the complete, immutable output of one scan.
type Result struct {
	ScanID    string                 `json:"scan_id"`
	Root      string                 `json:"root"`
	Records   map[string]*FileRecord `json:"records"`
	Edges     []Edge                 `json:"edges"`
	UsedBy    UsedByIndex            `json:"used_by"`
	Skipped   []Skip                 `json:"skipped,omitempty"`
	StartedAt time.Time              `json:"started_at"`
	Duration  time.Duration          `json:"duration"`
}

// Skip records why an admitted file did not produce a FileRecord.
type Skip struct {
	RelativePath string `json:"relative_path"`
	Reason       string `json:"reason"`
}

// SortedPaths returns the record keys in ascending order.
func (r *Result) SortedPaths() []string {
	paths := make([]string, 0, len(r.Records))
	for p := range r.Records {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Totals summarises a result the way the report header shows it.
type Totals struct {
	Files int `json:"files"`
	Tests int `json:"tests"`
	Risks int `json:"risks"`
}

// Totals counts files, objectives and risk findings across all records.
func (r *Result) Totals() Totals {
	t := Totals{Files: len(r.Records)}
	for _, rec := range r.Records {
		t.Tests += len(rec.Objectives)
		t.Risks += len(rec.Risks)
	}
	return t
}
