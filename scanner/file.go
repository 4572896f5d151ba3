package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lexandro/codexray/classify"
	"github.com/lexandro/codexray/imports"
	"github.com/lexandro/codexray/language"
	"github.com/lexandro/codexray/profile"
)

// FileOutcome is the per-file result: exactly one of Record or Skip is set.
type FileOutcome struct {
	Record *profile.FileRecord
	Skip   *profile.Skip
}

// Skipped reports whether the file was left out of the result.
func (o FileOutcome) Skipped() bool {
	return o.Skip != nil
}

func skip(relativePath string, reason string) FileOutcome {
	return FileOutcome{Skip: &profile.Skip{RelativePath: relativePath, Reason: reason}}
}

// profileContent builds the FileRecord for one file on disk.
func profileContent(
	absolutePath string,
	relativePath string,
	classifier *classify.Classifier,
	extractor *imports.Extractor,
) (*profile.FileRecord, error) {
	data, err := readFileWithRetry(absolutePath)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	content := language.DecodeText(data)
	name := filepath.Base(absolutePath)

	purpose, risks, objectives := classifier.Classify(name, content)
	if risks == nil {
		risks = []profile.RiskFinding{}
	}

	return &profile.FileRecord{
		RelativePath: relativePath,
		Language:     language.Detect(name),
		Purpose:      purpose,
		Risks:        risks,
		Objectives:   objectives,
		RawImports:   extractor.Extract(imports.ExtensionKey(name), content),
	}, nil
}

// readFileWithRetry attempts to read a file, retrying once after a short delay
// if the file is locked (common on Windows when editors are saving).
func readFileWithRetry(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) || os.IsPermission(err) {
			return nil, err
		}
		time.Sleep(50 * time.Millisecond)
		return os.ReadFile(path)
	}
	return data, nil
}
