package imports

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Extractor_ECMAScript(t *testing.T) {
	content := `import { x } from "../utils/auth"
import React from 'react'
export * from './types'
const fs = require('fs')
const lodash = require("lodash/fp")
`
	got := Default().Extract("js", content)

	assert.Equal(t, []string{"../utils/auth", "react", "./types", "fs", "lodash/fp"}, got)
}

func Test_Extractor_TypeScriptSharesPattern(t *testing.T) {
	got := Default().Extract(".tsx", `import { Button } from "@/components/Button"`)
	assert.Equal(t, []string{"@/components/Button"}, got)
}

func Test_Extractor_Python(t *testing.T) {
	content := "import os\nfrom app.models import User\n  import indented\nx = 'import nope'\n"
	got := Default().Extract("py", content)

	assert.Equal(t, []string{"os", "app.models"}, got)
}

func Test_Extractor_Java(t *testing.T) {
	content := "package a;\nimport java.util.List;\nimport com.acme.Service;\nimport static org.junit.Assert.assertTrue;\n"
	got := Default().Extract("java", content)

	assert.Equal(t, []string{"java.util.List", "com.acme.Service"}, got)
}

func Test_Extractor_Groovy(t *testing.T) {
	content := "import com.kms.katalon.core.webui.keyword.WebUiBuiltInKeywords as WebUI\nimport internal.GlobalVariable\n"
	got := Default().Extract("groovy", content)

	assert.Equal(t, []string{"com.kms.katalon.core.webui.keyword.WebUiBuiltInKeywords", "internal.GlobalVariable"}, got)
}

func Test_Extractor_UnknownExtension(t *testing.T) {
	got := Default().Extract("rb", "require 'json'")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func Test_Extractor_NoDeduplication(t *testing.T) {
	got := Default().Extract("js", "require('a1')\nrequire('a1')\n")
	assert.Equal(t, []string{"a1", "a1"}, got)
}

func Test_NewExtractor_InvalidPattern(t *testing.T) {
	_, err := NewExtractor(map[string]string{"js": `(`})
	assert.Error(t, err)
}

func Test_NewExtractor_EmptyPatternIsNotAnError(t *testing.T) {
	e, err := NewExtractor(map[string]string{"rb": ""})
	require.NoError(t, err)
	assert.Empty(t, e.Extract("rb", "require 'x'"))
}

func Test_ExtensionKey(t *testing.T) {
	tests := map[string]string{
		"src/login.js":       "js",
		"a.spec.ts":          "ts",
		"Dockerfile":         "Dockerfile",
		"dir.v2/Jenkinsfile": "Jenkinsfile",
		".env":               "env",
	}
	for in, want := range tests {
		assert.Equal(t, want, ExtensionKey(in), in)
	}
}
