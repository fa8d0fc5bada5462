package skill

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	raw := `---
name: API Security Testing
description: Test API endpoints for authentication and authorization flaws
allowed-tools: bash, curl
category: security
---

# API Security Testing

Start with the authentication endpoints.
`

	rec, err := Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, "api-security-testing", rec.ID)
	assert.Equal(t, "API Security Testing", rec.Name)
	assert.Equal(t, "Test API endpoints for authentication and authorization flaws", rec.Description)
	assert.Equal(t, []string{"bash", "curl"}, rec.AllowedTools)
	assert.Equal(t, map[string]string{"category": "security"}, rec.Extra)
	assert.Contains(t, rec.Body, "# API Security Testing")
	assert.NotContains(t, rec.Body, "allowed-tools")
	assert.Equal(t, len(rec.Body), rec.SizeBytes)
}

func TestParseAllowedToolsList(t *testing.T) {
	raw := `---
name: deploy
description: Deploy the service
allowed-tools:
  - bash
  - kubectl
---

Run the deploy pipeline.
`

	rec, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"bash", "kubectl"}, rec.AllowedTools)
}

func TestParseNoAllowedTools(t *testing.T) {
	raw := `---
name: writing
description: Improve prose
---

Body.
`

	rec, err := Parse(raw)
	require.NoError(t, err)
	assert.Empty(t, rec.AllowedTools)
	assert.Nil(t, rec.Extra)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr string
	}{
		{
			name:    "no frontmatter",
			raw:     "# Just a heading\n\nSome text.\n",
			wantErr: "no metadata block",
		},
		{
			name: "missing name",
			raw: `---
description: Something useful
---

Body.
`,
			wantErr: `"name" is missing`,
		},
		{
			name: "missing description",
			raw: `---
name: useful
---

Body.
`,
			wantErr: `"description" is missing`,
		},
		{
			name: "whitespace description",
			raw: `---
name: useful
description: "   "
---

Body.
`,
			wantErr: `"description" is missing`,
		},
		{
			name: "name with no slug characters",
			raw: `---
name: "!!!"
description: Something useful
---

Body.
`,
			wantErr: "no usable characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := Parse(tt.raw)
			require.Error(t, err)
			assert.Nil(t, rec)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseErrorTypes(t *testing.T) {
	_, err := Parse("no frontmatter here\n")
	var missingMeta *MissingMetadataError
	require.ErrorAs(t, err, &missingMeta)

	_, err = Parse("---\nname: thing\n---\n\nBody.\n")
	var missingField *MissingFieldError
	require.ErrorAs(t, err, &missingField)
	assert.Equal(t, "description", missingField.Field)

	_, err = Parse("---\nname: \"@@@\"\ndescription: d\n---\n\nBody.\n")
	var invalidName *InvalidNameError
	require.ErrorAs(t, err, &invalidName)
}

func TestParseNameTooLong(t *testing.T) {
	raw := "---\nname: " + strings.Repeat("x", MaxNameLength+1) + "\ndescription: d\n---\n\nBody.\n"

	_, err := Parse(raw)
	var invalidName *InvalidNameError
	require.ErrorAs(t, err, &invalidName)
	assert.Contains(t, invalidName.Reason, "longer than")
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "simple", in: "Code Review", want: "code-review"},
		{name: "whitespace runs", in: "API   Security\tTesting", want: "api-security-testing"},
		{name: "strips punctuation", in: "C++ Concurrency!", want: "c-concurrency"},
		{name: "already slug", in: "debugging", want: "debugging"},
		{name: "digits kept", in: "HTTP 2 Tuning", want: "http-2-tuning"},
		{name: "nothing usable", in: "!!!", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}
