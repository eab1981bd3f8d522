package generator

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGolden(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestBuildPrompt_Golden(t *testing.T) {
	cases := []struct {
		name        string
		instruction string
		base        string
	}{
		{"prompt_browsers", "add menu for Browsers", "#!/bin/bash\n"},
		{"prompt_empty_base", "  create a backup menu  ", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := BuildPrompt(tc.instruction, tc.base)
			require.NoError(t, err)
			newGolden(t).Assert(t, tc.name, []byte(got))
		})
	}
}

func TestBuildPrompt_EmbedsBaseVerbatim(t *testing.T) {
	base := "#!/bin/bash\n\n# keep me\nshow_menu() {\n  echo $1\n}\n"
	got, err := BuildPrompt("add a Games menu", base)
	require.NoError(t, err)
	assert.Contains(t, got, base)
	assert.NotContains(t, got, "(empty)")
}

func TestBuildPrompt_BrowserRecipes(t *testing.T) {
	got, err := BuildPrompt("add menu for Browsers", "")
	require.NoError(t, err)
	assert.Contains(t, got, "7. For browser installations:")
	assert.Contains(t, got, "ppa:mozillateam/ppa")
	assert.Contains(t, got, "brave-browser-archive-keyring.gpg")
	assert.Contains(t, got, "google-chrome-stable")
	assert.Contains(t, got, "8. Always handle user cancellation:")
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "#!/bin/bash\necho hi", "#!/bin/bash\necho hi\n"},
		{"already terminated", "#!/bin/bash\n", "#!/bin/bash\n"},
		{"surrounding blank lines", "\n\n  \n#!/bin/bash\necho hi\n\n\n", "#!/bin/bash\necho hi\n"},
		{"bash fence", "```bash\n#!/bin/bash\necho hi\n```", "#!/bin/bash\necho hi\n"},
		{"bare fence", "```\n#!/bin/bash\n```\n", "#!/bin/bash\n"},
		{"indentation kept", "  echo hi\n", "  echo hi\n"},
		{"inner blank lines kept", "a\n\n\nb", "a\n\n\nb\n"},
		{"empty", "", ""},
		{"whitespace only", " \n\t\n", ""},
		{"empty fence", "```bash\n```", ""},
		{"fence only", "```", ""},
		{"fence only with blank lines", "\n```\n\n", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Normalize(tc.in))
		})
	}
}

func TestClassify(t *testing.T) {
	err := assert.AnError
	assert.ErrorIs(t, classify("gemini", 401, err), ErrAuth)
	assert.ErrorIs(t, classify("gemini", 403, err), ErrAuth)
	assert.ErrorIs(t, classify("gemini", 429, err), ErrUpstream)
	assert.ErrorIs(t, classify("gemini", 0, err), ErrUpstream)
	assert.ErrorIs(t, classify("gemini", 400, err), ErrUpstream)
}
