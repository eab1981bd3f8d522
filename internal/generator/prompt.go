package generator

import (
	_ "embed"
	"strings"
	"text/template"
)

//go:embed prompt.tmpl
var promptSource string

var promptTemplate = template.Must(template.New("prompt").Parse(promptSource))

// BuildPrompt combines the user's instruction and the current script into the single
// preserve-and-merge prompt sent to every provider. The service has no structured edit
// API, so the merge rules live in the prompt text.
func BuildPrompt(instruction, baseText string) (string, error) {
	var b strings.Builder
	err := promptTemplate.Execute(&b, struct {
		Instruction string
		BaseText    string
	}{
		Instruction: strings.TrimSpace(instruction),
		BaseText:    baseText,
	})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}

// Normalize turns a raw service response into a script: one enclosing Markdown fence
// is removed, leading and trailing blank lines are dropped and exactly one trailing
// newline is kept. It returns "" when nothing usable remains.
func Normalize(text string) string {
	s := trimBlankLines(text)
	if strings.HasPrefix(s, "```") && strings.HasSuffix(s, "```") {
		if i := strings.IndexByte(s, '\n'); i >= 0 && i < len(s)-3 {
			s = trimBlankLines(s[i+1 : len(s)-3])
		}
	}
	if strings.Trim(s, "`") == "" {
		return ""
	}
	return s + "\n"
}

func trimBlankLines(s string) string {
	s = strings.TrimRight(s, " \t\r\n")
	for {
		i := strings.IndexByte(s, '\n')
		if i < 0 || strings.TrimSpace(s[:i]) != "" {
			break
		}
		s = s[i+1:]
	}
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return s
}
