// Package templates holds the starter scripts a new buffer can begin from.
package templates

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

// Default is the template used when none is configured.
const Default = "blank"

//go:embed scripts/*.sh
var scripts embed.FS

// Lookup returns the named template.
func Lookup(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = Default
	}
	data, err := scripts.ReadFile(path.Join("scripts", name+".sh"))
	if err != nil {
		return "", fmt.Errorf("unknown template %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return string(data), nil
}

// Names lists the available templates.
func Names() []string {
	entries, err := fs.ReadDir(scripts, "scripts")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".sh"))
	}
	sort.Strings(names)
	return names
}
