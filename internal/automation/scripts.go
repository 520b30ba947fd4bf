package automation

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"
)

//go:embed scripts/*.js
var scriptFS embed.FS

const languageJavaScript = "JavaScript"

// LookupScript returns the embedded script with the given name.
func LookupScript(name string) (*Script, error) {
	data, err := scriptFS.ReadFile(path.Join("scripts", name+".js"))
	if err != nil {
		return nil, fmt.Errorf("no script named %q", name)
	}
	return &Script{
		Name:     name,
		Language: languageJavaScript,
		Source:   string(data),
	}, nil
}

// ScriptNames lists the embedded scripts.
func ScriptNames() []string {
	entries, err := scriptFS.ReadDir("scripts")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".js"))
	}
	sort.Strings(names)
	return names
}
