package bundle

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"text/template"
	"time"
)

// readmeTemplate renders the human-facing bundle summary.
var readmeTemplate = template.Must(template.New("readme").Parse(`# Compass Engine bundle

Generated {{.Date}}. Do not edit: this tree is fully regenerated on every
build and replicated into downstream projects by ` + "`compass push`" + `.

## Contents

| Subtree | Files |
|---------|-------|
{{range .Subtrees}}| {{.Name}} | {{.Count}} |
{{end}}`))

type readmeSubtree struct {
	Name  string
	Count int
}

type readmeData struct {
	Date     string
	Subtrees []readmeSubtree
}

// writeReadme generates the bundle README from the subtree file counts.
func writeReadme(stage string, counts map[string]int) error {
	data := readmeData{Date: time.Now().Format("2006-01-02")}
	for name, count := range counts {
		data.Subtrees = append(data.Subtrees, readmeSubtree{Name: name, Count: count})
	}
	sort.Slice(data.Subtrees, func(i, j int) bool {
		return data.Subtrees[i].Name < data.Subtrees[j].Name
	})

	f, err := os.Create(filepath.Join(stage, readmeName))
	if err != nil {
		return fmt.Errorf("creating README: %w", err)
	}
	defer f.Close()

	if err := readmeTemplate.Execute(f, data); err != nil {
		return fmt.Errorf("rendering README: %w", err)
	}
	return nil
}
