// Package site renders a project's documents into a static HTML site.
package site

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/karimzidan/pmdoc/internal/docstore"
)

// Generator converts a project's stored documents into a static HTML site.
type Generator struct {
	store     *docstore.Store
	OutputDir string
}

// NewGenerator creates a site Generator writing to outputDir.
func NewGenerator(store *docstore.Store, outputDir string) *Generator {
	return &Generator{store: store, OutputDir: outputDir}
}

// pageData holds the data passed to the HTML template for each page.
type pageData struct {
	Title       string
	ProjectName string
	Content     template.HTML
	Nav         []navEntry
	Active      string
}

type navEntry struct {
	Title    string
	Href     string
	Category string
}

// Generate builds the site for one project. Returns the number of pages
// written, the index page included.
func (g *Generator) Generate(ctx context.Context, projectID string) (int, error) {
	project, err := g.store.GetProject(ctx, projectID)
	if err != nil {
		return 0, fmt.Errorf("load project: %w", err)
	}

	docs, err := g.store.ListDocuments(ctx, projectID)
	if err != nil {
		return 0, fmt.Errorf("list documents: %w", err)
	}
	if len(docs) == 0 {
		return 0, fmt.Errorf("project %s has no documents", projectID)
	}

	// Stable page order: category, then title.
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].Category != docs[j].Category {
			return docs[i].Category < docs[j].Category
		}
		return docs[i].Title < docs[j].Title
	})

	if err := os.MkdirAll(g.OutputDir, 0o755); err != nil {
		return 0, err
	}
	if err := os.WriteFile(filepath.Join(g.OutputDir, "style.css"), []byte(cssContent), 0o644); err != nil {
		return 0, err
	}

	nav := make([]navEntry, len(docs))
	for i, d := range docs {
		nav[i] = navEntry{
			Title:    d.Title,
			Href:     pageName(d),
			Category: string(d.Category),
		}
	}

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle("github"),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
		),
	)

	tmpl, err := template.New("page").Parse(pageTemplate)
	if err != nil {
		return 0, fmt.Errorf("parsing page template: %w", err)
	}

	pages := 0
	for _, d := range docs {
		var buf bytes.Buffer
		if err := md.Convert([]byte(d.Content), &buf); err != nil {
			return pages, fmt.Errorf("converting %s: %w", d.Type, err)
		}

		data := pageData{
			Title:       d.Title,
			ProjectName: project.Name,
			Content:     template.HTML(buf.String()),
			Nav:         nav,
			Active:      pageName(d),
		}
		if err := g.writePage(pageName(d), tmpl, data); err != nil {
			return pages, err
		}
		pages++
	}

	if err := g.writeIndex(tmpl, project, nav); err != nil {
		return pages, err
	}
	return pages + 1, nil
}

// ExportMarkdown writes each document as a raw markdown file to dir.
func (g *Generator) ExportMarkdown(ctx context.Context, projectID, dir string) (int, error) {
	docs, err := g.store.ListDocuments(ctx, projectID)
	if err != nil {
		return 0, fmt.Errorf("list documents: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, err
	}

	written := 0
	for _, d := range docs {
		name := string(d.Type) + ".md"
		if err := os.WriteFile(filepath.Join(dir, name), []byte(d.Content), 0o644); err != nil {
			return written, fmt.Errorf("writing %s: %w", name, err)
		}
		written++
	}
	return written, nil
}

func (g *Generator) writePage(name string, tmpl *template.Template, data pageData) error {
	f, err := os.Create(filepath.Join(g.OutputDir, name))
	if err != nil {
		return err
	}
	defer f.Close()
	return tmpl.Execute(f, data)
}

func (g *Generator) writeIndex(tmpl *template.Template, project *docstore.Project, nav []navEntry) error {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("<h1>%s</h1>\n", template.HTMLEscapeString(project.Name)))
	if project.Description != "" {
		buf.WriteString(fmt.Sprintf("<p>%s</p>\n", template.HTMLEscapeString(project.Description)))
	}

	lastCategory := ""
	for _, n := range nav {
		if n.Category != lastCategory {
			buf.WriteString(fmt.Sprintf("<h2>%s</h2>\n", template.HTMLEscapeString(n.Category)))
			lastCategory = n.Category
		}
		buf.WriteString(fmt.Sprintf("<p><a href=%q>%s</a></p>\n", n.Href, template.HTMLEscapeString(n.Title)))
	}

	return g.writePage("index.html", tmpl, pageData{
		Title:       project.Name,
		ProjectName: project.Name,
		Content:     template.HTML(buf.String()),
		Nav:         nav,
	})
}

// pageName builds the output filename for a document.
func pageName(d docstore.Record) string {
	return string(d.Type) + ".html"
}
