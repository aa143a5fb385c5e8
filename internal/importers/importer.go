package importers

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/karimzidan/pmdoc/internal/artifact"
	"github.com/karimzidan/pmdoc/internal/contextbudget"
	"github.com/karimzidan/pmdoc/internal/docstore"
	"github.com/karimzidan/pmdoc/internal/tokens"
)

// DefaultMaxFileSize caps imported files at 1 MB.
const DefaultMaxFileSize int64 = 1 << 20

// importedQuality is the context-priority score given to imported documents.
// Imported material ranks below anything freshly generated.
const importedQuality = 4.0

// Options control an import run.
type Options struct {
	// Include restricts the import to matching glob patterns (** supported).
	// Empty means every markdown file.
	Include []string
	// Exclude skips matching files even when included.
	Exclude     []string
	MaxFileSize int64
	Logger      *log.Logger
}

// Result summarizes one import run.
type Result struct {
	FilesFound    int               `json:"files_found"`
	FilesImported int               `json:"files_imported"`
	Records       []docstore.Record `json:"records"`
	Errors        []string          `json:"errors,omitempty"`
}

// Importer loads existing markdown documentation into a project so it can
// serve as context for generation.
type Importer struct {
	store    *docstore.Store
	budgeter *contextbudget.Budgeter
	est      tokens.Estimator
	opts     Options
	logger   *log.Logger
}

// New creates an Importer. budgeter may be nil; when set, imported documents
// are registered as generation context immediately.
func New(store *docstore.Store, budgeter *contextbudget.Budgeter, opts Options) *Importer {
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = DefaultMaxFileSize
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Importer{
		store:    store,
		budgeter: budgeter,
		est:      tokens.Default,
		opts:     opts,
		logger:   opts.Logger,
	}
}

// ImportDirectory walks root and imports every markdown file that passes the
// include/exclude filters. Unreadable files are recorded as errors and do not
// abort the run.
func (im *Importer) ImportDirectory(ctx context.Context, projectID, root string) (*Result, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving import root: %w", err)
	}

	result := &Result{}

	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if walkErr != nil {
			return nil
		}
		if d.IsDir() {
			if shouldExcludeDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}

		relPath, err := filepath.Rel(absRoot, path)
		if err != nil {
			return nil
		}
		if !MatchesInclude(relPath, im.opts.Include) || MatchesExclude(relPath, im.opts.Exclude) {
			return nil
		}

		result.FilesFound++

		info, err := d.Info()
		if err == nil && info.Size() > im.opts.MaxFileSize {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: exceeds size limit", relPath))
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", relPath, err))
			return nil
		}

		rec, err := im.importFile(ctx, projectID, relPath, string(content))
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", relPath, err))
			return nil
		}

		result.Records = append(result.Records, *rec)
		result.FilesImported++
		return nil
	})
	if err != nil {
		return result, err
	}

	im.logger.Info("import finished",
		"root", root, "found", result.FilesFound,
		"imported", result.FilesImported, "errors", len(result.Errors))
	return result, nil
}

// importFile stores one markdown file as an imported document.
func (im *Importer) importFile(ctx context.Context, projectID, relPath, content string) (*docstore.Record, error) {
	title := ExtractTitle(content, relPath)

	docType, classified := ClassifyType(relPath, title)
	if !classified {
		docType = freeformType(relPath)
	}

	rec, err := im.store.SaveDocument(ctx, docstore.Record{
		ProjectID:     projectID,
		Type:          docType,
		Title:         title,
		Content:       content,
		TokenEstimate: im.est.EstimateTokens(content),
		Quality:       importedQuality,
		Source:        "imported",
	})
	if err != nil {
		return nil, err
	}

	if im.budgeter != nil {
		im.budgeter.TrackGeneratedDocument(rec.Context())
	}
	return rec, nil
}

// freeformType builds a stable document type for files that do not match any
// catalog artifact, so each imported file keeps its own context slot.
func freeformType(relPath string) artifact.Type {
	slug := strings.TrimSuffix(relPath, filepath.Ext(relPath))
	slug = strings.ToLower(filepath.ToSlash(slug))
	slug = strings.NewReplacer("/", "-", " ", "-", "_", "-").Replace(slug)
	return artifact.Type("imported-" + slug)
}
