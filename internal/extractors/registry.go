package extractors

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/foldrag/internal/core/domain"
	"github.com/custodia-labs/foldrag/internal/core/ports/driven"
	"github.com/custodia-labs/foldrag/internal/logger"
)

// Registry maps file extensions to extractors.
type Registry struct {
	byExt  map[string]driven.Extractor
	byType map[domain.FileType]driven.Extractor
}

// NewRegistry creates a registry holding the given extractors.
// A later extractor claiming an extension already claimed replaces it.
func NewRegistry(extractors ...driven.Extractor) *Registry {
	r := &Registry{
		byExt:  make(map[string]driven.Extractor),
		byType: make(map[domain.FileType]driven.Extractor),
	}
	for _, e := range extractors {
		r.Register(e)
	}
	return r
}

// Register adds an extractor for every extension it claims.
func (r *Registry) Register(e driven.Extractor) {
	r.byType[e.FileType()] = e
	for _, ext := range e.Extensions() {
		r.byExt[strings.ToLower(ext)] = e
	}
}

// ForExtension returns the extractor for ext, if any.
func (r *Registry) ForExtension(ext string) (driven.Extractor, bool) {
	e, ok := r.byExt[strings.ToLower(ext)]
	return e, ok
}

// ForType returns the extractor for a file type, if any.
func (r *Registry) ForType(t domain.FileType) (driven.Extractor, bool) {
	e, ok := r.byType[t]
	return e, ok
}

// Extensions returns every registered extension in sorted order.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Discover walks root and returns every file with a registered extension,
// sorted by relative path. Directories listed in exclude are not entered.
func (r *Registry) Discover(root string, exclude ...string) ([]domain.SourceFile, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrFolderNotFound, root, err)
	}
	info, err := os.Stat(absRoot)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", domain.ErrFolderNotFound, absRoot)
	}

	skip := make(map[string]bool, len(exclude))
	for _, dir := range exclude {
		if dir == "" {
			continue
		}
		if abs, err := filepath.Abs(dir); err == nil {
			skip[abs] = true
		}
	}

	var files []domain.SourceFile
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			logger.Warn("walk %s: %v", path, walkErr)
			return nil
		}
		if d.IsDir() {
			if path != absRoot && skip[path] {
				logger.Debug("skipping store directory %s", path)
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		e, ok := r.ForExtension(filepath.Ext(path))
		if !ok {
			return nil
		}
		sf, err := domain.NewSourceFile(absRoot, path, e.FileType())
		if err != nil {
			return err
		}
		files = append(files, sf)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", absRoot, err)
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].RelativePath < files[j].RelativePath
	})
	return files, nil
}

// CheckAvailable verifies that every extractor needed by files can run.
// It reports all failures together so a user can fix them in one go.
func (r *Registry) CheckAvailable(files []domain.SourceFile) error {
	checkedTypes := make(map[domain.FileType]bool)
	checkedExts := make(map[string]bool)
	var errs []error

	for _, f := range files {
		e, ok := r.ForExtension(f.Ext)
		if !ok {
			errs = append(errs, fmt.Errorf("%w: no extractor for %s", domain.ErrExtractorUnavailable, f.Ext))
			continue
		}
		if !checkedTypes[f.Type] {
			checkedTypes[f.Type] = true
			if err := e.CheckAvailable(); err != nil {
				errs = append(errs, err)
			}
		}
		if checker, ok := e.(driven.ExtensionChecker); ok && !checkedExts[f.Ext] {
			checkedExts[f.Ext] = true
			if err := checker.CheckExtension(f.Ext); err != nil {
				errs = append(errs, fmt.Errorf("%w (first seen at %s)", err, f.RelativePath))
			}
		}
	}

	return errors.Join(errs...)
}
