package domain

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// FileType identifies which extractor produced a record.
type FileType string

// Supported file types.
const (
	FileTypePDF   FileType = "pdf"
	FileTypeImage FileType = "image"
	FileTypeText  FileType = "text"
	FileTypeCSV   FileType = "csv"
	FileTypeExcel FileType = "excel"
)

// IsValid returns true if the file type is recognised.
func (t FileType) IsValid() bool {
	switch t {
	case FileTypePDF, FileTypeImage, FileTypeText, FileTypeCSV, FileTypeExcel:
		return true
	default:
		return false
	}
}

// IsRowBased returns true for types that emit one record per table row.
func (t FileType) IsRowBased() bool {
	return t == FileTypeCSV || t == FileTypeExcel
}

// String returns the string representation.
func (t FileType) String() string {
	return string(t)
}

// AllFileTypes returns the file types in walk-priority order.
func AllFileTypes() []FileType {
	return []FileType{FileTypePDF, FileTypeImage, FileTypeText, FileTypeCSV, FileTypeExcel}
}

// SourceFile is a supported file found under the ingest folder.
type SourceFile struct {
	// Path is the absolute path on disk.
	Path string

	// RelativePath is relative to the ingest folder, always with forward slashes.
	RelativePath string

	// Ext is the lower-cased extension including the dot.
	Ext string

	// Type is the extractor family the extension maps to.
	Type FileType
}

// NewSourceFile builds a SourceFile for path found under root.
func NewSourceFile(root, path string, fileType FileType) (SourceFile, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return SourceFile{}, fmt.Errorf("resolve %s: %w", path, err)
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return SourceFile{}, fmt.Errorf("relative path of %s: %w", path, err)
	}
	return SourceFile{
		Path:         abs,
		RelativePath: filepath.ToSlash(rel),
		Ext:          strings.ToLower(filepath.Ext(abs)),
		Type:         fileType,
	}, nil
}

// ChunkRecord is the metadata stored alongside each indexed vector.
// The record at position i of a build describes vector i of the index.
type ChunkRecord struct {
	SourcePath   string   `json:"source_path" yaml:"source_path"`
	RelativePath string   `json:"relative_path" yaml:"relative_path"`
	FileType     FileType `json:"file_type" yaml:"file_type"`

	// Page is 1-based for pdf records and 0 otherwise.
	Page int `json:"page,omitempty" yaml:"page,omitempty"`

	// Sheet is set for excel records only.
	Sheet string `json:"sheet,omitempty" yaml:"sheet,omitempty"`

	// Row is the 0-based row for csv and excel records, nil otherwise.
	Row *int `json:"row,omitempty" yaml:"row,omitempty"`

	ChunkIndex  int    `json:"chunk_index" yaml:"chunk_index"`
	CitationTag string `json:"citation_tag" yaml:"citation_tag"`
	Text        string `json:"text" yaml:"text"`
}

// RowRef returns a pointer suitable for ChunkRecord.Row.
func RowRef(row int) *int {
	return &row
}

// BuildTag derives the citation tag from the record's other fields.
func (r ChunkRecord) BuildTag() string {
	switch r.FileType {
	case FileTypePDF:
		return fmt.Sprintf("[file:%s p%03d c%03d]", r.RelativePath, r.Page, r.ChunkIndex)
	case FileTypeCSV:
		return fmt.Sprintf("[file:%s row%03d c000]", r.RelativePath, r.rowValue())
	case FileTypeExcel:
		return fmt.Sprintf("[file:%s sheet:%s row%03d c000]", r.RelativePath, r.Sheet, r.rowValue())
	default:
		return fmt.Sprintf("[file:%s c%03d]", r.RelativePath, r.ChunkIndex)
	}
}

// WithTag returns a copy of the record with CitationTag filled in.
func (r ChunkRecord) WithTag() ChunkRecord {
	r.CitationTag = r.BuildTag()
	return r
}

func (r ChunkRecord) rowValue() int {
	if r.Row == nil {
		return 0
	}
	return *r.Row
}

// Hit is one search result from the vector index.
type Hit struct {
	// Index is the position of the vector in the index, or -1 if empty.
	Index int

	// Score is the inner product with the query vector.
	Score float32
}

// FileSummary counts the records indexed for one file.
type FileSummary struct {
	RelativePath string   `json:"relative_path" yaml:"relative_path"`
	FileType     FileType `json:"file_type" yaml:"file_type"`
	Records      int      `json:"records" yaml:"records"`
}

// SummariseFiles counts records per file, ordered by relative path.
func SummariseFiles(records []ChunkRecord) []FileSummary {
	byPath := make(map[string]*FileSummary)
	for _, r := range records {
		f, ok := byPath[r.RelativePath]
		if !ok {
			f = &FileSummary{RelativePath: r.RelativePath, FileType: r.FileType}
			byPath[r.RelativePath] = f
		}
		f.Records++
	}

	files := make([]FileSummary, 0, len(byPath))
	for _, f := range byPath {
		files = append(files, *f)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].RelativePath < files[j].RelativePath })
	return files
}
