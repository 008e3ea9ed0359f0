package models

import (
	"path"
	"regexp"
	"strings"
	"time"
)

// CodeModel holds the project's source files and build settings.
type CodeModel struct {
	Files      []CodeFile  `json:"files"`
	EntryPoint string      `json:"entryPoint,omitempty"`
	Build      BuildConfig `json:"build"`
}

// BuildConfig holds compiler/bundler settings for code generation.
type BuildConfig struct {
	Target     string `json:"target,omitempty"`
	OutputDir  string `json:"outputDir,omitempty"`
	Minify     bool   `json:"minify"`
	SourceMaps bool   `json:"sourceMaps"`
}

// CodeFile is one source file, either machine-generated or hand-authored.
// Generated files may be overwritten by a later generation pass only while
// HandEdited is still false.
type CodeFile struct {
	ID         string    `json:"id"`
	Path       string    `json:"path"`
	Name       string    `json:"name"`
	Ext        string    `json:"ext,omitempty"`
	Content    string    `json:"content"`
	Generated  bool      `json:"generated"`
	HandEdited bool      `json:"handEdited"`
	Size       int       `json:"size"`
	Lines      int       `json:"lines"`
	Imports    []string  `json:"imports,omitempty"`
	Exports    []string  `json:"exports,omitempty"`
	ModifiedAt time.Time `json:"modifiedAt"`
}

var (
	importRe = regexp.MustCompile(`(?m)^\s*import\s+(?:[\w*{},\s]+\s+from\s+)?['"]([^'"]+)['"]`)
	exportRe = regexp.MustCompile(`(?m)^\s*export\s+(?:default\s+)?(?:async\s+)?(?:function|class|const|let|var|interface|type)\s+(\w+)`)
)

// Refresh derives the file's metadata from its path and content: name,
// extension, size, line count, and import/export summaries.
func (f *CodeFile) Refresh(now time.Time) {
	if f.Path != "" {
		f.Name = path.Base(f.Path)
		f.Ext = strings.TrimPrefix(path.Ext(f.Path), ".")
	}
	f.Size = len(f.Content)
	if f.Content == "" {
		f.Lines = 0
	} else {
		f.Lines = strings.Count(f.Content, "\n") + 1
	}
	f.Imports = nil
	for _, m := range importRe.FindAllStringSubmatch(f.Content, -1) {
		f.Imports = append(f.Imports, m[1])
	}
	f.Exports = nil
	for _, m := range exportRe.FindAllStringSubmatch(f.Content, -1) {
		f.Exports = append(f.Exports, m[1])
	}
	f.ModifiedAt = now
}

// Clone returns a deep copy of the file.
func (f CodeFile) Clone() CodeFile {
	out := f
	out.Imports = append([]string(nil), f.Imports...)
	out.Exports = append([]string(nil), f.Exports...)
	return out
}
