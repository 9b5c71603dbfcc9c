package model

import (
	"path/filepath"
	"strings"
)

// InputFile is an uploaded file held for the duration of one batch.
type InputFile struct {
	Name string `json:"name"`
	Data []byte `json:"data"`
}

// IsVCF reports whether the file should be read as a vCard document.
func (f InputFile) IsVCF() bool {
	return strings.EqualFold(filepath.Ext(f.Name), ".vcf")
}

// IsText reports whether the file is a plain TXT/CSV list.
func (f InputFile) IsText() bool {
	switch strings.ToLower(filepath.Ext(f.Name)) {
	case ".txt", ".csv":
		return true
	}
	return false
}

// OutputFile is a generated file ready to be sent back to the chat.
type OutputFile struct {
	Name string
	Data []byte
}

// FileRename is one old-to-new pair of a rename mapping.
type FileRename struct {
	Old string
	New string
}

// RenameMap indexes renames by old name. Later duplicates win.
func RenameMap(renames []FileRename) map[string]string {
	m := make(map[string]string, len(renames))
	for _, r := range renames {
		m[r.Old] = r.New
	}
	return m
}

// CountSummary is the result of counting across a batch of files.
type CountSummary struct {
	Contacts int
	Unique   int
}

// SplitOptions configures how a list of numbers becomes several VCF files.
type SplitOptions struct {
	PerFile     int
	FileBase    string
	ContactBase string
}
