// Package ingest implements document parsing for the processing pipeline.
// It extracts plain text from work instruction and quality control documents
// and tabular rows from item master spreadsheets.
package ingest

import (
	"fmt"
	"path/filepath"
	"strings"
)

// DocumentExtensions lists the file extensions accepted for work
// instruction and quality control documents.
var DocumentExtensions = []string{".pdf", ".docx", ".txt", ".csv"}

// ItemMasterExtensions lists the file extensions accepted for item
// master spreadsheets.
var ItemMasterExtensions = []string{".csv", ".xlsx"}

// SupportedDocument reports whether the filename carries an accepted
// document extension.
func SupportedDocument(filename string) bool {
	return supported(filename, DocumentExtensions)
}

// SupportedItemMaster reports whether the filename carries an accepted
// item master extension.
func SupportedItemMaster(filename string) bool {
	return supported(filename, ItemMasterExtensions)
}

func supported(filename string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

// ExtractText extracts plain text from a work instruction or quality
// control document. The format is determined by the filename extension.
func ExtractText(filename string, data []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return extractPDF(data)
	case ".docx":
		return extractDocx(data)
	case ".txt":
		return string(data), nil
	case ".csv":
		return extractCSV(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}
