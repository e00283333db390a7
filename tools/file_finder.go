package tools

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// Extensions of the files the viewer can open
var CloudFileExtensions = []string{".ply", ".pcd", ".obj"}

type FileFinder interface {
	GetCloudFilesInFolder(folder string) ([]string, error)
	GetSubfolders(folder string) ([]string, error)
}

type StandardFileFinder struct{}

func NewStandardFileFinder() FileFinder {
	return &StandardFileFinder{}
}

// IsCloudFile tells whether the extension of path is one the viewer can open
func IsCloudFile(path string) bool {
	return lo.Contains(CloudFileExtensions, strings.ToLower(filepath.Ext(path)))
}

// Returns the openable files directly contained in folder, sorted by name.
// Nested folders are not visited.
func (f *StandardFileFinder) GetCloudFilesInFolder(folder string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, err
	}
	files := lo.FilterMap(entries, func(entry os.DirEntry, _ int) (string, bool) {
		return filepath.Join(folder, entry.Name()), !entry.IsDir() && IsCloudFile(entry.Name())
	})
	sort.Strings(files)
	return files, nil
}

// Returns the folders directly contained in folder, hidden ones excluded
func (f *StandardFileFinder) GetSubfolders(folder string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, err
	}
	folders := lo.FilterMap(entries, func(entry os.DirEntry, _ int) (string, bool) {
		return filepath.Join(folder, entry.Name()), entry.IsDir() && !strings.HasPrefix(entry.Name(), ".")
	})
	sort.Strings(folders)
	return folders, nil
}
