package scan

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type FileInfo struct {
	Path  string
	Mtime int64
	Size  int64
}

// exportExts are the file types chat apps export to: WhatsApp .txt, Telegram
// result.json, Signal .txt and this tool's own .geojson.
var exportExts = map[string]bool{
	".txt":     true,
	".json":    true,
	".geojson": true,
}

// IsExport reports whether path has an export file extension.
func IsExport(path string) bool {
	return exportExts[strings.ToLower(filepath.Ext(path))]
}

// ScanRoot walks root for export files, skipping hidden directories and
// files larger than maxBytes. A missing root yields no files.
func ScanRoot(root string, maxBytes int64) ([]FileInfo, error) {
	if root == "" {
		return nil, nil
	}

	var files []FileInfo
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip unreadable dirs
		}
		if info.IsDir() {
			if path != root && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsExport(path) {
			return nil
		}
		if maxBytes > 0 && info.Size() > maxBytes {
			return nil
		}
		files = append(files, FileInfo{
			Path:  path,
			Mtime: info.ModTime().Unix(),
			Size:  info.Size(),
		})
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}
