package driver

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"kpoet/internal/diag"
	"kpoet/internal/unit"
)

// ListUnits expands paths into a sorted, duplicate-free list of unit
// descriptions. Directories are walked recursively, skipping hidden ones;
// files are taken as given.
func ListUnits(paths []string) ([]string, error) {
	var files []string
	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, diag.Wrap(diag.IOLoadUnit, err, "cannot read %s", root)
		}
		if !info.IsDir() {
			files = append(files, filepath.Clean(root))
			continue
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if unit.IsUnitFile(d.Name()) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, diag.Wrap(diag.IOLoadUnit, err, "cannot walk %s", root)
		}
	}

	// Sort for a deterministic order.
	slices.Sort(files)
	return slices.Compact(files), nil
}
