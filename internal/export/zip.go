package export

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"sort"
)

// WriteBundle writes the multi-part ZIP: one binary STL per part plus any
// extra files (manifest, labels). Extras are written in name order so the
// archive layout is deterministic.
func WriteBundle(w io.Writer, parts []Body, extras map[string][]byte) error {
	if len(parts) == 0 {
		return fmt.Errorf("no parts to bundle")
	}

	zw := zip.NewWriter(w)
	for _, p := range parts {
		fw, err := zw.Create(p.Name)
		if err != nil {
			return err
		}
		if err := WriteSTL(fw, p.Mesh, p.Name); err != nil {
			return fmt.Errorf("write %s: %w", p.Name, err)
		}
	}

	names := make([]string, 0, len(extras))
	for name := range extras {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fw, err := zw.Create(name)
		if err != nil {
			return err
		}
		if _, err := fw.Write(extras[name]); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return zw.Close()
}

// WriteBundleFile writes the multi-part ZIP to a file.
func WriteBundleFile(path string, parts []Body, extras map[string][]byte) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteBundle(f, parts, extras); err != nil {
		f.Close()
		return fmt.Errorf("bundle %s: %w", path, err)
	}
	return f.Close()
}
