package normalize

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"intake/internal/faults"
)

// Kind classifies a raw item before normalization. Dispatch over Kind is the
// single place that decides an item's destination layout.
type Kind int

const (
	KindUnknown Kind = iota
	KindPlainFile
	KindPlainDir
	KindArchiveEmpty
	KindArchiveSingle
	KindArchiveMulti
)

// String returns a short machine-friendly label for the kind.
func (k Kind) String() string {
	switch k {
	case KindPlainFile:
		return "plain_file"
	case KindPlainDir:
		return "plain_dir"
	case KindArchiveEmpty:
		return "archive_empty"
	case KindArchiveSingle:
		return "archive_single"
	case KindArchiveMulti:
		return "archive_multi"
	default:
		return "unknown"
	}
}

// Item describes an inspected raw item.
type Item struct {
	Path    string
	Kind    Kind
	Entries int
}

// Inspect stats and, for archives, enumerates the item at path to produce its
// kind. Archive status is decided by a case-insensitive .zip extension on
// regular files; a .zip that cannot be opened reports ErrCorruptArchive.
func Inspect(path string) (Item, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Item{}, faults.Wrap(faults.ErrTransient, "normalizer", "stat item", "", err)
	}

	if info.IsDir() {
		return Item{Path: path, Kind: KindPlainDir}, nil
	}
	if strings.ToLower(filepath.Ext(path)) != ".zip" {
		return Item{Path: path, Kind: KindPlainFile}, nil
	}

	reader, err := openArchive(path)
	if err != nil {
		return Item{}, err
	}
	defer reader.Close()

	item := Item{Path: path, Entries: len(reader.File)}
	switch len(reader.File) {
	case 0:
		item.Kind = KindArchiveEmpty
	case 1:
		item.Kind = KindArchiveSingle
	default:
		item.Kind = KindArchiveMulti
	}
	return item, nil
}

// openArchive opens a zip, tolerating non-local entry names: those entries are
// rejected individually during extraction rather than failing the archive.
func openArchive(path string) (*zip.ReadCloser, error) {
	reader, err := zip.OpenReader(path)
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return nil, faults.Wrap(faults.ErrCorruptArchive, "normalizer", "open archive", filepath.Base(path), err)
	}
	return reader, nil
}

// stem returns the file name without its extension, used to name the
// destination directory for multi-entry archives.
func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
