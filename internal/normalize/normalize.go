package normalize

import (
	"archive/zip"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"intake/internal/faults"
	"intake/internal/fileutil"
	"intake/internal/logging"
)

// Result reports what a normalization produced.
type Result struct {
	// OutputPath is the file or directory materialized under the destination
	// root. Empty when the item produced no output (empty archive).
	OutputPath string
	Kind       Kind
	Entries    int
}

// Normalizer transforms raw items into their canonical extracted or copied
// form under a destination root. It is safe to invoke repeatedly on the same
// source: outputs are overwritten in place.
type Normalizer struct {
	logger *slog.Logger
}

// New constructs a normalizer. A nil logger is replaced with a no-op logger.
func New(logger *slog.Logger) *Normalizer {
	return &Normalizer{logger: logging.WithComponent(logger, "normalizer")}
}

// Normalize inspects src and materializes its payload under destRoot.
func (n *Normalizer) Normalize(src, destRoot string) (Result, error) {
	item, err := Inspect(src)
	if err != nil {
		return Result{}, err
	}

	result := Result{Kind: item.Kind, Entries: item.Entries}
	logger := n.logger.With(
		logging.String(logging.FieldPath, src),
		logging.String(logging.FieldKind, item.Kind.String()),
	)

	switch item.Kind {
	case KindArchiveEmpty:
		logger.Info("archive contains no entries; nothing to extract")
		return result, nil
	case KindArchiveSingle:
		result.OutputPath, err = n.extractSingle(src, destRoot)
	case KindArchiveMulti:
		result.OutputPath, err = n.extractAll(src, destRoot)
	case KindPlainDir:
		result.OutputPath = filepath.Join(destRoot, filepath.Base(src))
		if mergeErr := fileutil.CopyDir(src, result.OutputPath); mergeErr != nil {
			err = faults.Wrap(faults.ErrTransient, "normalizer", "copy directory", filepath.Base(src), mergeErr)
		}
	default:
		result.OutputPath = filepath.Join(destRoot, filepath.Base(src))
		if copyErr := copyPlainFile(src, result.OutputPath); copyErr != nil {
			err = faults.Wrap(faults.ErrTransient, "normalizer", "copy file", filepath.Base(src), copyErr)
		}
	}
	if err != nil {
		return Result{}, err
	}

	logger.Info("normalized item",
		logging.String(logging.FieldOutput, result.OutputPath),
		logging.Int(logging.FieldEntries, result.Entries),
	)
	return result, nil
}

// extractSingle places the archive's only entry directly under destRoot using
// the entry's base name; any internal subpath inside the archive is discarded.
func (n *Normalizer) extractSingle(src, destRoot string) (string, error) {
	reader, err := openArchive(src)
	if err != nil {
		return "", err
	}
	defer reader.Close()

	entry := reader.File[0]
	base := path.Base(strings.TrimSuffix(entry.Name, "/"))
	if base == "." || base == "/" || base == ".." {
		return "", faults.Wrap(faults.ErrCorruptArchive, "normalizer", "extract entry", "entry has no usable name", nil)
	}
	target := filepath.Join(destRoot, base)

	if entry.FileInfo().IsDir() {
		if err := os.MkdirAll(target, 0o755); err != nil {
			return "", faults.Wrap(faults.ErrTransient, "normalizer", "create directory", base, err)
		}
		return target, nil
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", faults.Wrap(faults.ErrTransient, "normalizer", "create directory", base, err)
	}
	if err := writeEntry(entry, target); err != nil {
		return "", err
	}
	return target, nil
}

// extractAll places every entry under destRoot/<archive stem>/, preserving
// internal relative paths and overwriting files already present.
func (n *Normalizer) extractAll(src, destRoot string) (string, error) {
	reader, err := openArchive(src)
	if err != nil {
		return "", err
	}
	defer reader.Close()

	targetDir := filepath.Join(destRoot, stem(src))
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return "", faults.Wrap(faults.ErrTransient, "normalizer", "create directory", stem(src), err)
	}

	for _, entry := range reader.File {
		rel, ok := safeRelPath(entry.Name)
		if !ok {
			n.logger.Warn("skipping archive entry with unsafe path",
				logging.String(logging.FieldPath, src),
				logging.String("entry", entry.Name),
			)
			continue
		}
		target := filepath.Join(targetDir, rel)

		if entry.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return "", faults.Wrap(faults.ErrTransient, "normalizer", "create directory", rel, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return "", faults.Wrap(faults.ErrTransient, "normalizer", "create directory", rel, err)
		}
		if err := writeEntry(entry, target); err != nil {
			return "", err
		}
	}
	return targetDir, nil
}

// safeRelPath converts a zip entry name to a relative filesystem path,
// rejecting names that would escape the extraction directory.
func safeRelPath(name string) (string, bool) {
	cleaned := filepath.Clean(filepath.FromSlash(strings.TrimSuffix(name, "/")))
	if cleaned == "." || filepath.IsAbs(cleaned) {
		return "", false
	}
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", false
	}
	return cleaned, true
}

func writeEntry(entry *zip.File, target string) error {
	in, err := entry.Open()
	if err != nil {
		return faults.Wrap(faults.ErrCorruptArchive, "normalizer", "open entry", entry.Name, err)
	}
	defer in.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return faults.Wrap(faults.ErrTransient, "normalizer", "create output", entry.Name, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return faults.Wrap(faults.ErrCorruptArchive, "normalizer", "extract entry", entry.Name, err)
	}
	if err := out.Close(); err != nil {
		return faults.Wrap(faults.ErrTransient, "normalizer", "flush output", entry.Name, err)
	}
	if mod := entry.Modified; !mod.IsZero() {
		_ = os.Chtimes(target, mod, mod)
	}
	return nil
}

func copyPlainFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return fileutil.CopyFilePreserve(src, dst)
}
