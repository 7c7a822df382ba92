package normalize_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"intake/internal/faults"
	"intake/internal/logging"
	"intake/internal/normalize"
	"intake/internal/testsupport"
)

func TestNormalizeSingleEntryArchiveFlattens(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "report.zip")
	dest := filepath.Join(dir, "unzipped")
	testsupport.WriteZip(t, src, map[string][]byte{
		"nested/inside/q1-results.csv": []byte("a,b\n1,2\n"),
	})

	n := normalize.New(logging.NewNop())
	result, err := n.Normalize(src, dest)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	want := filepath.Join(dest, "q1-results.csv")
	if result.OutputPath != want {
		t.Fatalf("unexpected output path: got %q want %q", result.OutputPath, want)
	}
	if result.Kind != normalize.KindArchiveSingle {
		t.Fatalf("unexpected kind: %v", result.Kind)
	}

	got, err := os.ReadFile(want)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "a,b\n1,2\n" {
		t.Fatalf("unexpected content: %q", got)
	}
	if _, err := os.Stat(filepath.Join(dest, "report")); !os.IsNotExist(err) {
		t.Fatal("single-entry archive must not create a subdirectory")
	}
}

func TestNormalizeMultiEntryArchivePreservesLayout(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "report.zip")
	dest := filepath.Join(dir, "unzipped")
	testsupport.WriteZip(t, src, map[string][]byte{
		"a.txt":     []byte("alpha"),
		"sub/b.txt": []byte("beta"),
	})

	n := normalize.New(logging.NewNop())
	result, err := n.Normalize(src, dest)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if result.OutputPath != filepath.Join(dest, "report") {
		t.Fatalf("unexpected output path: %q", result.OutputPath)
	}
	if result.Kind != normalize.KindArchiveMulti || result.Entries != 2 {
		t.Fatalf("unexpected result: %+v", result)
	}

	tree := testsupport.ReadTree(t, result.OutputPath)
	want := map[string]string{
		"a.txt":                       "alpha",
		filepath.Join("sub", "b.txt"): "beta",
	}
	if !reflect.DeepEqual(tree, want) {
		t.Fatalf("unexpected tree: %v", tree)
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "report.zip")
	dest := filepath.Join(dir, "unzipped")
	testsupport.WriteZip(t, src, map[string][]byte{
		"a.txt":     []byte("alpha"),
		"sub/b.txt": []byte("beta"),
	})

	n := normalize.New(logging.NewNop())
	if _, err := n.Normalize(src, dest); err != nil {
		t.Fatalf("first Normalize failed: %v", err)
	}
	first := testsupport.ReadTree(t, dest)

	if _, err := n.Normalize(src, dest); err != nil {
		t.Fatalf("second Normalize failed: %v", err)
	}
	second := testsupport.ReadTree(t, dest)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("destination changed between runs: %v vs %v", first, second)
	}
}

func TestNormalizeOverwritesStaleOutput(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "report.zip")
	dest := filepath.Join(dir, "unzipped")
	testsupport.WriteZip(t, src, map[string][]byte{
		"a.txt": []byte("old"),
		"b.txt": []byte("old"),
	})

	n := normalize.New(logging.NewNop())
	if _, err := n.Normalize(src, dest); err != nil {
		t.Fatal(err)
	}

	// The producer replaces the archive; re-normalization must overwrite.
	testsupport.WriteZip(t, src, map[string][]byte{
		"a.txt": []byte("new"),
		"b.txt": []byte("new"),
	})
	if _, err := n.Normalize(src, dest); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(filepath.Join(dest, "report", "a.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "new" {
		t.Fatalf("expected overwrite, got %q", got)
	}
}

func TestNormalizePlainFilePassthrough(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "notes.pdf")
	dest := filepath.Join(dir, "unzipped")
	content := []byte("%PDF-1.4 fake body")
	testsupport.WriteFile(t, src, content)

	n := normalize.New(logging.NewNop())
	result, err := n.Normalize(src, dest)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if result.Kind != normalize.KindPlainFile {
		t.Fatalf("unexpected kind: %v", result.Kind)
	}

	got, err := os.ReadFile(filepath.Join(dest, "notes.pdf"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(content) {
		t.Fatal("passthrough bytes differ")
	}
}

func TestNormalizeDirectoryMerges(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "statements")
	dest := filepath.Join(dir, "unzipped")
	testsupport.WriteFile(t, filepath.Join(src, "jan.csv"), []byte("jan"))
	testsupport.WriteFile(t, filepath.Join(dest, "statements", "dec.csv"), []byte("dec"))

	n := normalize.New(logging.NewNop())
	result, err := n.Normalize(src, dest)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if result.Kind != normalize.KindPlainDir {
		t.Fatalf("unexpected kind: %v", result.Kind)
	}

	tree := testsupport.ReadTree(t, filepath.Join(dest, "statements"))
	if tree["jan.csv"] != "jan" || tree["dec.csv"] != "dec" {
		t.Fatalf("expected merged tree, got %v", tree)
	}
}

func TestNormalizeCorruptArchiveProducesNoOutput(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "bad.zip")
	dest := filepath.Join(dir, "unzipped")
	testsupport.WriteFile(t, src, []byte("this is not a zip file"))

	n := normalize.New(logging.NewNop())
	_, err := n.Normalize(src, dest)
	if !errors.Is(err, faults.ErrCorruptArchive) {
		t.Fatalf("expected corrupt archive error, got %v", err)
	}

	if entries, err := os.ReadDir(dest); err == nil && len(entries) > 0 {
		t.Fatalf("expected no output, found %d entries", len(entries))
	}
}

func TestNormalizeEmptyArchiveIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "empty.zip")
	dest := filepath.Join(dir, "unzipped")
	testsupport.WriteZip(t, src, nil)

	n := normalize.New(logging.NewNop())
	result, err := n.Normalize(src, dest)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if result.Kind != normalize.KindArchiveEmpty || result.OutputPath != "" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestNormalizeUppercaseZipExtension(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "REPORT.ZIP")
	dest := filepath.Join(dir, "unzipped")
	testsupport.WriteZip(t, src, map[string][]byte{"x.txt": []byte("x")})

	n := normalize.New(logging.NewNop())
	result, err := n.Normalize(src, dest)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if result.Kind != normalize.KindArchiveSingle {
		t.Fatalf("expected uppercase extension to dispatch as archive, got %v", result.Kind)
	}
}

func TestNormalizeSkipsZipSlipEntries(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "evil.zip")
	dest := filepath.Join(dir, "unzipped")
	testsupport.WriteZip(t, src, map[string][]byte{
		"ok.txt":          []byte("fine"),
		"../escape.txt":   []byte("nope"),
		"also/../ok2.txt": []byte("fine2"),
	})

	n := normalize.New(logging.NewNop())
	if _, err := n.Normalize(src, dest); err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "escape.txt")); !os.IsNotExist(err) {
		t.Fatal("zip-slip entry escaped the destination")
	}
	tree := testsupport.ReadTree(t, filepath.Join(dest, "evil"))
	if tree["ok.txt"] != "fine" || tree["ok2.txt"] != "fine2" {
		t.Fatalf("expected safe entries extracted, got %v", tree)
	}
}

func TestInspectKinds(t *testing.T) {
	dir := t.TempDir()

	plain := filepath.Join(dir, "a.csv")
	testsupport.WriteFile(t, plain, []byte("x"))
	single := filepath.Join(dir, "one.zip")
	testsupport.WriteZip(t, single, map[string][]byte{"f": []byte("f")})
	multi := filepath.Join(dir, "two.zip")
	testsupport.WriteZip(t, multi, map[string][]byte{"f": []byte("f"), "g": []byte("g")})

	cases := []struct {
		path string
		want normalize.Kind
	}{
		{plain, normalize.KindPlainFile},
		{dir, normalize.KindPlainDir},
		{single, normalize.KindArchiveSingle},
		{multi, normalize.KindArchiveMulti},
	}
	for _, tc := range cases {
		item, err := normalize.Inspect(tc.path)
		if err != nil {
			t.Fatalf("Inspect(%s): %v", tc.path, err)
		}
		if item.Kind != tc.want {
			t.Fatalf("Inspect(%s): got %v want %v", tc.path, item.Kind, tc.want)
		}
	}

	if _, err := normalize.Inspect(filepath.Join(dir, "missing")); !errors.Is(err, faults.ErrTransient) {
		t.Fatalf("expected transient error for missing path, got %v", err)
	}
}
