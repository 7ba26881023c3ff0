// sanitize-fixtures re-applies the snapshot redaction rules to HTML fixtures
// already on disk.
//
// Usage:
//
//	go run ./scripts/sanitize-fixtures [-dir path] [-dry-run]
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/grez-lucas/bank-uicheck/internal/harness/snapshot"
)

func main() {
	dir := flag.String("dir", filepath.Join("internal", "harness", "testutil", "testdata", "fixtures"), "Fixtures directory")
	dryRun := flag.Bool("dry-run", false, "Show what would be changed without modifying files")
	flag.Parse()

	files, err := filepath.Glob(filepath.Join(*dir, "*.html"))
	if err != nil || len(files) == 0 {
		fmt.Printf("No HTML files found in %s\n", *dir)
		os.Exit(1)
	}

	fmt.Printf("🔒 Sanitizing fixtures in %s\n", *dir)
	if *dryRun {
		fmt.Println("    (DRY RUN - no files will be modified)")
	}
	fmt.Println()

	failed := false
	for _, file := range files {
		if err := sanitizeFile(file, *dryRun); err != nil {
			fmt.Printf("❌ %s: %v\n", filepath.Base(file), err)
			failed = true
		}
	}

	fmt.Println()
	if failed {
		os.Exit(1)
	}
	fmt.Println("✅ Sanitization complete!")
	if *dryRun {
		fmt.Println("    Run without -dry-run to apply changes")
	}
}

func sanitizeFile(path string, dryRun bool) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	original := string(content)

	for _, p := range snapshot.TextPatterns {
		if n := len(p.Pattern.FindAllString(original, -1)); n > 0 {
			fmt.Printf("  - %s: %d matched\n", p.Description, n)
		}
	}

	sanitized, err := snapshot.SanitizeHTML(original)
	if err != nil {
		return err
	}

	filename := filepath.Base(path)
	// goquery re-renders the whole document, so compare with a re-render of
	// the untouched input rather than the raw bytes.
	baseline, err := snapshot.RenderHTML(original)
	if err != nil {
		return err
	}
	if sanitized == baseline {
		fmt.Printf("📄 %s: No sensitive data found\n", filename)
		return nil
	}

	fmt.Printf("📄 %s: Found sensitive data\n", filename)
	if dryRun {
		return nil
	}
	if err := os.WriteFile(path, []byte(sanitized), 0o644); err != nil {
		return err
	}
	fmt.Println("    ✅ Sanitized and saved")
	return nil
}
