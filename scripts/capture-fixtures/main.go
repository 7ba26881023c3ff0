// capture-fixtures opens a visible browser on the demo bank and saves a
// sanitized HTML fixture of each page once you have navigated to it.
//
// Usage:
//
//	go run ./scripts/capture-fixtures [-output dir] [-bin /usr/bin/google-chrome]
//
// Shadow roots and same-origin iframes are inlined into the saved document,
// so the fixtures parse as one flat tree.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/grez-lucas/bank-uicheck/internal/harness/browser"
	"github.com/grez-lucas/bank-uicheck/internal/harness/config"
	"github.com/grez-lucas/bank-uicheck/internal/harness/snapshot"
	"github.com/sirupsen/logrus"
)

type pageCapture struct {
	Name         string
	Instructions string
}

var capturePages = []pageCapture{
	{"login", "Stay on the login page (don't log in yet)"},
	{"login_error", "Enter an INVALID password and submit"},
	{"pulpit", "Log in with VALID credentials, wait for the dashboard"},
	{"quick_payment", "Open the quick transfer form (do NOT execute it)"},
}

func main() {
	outDir := flag.String("output", filepath.Join("internal", "harness", "testutil", "testdata", "fixtures"), "Output directory")
	bin := flag.String("bin", "", "Chromium binary (default: let the launcher pick)")
	flag.Parse()

	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)

	engine, err := browser.NewRodEngine(browser.RodOptions{Bin: *bin, Headless: false, Stealth: cfg.Stealth})
	if err != nil {
		fmt.Printf("Error launching browser: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	ctx := context.Background()
	page, err := engine.NewPage(ctx)
	if err != nil {
		fmt.Printf("Error opening page: %v\n", err)
		os.Exit(1)
	}
	if err := page.Navigate(ctx, cfg.URL("/")); err != nil {
		fmt.Printf("Error opening %s: %v\n", cfg.BaseURL, err)
		os.Exit(1)
	}

	fmt.Println("================================================================")
	fmt.Println("  DEMO BANK FIXTURE CAPTURE")
	fmt.Printf("  Site:   %s\n", cfg.BaseURL)
	fmt.Printf("  Output: %s\n", *outDir)
	fmt.Println("================================================================")
	fmt.Println()
	fmt.Println("📋 Press ENTER after each step, 'skip' to skip a page, 'quit' to exit.")
	fmt.Println()

	writer := snapshot.NewWriter(*outDir, log)
	reader := bufio.NewReader(os.Stdin)

	for _, capture := range capturePages {
		fmt.Println("----------------------------------------------------------------")
		fmt.Printf("📄 Capturing: %s.html\n", capture.Name)
		fmt.Printf("📝 Instructions: %s\n", capture.Instructions)
		fmt.Print("   Press ENTER when ready (or 'skip'/'quit'): ")

		input, _ := reader.ReadString('\n')
		input = strings.TrimSpace(strings.ToLower(input))
		if input == "quit" {
			fmt.Println("\n👋 Exiting...")
			break
		}
		if input == "skip" {
			fmt.Printf("   ⏭️  Skipped %s\n\n", capture.Name)
			continue
		}

		// Let late widgets settle before the DOM is flattened.
		time.Sleep(time.Second)

		path, err := writer.Capture(ctx, capture.Name, page)
		if err != nil {
			fmt.Printf("   ❌ Error capturing HTML: %v\n\n", err)
			continue
		}
		pageURL, _ := page.URL(ctx)
		fmt.Printf("   ✅ Saved: %s\n", path)
		fmt.Printf("   🔗 URL: %s\n\n", pageURL)

		// Flattening rewrote the live DOM; reload so later steps see the app again.
		if pageURL != "" {
			_ = page.Navigate(ctx, pageURL)
		}
	}

	fmt.Println("================================================================")
	fmt.Println("✅ Capture complete! Values were sanitized on save; review the")
	fmt.Println("   files anyway, or run: go run ./scripts/sanitize-fixtures -dry-run")
	fmt.Println("================================================================")
}
