// probe-fields opens a visible browser on the demo bank and, on each page you
// navigate to, reports how every strategy of the field resolver sees a set
// of label fragments. The output shows which relationship matched and how
// many elements each strategy found.
//
// Usage:
//
//	go run ./scripts/probe-fields [-fragments kwota,tytu,odbiorc] [-bin path]
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/grez-lucas/bank-uicheck/internal/harness/browser"
	"github.com/grez-lucas/bank-uicheck/internal/harness/config"
	"github.com/grez-lucas/bank-uicheck/internal/harness/field"
	"github.com/sirupsen/logrus"
)

func main() {
	fragments := flag.String("fragments", "kwota,tytu,odbiorc,login,hasło", "Comma separated label fragments")
	bin := flag.String("bin", "", "Chromium binary (default: let the launcher pick)")
	flag.Parse()

	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

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

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	resolver := field.NewResolver(log)
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("================================================================")
	fmt.Println("  FIELD PROBE")
	fmt.Println("================================================================")
	fmt.Println("Navigate anywhere in the browser, then press ENTER to probe.")
	fmt.Println()

	for {
		fmt.Print("  Press ENTER to probe (or 'quit'): ")
		input, _ := reader.ReadString('\n')
		if strings.TrimSpace(strings.ToLower(input)) == "quit" {
			break
		}

		pageURL, _ := page.URL(ctx)
		fmt.Println("----------------------------------------------------------------")
		fmt.Printf("URL: %s\n\n", pageURL)

		for _, raw := range strings.Split(*fragments, ",") {
			raw = strings.TrimSpace(raw)
			if raw == "" {
				continue
			}
			probe(ctx, page, resolver, raw)
		}
	}
}

func probe(ctx context.Context, page browser.Page, resolver *field.Resolver, raw string) {
	f, err := field.NewFragment(raw)
	if err != nil {
		fmt.Printf("  %q: %v\n", raw, err)
		return
	}

	res, err := resolver.Resolve(ctx, page, raw)
	if err != nil {
		fmt.Printf("  %q: %v\n", raw, err)
		return
	}
	kind := field.Inspect(ctx, page, res)

	status := "FOUND"
	if res.Fallback {
		status = "FALLBACK"
	}
	fmt.Printf("  %q -> %s via %s (rank %d, resolves to %s)\n", raw, status, res.Strategy, res.Rank, kind)

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, s := range append(field.Chain(), field.Union) {
		n, err := page.Count(ctx, s.Locator(f))
		if err != nil {
			_, _ = fmt.Fprintf(tw, "    %d\t%s\terror: %v\n", s.Rank, s.Name, err)
			continue
		}
		_, _ = fmt.Fprintf(tw, "    %d\t%s\t%d match(es)\n", s.Rank, s.Name, n)
	}
	_ = tw.Flush()
	fmt.Println()
}
