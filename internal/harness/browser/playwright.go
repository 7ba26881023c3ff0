package browser

import (
	"context"
	"fmt"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/multierr"
)

// PlaywrightOptions configures the Playwright engine.
type PlaywrightOptions struct {
	Headless bool
	// Install downloads the driver and Chromium before launching.
	Install bool
}

// PlaywrightEngine runs Chromium through the Playwright driver. Each page
// gets a fresh BrowserContext.
type PlaywrightEngine struct {
	pw      *playwright.Playwright
	browser playwright.Browser
}

func NewPlaywrightEngine(opts PlaywrightOptions) (*PlaywrightEngine, error) {
	if opts.Install {
		if err := playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}}); err != nil {
			return nil, fmt.Errorf("install playwright: %w", err)
		}
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}

	b, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args:     []string{"--disable-blink-features=AutomationControlled"},
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	return &PlaywrightEngine{pw: pw, browser: b}, nil
}

func (e *PlaywrightEngine) NewPage(ctx context.Context) (Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bctx, err := e.browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{Width: 1280, Height: 720},
	})
	if err != nil {
		return nil, fmt.Errorf("create context: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		return nil, fmt.Errorf("open page: %w", err)
	}

	return &pwPage{page: page, bctx: bctx}, nil
}

func (e *PlaywrightEngine) Close() error {
	return multierr.Combine(e.browser.Close(), e.pw.Stop())
}

// pwPage adapts a Playwright page. Playwright calls take no context, so
// every method checks ctx before issuing a command.
type pwPage struct {
	page playwright.Page
	bctx playwright.BrowserContext
}

func selector(loc Locator) string {
	if loc.Kind == KindXPath {
		return "xpath=" + loc.Expr
	}
	return "css=" + loc.Expr
}

func (p *pwPage) elements(ctx context.Context, loc Locator) ([]playwright.Locator, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	all, err := p.page.Locator(selector(loc)).All()
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", loc, err)
	}
	if loc.Text == nil {
		return all, nil
	}

	filtered := all[:0]
	for _, el := range all {
		text, err := el.TextContent()
		if err != nil {
			continue
		}
		if loc.MatchesText(text) {
			filtered = append(filtered, el)
		}
	}
	return filtered, nil
}

func (p *pwPage) first(ctx context.Context, loc Locator) (playwright.Locator, error) {
	els, err := p.elements(ctx, loc)
	if err != nil {
		return nil, err
	}
	if len(els) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoElement, loc)
	}
	return els[0], nil
}

func (p *pwPage) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := p.page.Goto(url); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	return nil
}

func (p *pwPage) URL(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return p.page.URL(), nil
}

func (p *pwPage) Title(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return p.page.Title()
}

func (p *pwPage) Count(ctx context.Context, loc Locator) (int, error) {
	els, err := p.elements(ctx, loc)
	return len(els), err
}

func (p *pwPage) Tag(ctx context.Context, loc Locator) (string, error) {
	el, err := p.first(ctx, loc)
	if err != nil {
		return "", err
	}
	v, err := el.Evaluate(`(el) => el.tagName.toLowerCase()`, nil)
	if err != nil {
		return "", fmt.Errorf("inspect tag: %w", err)
	}
	tag, _ := v.(string)
	return tag, nil
}

func (p *pwPage) Visible(ctx context.Context, loc Locator) (bool, error) {
	els, err := p.elements(ctx, loc)
	if err != nil || len(els) == 0 {
		return false, err
	}
	return els[0].IsVisible()
}

func (p *pwPage) Enabled(ctx context.Context, loc Locator) (bool, error) {
	el, err := p.first(ctx, loc)
	if err != nil {
		return false, err
	}
	return el.IsEnabled()
}

func (p *pwPage) Fill(ctx context.Context, loc Locator, value string) error {
	el, err := p.first(ctx, loc)
	if err != nil {
		return err
	}
	if err := el.Fill(value); err != nil {
		return fmt.Errorf("fill %s: %w", loc, err)
	}
	return nil
}

func (p *pwPage) Click(ctx context.Context, loc Locator) error {
	el, err := p.first(ctx, loc)
	if err != nil {
		return err
	}
	if err := el.Click(); err != nil {
		return fmt.Errorf("click %s: %w", loc, err)
	}
	return nil
}

func (p *pwPage) SelectIndex(ctx context.Context, loc Locator, index int) error {
	el, err := p.first(ctx, loc)
	if err != nil {
		return err
	}
	if _, err := el.SelectOption(playwright.SelectOptionValues{Indexes: &[]int{index}}); err != nil {
		return fmt.Errorf("select option %d on %s: %w", index, loc, err)
	}
	return nil
}

func (p *pwPage) HTML(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return p.page.Content()
}

func (p *pwPage) Close() error {
	return multierr.Combine(p.page.Close(), p.bctx.Close())
}
