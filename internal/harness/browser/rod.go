package browser

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"go.uber.org/multierr"
)

// RodOptions configures the Rod engine.
type RodOptions struct {
	Bin         string // Chromium binary; empty lets the launcher pick one
	Headless    bool
	Stealth     bool
	HumanTyping bool
}

// RodEngine drives one Chromium process. Every page lives in its own
// incognito context, so parallel scenarios share no cookies or storage.
type RodEngine struct {
	opts     RodOptions
	launcher *launcher.Launcher
	browser  *rod.Browser
}

func NewRodEngine(opts RodOptions) (*RodEngine, error) {
	l := launcher.New().
		Headless(opts.Headless).
		Set("disable-blink-features", "AutomationControlled").
		Set("no-first-run").
		Set("no-default-browser-check").
		Set("window-size", "1920,1080")
	if opts.Bin != "" {
		l = l.Bin(opts.Bin)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	return &RodEngine{opts: opts, launcher: l, browser: b}, nil
}

func (e *RodEngine) NewPage(ctx context.Context) (Page, error) {
	incognito, err := e.browser.Context(ctx).Incognito()
	if err != nil {
		return nil, fmt.Errorf("create incognito context: %w", err)
	}

	var page *rod.Page
	if e.opts.Stealth {
		page, err = stealth.Page(incognito)
	} else {
		page, err = incognito.Page(proto.TargetCreateTarget{})
	}
	if err != nil {
		_ = incognito.Close()
		return nil, fmt.Errorf("open page: %w", err)
	}

	return &rodPage{page: page, incognito: incognito, humanTyping: e.opts.HumanTyping}, nil
}

func (e *RodEngine) Close() error {
	err := e.browser.Close()
	e.launcher.Kill()
	return err
}

type rodPage struct {
	page        *rod.Page
	incognito   *rod.Browser
	humanTyping bool
}

func (p *rodPage) Navigate(ctx context.Context, url string) error {
	page := p.page.Context(ctx)
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("wait load %s: %w", url, err)
	}
	return WaitForIFrames(page)
}

func (p *rodPage) URL(ctx context.Context) (string, error) {
	info, err := p.page.Context(ctx).Info()
	if err != nil {
		return "", err
	}
	return info.URL, nil
}

func (p *rodPage) Title(ctx context.Context) (string, error) {
	info, err := p.page.Context(ctx).Info()
	if err != nil {
		return "", err
	}
	return info.Title, nil
}

// elements evaluates loc without waiting and applies its text filter.
func (p *rodPage) elements(ctx context.Context, loc Locator) (rod.Elements, error) {
	page := p.page.Context(ctx)

	var (
		els rod.Elements
		err error
	)
	switch loc.Kind {
	case KindXPath:
		els, err = page.ElementsX(loc.Expr)
	default:
		els, err = page.Elements(loc.Expr)
	}
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", loc, err)
	}
	if loc.Text == nil {
		return els, nil
	}

	filtered := els[:0]
	for _, el := range els {
		text, err := el.Text()
		if err != nil {
			continue
		}
		if loc.MatchesText(text) {
			filtered = append(filtered, el)
		}
	}
	return filtered, nil
}

func (p *rodPage) first(ctx context.Context, loc Locator) (*rod.Element, error) {
	els, err := p.elements(ctx, loc)
	if err != nil {
		return nil, err
	}
	if els.Empty() {
		return nil, fmt.Errorf("%w: %s", ErrNoElement, loc)
	}
	return els.First(), nil
}

func (p *rodPage) Count(ctx context.Context, loc Locator) (int, error) {
	els, err := p.elements(ctx, loc)
	if err != nil {
		return 0, err
	}
	return len(els), nil
}

func (p *rodPage) Tag(ctx context.Context, loc Locator) (string, error) {
	el, err := p.first(ctx, loc)
	if err != nil {
		return "", err
	}
	res, err := el.Eval(`() => this.tagName.toLowerCase()`)
	if err != nil {
		return "", fmt.Errorf("inspect tag: %w", err)
	}
	return res.Value.Str(), nil
}

func (p *rodPage) Visible(ctx context.Context, loc Locator) (bool, error) {
	els, err := p.elements(ctx, loc)
	if err != nil || els.Empty() {
		return false, err
	}
	return els.First().Visible()
}

func (p *rodPage) Enabled(ctx context.Context, loc Locator) (bool, error) {
	el, err := p.first(ctx, loc)
	if err != nil {
		return false, err
	}
	res, err := el.Eval(`() => !this.disabled && this.getAttribute('aria-disabled') !== 'true'`)
	if err != nil {
		return false, err
	}
	return res.Value.Bool(), nil
}

func (p *rodPage) Fill(ctx context.Context, loc Locator, value string) error {
	el, err := p.first(ctx, loc)
	if err != nil {
		return err
	}
	if err := el.SelectAllText(); err != nil {
		return fmt.Errorf("clear %s: %w", loc, err)
	}
	if p.humanTyping {
		return TypeHuman(el, value)
	}
	if err := el.Input(value); err != nil {
		return fmt.Errorf("fill %s: %w", loc, err)
	}
	return nil
}

func (p *rodPage) Click(ctx context.Context, loc Locator) error {
	el, err := p.first(ctx, loc)
	if err != nil {
		return err
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click %s: %w", loc, err)
	}
	return nil
}

const selectIndexJS = `(i) => {
	if (this.tagName !== 'SELECT') throw new Error('not a <select> element');
	if (i < 0 || i >= this.options.length) throw new Error('option index ' + i + ' out of range');
	this.selectedIndex = i;
	this.dispatchEvent(new Event('input', { bubbles: true }));
	this.dispatchEvent(new Event('change', { bubbles: true }));
}`

func (p *rodPage) SelectIndex(ctx context.Context, loc Locator, index int) error {
	el, err := p.first(ctx, loc)
	if err != nil {
		return err
	}
	if _, err := el.Eval(selectIndexJS, index); err != nil {
		return fmt.Errorf("select option %d on %s: %w", index, loc, err)
	}
	return nil
}

func (p *rodPage) HTML(ctx context.Context) (string, error) {
	return p.page.Context(ctx).HTML()
}

// FlattenedHTML inlines shadow roots and iframes into the returned document.
// It rewrites the live DOM, so call it only once the page is no longer used.
func (p *rodPage) FlattenedHTML(ctx context.Context) (string, error) {
	html, _, _, err := FlattenShadowDOM(p.page.Context(ctx))
	return html, err
}

func (p *rodPage) Close() error {
	return multierr.Combine(p.page.Close(), p.incognito.Close())
}
