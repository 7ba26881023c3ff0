package testutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"github.com/grez-lucas/bank-uicheck/internal/harness/browser"
	"golang.org/x/net/html"
)

var ErrClosed = errors.New("fixture page closed")

// SubmitFunc decides where a submitted form leads. It receives the form's
// action path and its field values keyed by name, id or data-testid, and
// returns the path to load next.
type SubmitFunc func(action string, values url.Values) string

// Site is a fixed set of HTML documents addressed by path.
type Site struct {
	Base   string
	Pages  map[string]string
	Submit SubmitFunc
}

func NewSite(base string, pages map[string]string) *Site {
	return &Site{Base: strings.TrimRight(base, "/"), Pages: pages}
}

// Engine implements browser.Engine over a Site. Pages are independent.
type Engine struct {
	Site *Site

	mu     sync.Mutex
	opened []*Page
}

func NewEngine(site *Site) *Engine {
	return &Engine{Site: site}
}

func (e *Engine) NewPage(ctx context.Context) (browser.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := &Page{site: e.Site}
	e.mu.Lock()
	e.opened = append(e.opened, p)
	e.mu.Unlock()
	return p, nil
}

// Pages returns every page handed out so far.
func (e *Engine) Pages() []*Page {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*Page(nil), e.opened...)
}

func (e *Engine) Close() error { return nil }

// Page is a static document that emulates the few behaviours the harness
// relies on: link and form navigation, value entry, option selection, and
// submit buttons marked data-autoenable that stay disabled until every
// required field of their form has a value. No script runs.
type Page struct {
	site *Site

	mu     sync.Mutex
	doc    *html.Node
	url    string
	closed bool

	// Clicks records the locators of every click that reached an element.
	Clicks []string
}

// NewPage parses a standalone document, for tests that need no Site.
func NewPage(pageURL, document string) (*Page, error) {
	p := &Page{site: NewSite("", nil)}
	if err := p.load(pageURL, document); err != nil {
		return nil, err
	}
	return p, nil
}

// MustPage is NewPage for test tables.
func MustPage(document string) *Page {
	p, err := NewPage("http://fixture.test/", document)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Page) load(pageURL, document string) error {
	doc, err := html.Parse(strings.NewReader(document))
	if err != nil {
		return fmt.Errorf("parse fixture %s: %w", pageURL, err)
	}
	p.doc = doc
	p.url = pageURL
	p.refreshAutoEnable()
	return nil
}

func (p *Page) guard(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.closed {
		return ErrClosed
	}
	if p.doc == nil {
		return fmt.Errorf("%w: nothing loaded", browser.ErrNoElement)
	}
	return nil
}

func (p *Page) Navigate(ctx context.Context, target string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	return p.navigate(target)
}

func (p *Page) navigate(target string) error {
	u, err := url.Parse(target)
	if err != nil {
		return fmt.Errorf("navigate %q: %w", target, err)
	}
	if !u.IsAbs() {
		base, _ := url.Parse(p.site.Base + "/")
		if p.url != "" {
			base, _ = url.Parse(p.url)
		}
		u = base.ResolveReference(u)
	}

	path := u.Path
	if path == "" {
		path = "/"
	}
	document, ok := p.site.Pages[path]
	if !ok {
		return fmt.Errorf("navigate %s: no fixture for path %q", u, path)
	}
	return p.load(u.String(), document)
}

func (p *Page) URL(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.guard(ctx); err != nil {
		return "", err
	}
	return p.url, nil
}

func (p *Page) Title(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.guard(ctx); err != nil {
		return "", err
	}
	if n := htmlquery.FindOne(p.doc, "//title"); n != nil {
		return strings.TrimSpace(htmlquery.InnerText(n)), nil
	}
	return "", nil
}

// query evaluates loc the way the live engines do: XPath through htmlquery,
// CSS through goquery, then the text filter.
func (p *Page) query(loc browser.Locator) ([]*html.Node, error) {
	var nodes []*html.Node
	switch loc.Kind {
	case browser.KindXPath:
		found, err := htmlquery.QueryAll(p.doc, loc.Expr)
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", loc, err)
		}
		nodes = found
	default:
		nodes = goquery.NewDocumentFromNode(p.doc).Find(loc.Expr).Nodes
	}

	if loc.Text == nil {
		return nodes, nil
	}
	filtered := nodes[:0]
	for _, n := range nodes {
		if loc.MatchesText(htmlquery.InnerText(n)) {
			filtered = append(filtered, n)
		}
	}
	return filtered, nil
}

func (p *Page) first(loc browser.Locator) (*html.Node, error) {
	nodes, err := p.query(loc)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: %s", browser.ErrNoElement, loc)
	}
	return nodes[0], nil
}

func (p *Page) Count(ctx context.Context, loc browser.Locator) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.guard(ctx); err != nil {
		return 0, err
	}
	nodes, err := p.query(loc)
	return len(nodes), err
}

func (p *Page) Tag(ctx context.Context, loc browser.Locator) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.guard(ctx); err != nil {
		return "", err
	}
	n, err := p.first(loc)
	if err != nil {
		return "", err
	}
	return n.Data, nil
}

func (p *Page) Visible(ctx context.Context, loc browser.Locator) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.guard(ctx); err != nil {
		return false, err
	}
	nodes, err := p.query(loc)
	if err != nil || len(nodes) == 0 {
		return false, err
	}
	return rendered(nodes[0]), nil
}

func (p *Page) Enabled(ctx context.Context, loc browser.Locator) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.guard(ctx); err != nil {
		return false, err
	}
	n, err := p.first(loc)
	if err != nil {
		return false, err
	}
	return enabled(n), nil
}

func (p *Page) Fill(ctx context.Context, loc browser.Locator, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.guard(ctx); err != nil {
		return err
	}
	n, err := p.first(loc)
	if err != nil {
		return err
	}
	if !enabled(n) {
		return fmt.Errorf("fill %s: element is disabled", loc)
	}

	switch n.Data {
	case "input":
		setAttr(n, "value", value)
	case "textarea":
		for c := n.FirstChild; c != nil; c = n.FirstChild {
			n.RemoveChild(c)
		}
		n.AppendChild(&html.Node{Type: html.TextNode, Data: value})
	default:
		return fmt.Errorf("fill %s: <%s> is not an input or textarea", loc, n.Data)
	}
	p.refreshAutoEnable()
	return nil
}

func (p *Page) SelectIndex(ctx context.Context, loc browser.Locator, index int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.guard(ctx); err != nil {
		return err
	}
	n, err := p.first(loc)
	if err != nil {
		return err
	}
	if n.Data != "select" {
		return fmt.Errorf("select option on %s: <%s> is not a select", loc, n.Data)
	}

	options := htmlquery.Find(n, ".//option")
	if index < 0 || index >= len(options) {
		return fmt.Errorf("select option on %s: index %d out of range (%d options)", loc, index, len(options))
	}
	for i, opt := range options {
		if i == index {
			setAttr(opt, "selected", "")
		} else {
			removeAttr(opt, "selected")
		}
	}
	p.refreshAutoEnable()
	return nil
}

func (p *Page) Click(ctx context.Context, loc browser.Locator) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.guard(ctx); err != nil {
		return err
	}
	n, err := p.first(loc)
	if err != nil {
		return err
	}
	if !enabled(n) {
		return fmt.Errorf("click %s: element is disabled", loc)
	}
	p.Clicks = append(p.Clicks, loc.String())

	if a := closest(n, "a"); a != nil {
		if href := htmlquery.SelectAttr(a, "href"); href != "" && !strings.HasPrefix(href, "#") {
			return p.navigate(href)
		}
	}

	if isSubmit(n) {
		if form := closest(n, "form"); form != nil {
			action := htmlquery.SelectAttr(form, "action")
			if p.site.Submit != nil {
				action = p.site.Submit(action, formValues(form))
			}
			if action != "" {
				return p.navigate(action)
			}
		}
	}
	return nil
}

func (p *Page) HTML(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.guard(ctx); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, p.doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (p *Page) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// ClickCount returns how many clicks reached an element.
func (p *Page) ClickCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Clicks)
}

// Value returns the current value of the first element matched by loc.
func (p *Page) Value(loc browser.Locator) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	n, err := p.first(loc)
	if err != nil {
		return "", err
	}
	return fieldValue(n), nil
}

// Attr returns an attribute of the first element matched by loc.
func (p *Page) Attr(loc browser.Locator, name string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	n, err := p.first(loc)
	if err != nil {
		return "", err
	}
	return htmlquery.SelectAttr(n, name), nil
}

// Text returns the text content of the first element matched by loc.
func (p *Page) Text(loc browser.Locator) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	n, err := p.first(loc)
	if err != nil {
		return "", err
	}
	return htmlquery.InnerText(n), nil
}

// SetDocument replaces the document in place, keeping the URL, the way a
// client-side re-render would.
func (p *Page) SetDocument(document string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.load(p.url, document)
}

// refreshAutoEnable mimics the demo app's client-side validation.
func (p *Page) refreshAutoEnable() {
	for _, btn := range htmlquery.Find(p.doc, "//*[@data-autoenable]") {
		form := closest(btn, "form")
		if form == nil {
			continue
		}
		filled := true
		for _, f := range htmlquery.Find(form, ".//*[(self::input or self::select or self::textarea) and @required]") {
			if fieldValue(f) == "" {
				filled = false
				break
			}
		}
		if filled {
			removeAttr(btn, "disabled")
		} else {
			setAttr(btn, "disabled", "")
		}
	}
}

func fieldValue(n *html.Node) string {
	switch n.Data {
	case "textarea":
		return htmlquery.InnerText(n)
	case "select":
		options := htmlquery.Find(n, ".//option")
		for _, opt := range options {
			if hasAttr(opt, "selected") {
				return optionValue(opt)
			}
		}
		if len(options) > 0 {
			return optionValue(options[0])
		}
		return ""
	default:
		return htmlquery.SelectAttr(n, "value")
	}
}

func optionValue(opt *html.Node) string {
	if hasAttr(opt, "value") {
		return htmlquery.SelectAttr(opt, "value")
	}
	return strings.TrimSpace(htmlquery.InnerText(opt))
}

func formValues(form *html.Node) url.Values {
	values := url.Values{}
	for _, f := range htmlquery.Find(form, ".//input | .//select | .//textarea") {
		key := htmlquery.SelectAttr(f, "name")
		if key == "" {
			key = htmlquery.SelectAttr(f, "id")
		}
		if key == "" {
			key = htmlquery.SelectAttr(f, "data-testid")
		}
		if key != "" {
			values.Set(key, fieldValue(f))
		}
	}
	return values
}

// rendered approximates visibility without layout: hidden attributes,
// inline display:none or visibility:hidden, hidden inputs, and <head>.
func rendered(n *html.Node) bool {
	if n.Data == "input" && strings.EqualFold(htmlquery.SelectAttr(n, "type"), "hidden") {
		return false
	}
	for c := n; c != nil; c = c.Parent {
		if c.Type != html.ElementNode {
			continue
		}
		if c.Data == "head" || hasAttr(c, "hidden") {
			return false
		}
		style := strings.ReplaceAll(strings.ToLower(htmlquery.SelectAttr(c, "style")), " ", "")
		if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
			return false
		}
	}
	return true
}

func enabled(n *html.Node) bool {
	if hasAttr(n, "disabled") || htmlquery.SelectAttr(n, "aria-disabled") == "true" {
		return false
	}
	if fs := closest(n.Parent, "fieldset"); fs != nil && hasAttr(fs, "disabled") {
		return false
	}
	return true
}

func isSubmit(n *html.Node) bool {
	typ := strings.ToLower(htmlquery.SelectAttr(n, "type"))
	switch n.Data {
	case "button":
		return typ == "" || typ == "submit"
	case "input":
		return typ == "submit"
	}
	return false
}

func closest(n *html.Node, tag string) *html.Node {
	for c := n; c != nil; c = c.Parent {
		if c.Type == html.ElementNode && c.Data == tag {
			return c
		}
	}
	return nil
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	attrs := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Key != key {
			attrs = append(attrs, a)
		}
	}
	n.Attr = attrs
}
