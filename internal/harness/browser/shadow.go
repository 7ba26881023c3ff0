package browser

import (
	"encoding/json"
	"fmt"

	"github.com/go-rod/rod"
)

// flattenJS walks the document depth-first and copies every open shadow root
// into a <div data-shadow-root> appended to its host, and replaces every
// same-origin iframe with a <div data-captured-iframe> holding its body.
// Children are handled before their container is serialized: reading a
// shadow root's markup first would detach the live iframe documents in it.
const flattenJS = `() => {
	const LIMIT = 100;
	const counts = { shadow: 0, iframe: 0 };

	const walk = (node, depth) => {
		if (depth > LIMIT) return;
		for (const child of Array.from(node.childNodes)) {
			if (child.nodeType === Node.ELEMENT_NODE) visit(child, depth);
		}
	};

	const visit = (el, depth) => {
		if (el.tagName === 'IFRAME') return inlineFrame(el, depth);
		walk(el, depth + 1);
		if (el.shadowRoot) copyShadow(el, depth);
	};

	const copyShadow = (host, depth) => {
		const root = host.shadowRoot;
		walk(root, depth + 1);
		const box = document.createElement('div');
		box.setAttribute('data-shadow-root', 'true');
		box.setAttribute('data-shadow-host', host.tagName.toLowerCase());
		for (const child of Array.from(root.childNodes)) {
			try { box.appendChild(child.cloneNode(true)); } catch (e) {}
		}
		host.appendChild(box);
		counts.shadow++;
	};

	const inlineFrame = (frame, depth) => {
		const owner = frame.ownerDocument;
		const box = owner.createElement('div');
		box.setAttribute('data-captured-iframe', 'true');
		box.setAttribute('data-iframe-src', frame.src || '');
		try {
			const doc = frame.contentDocument;
			if (!doc || !doc.body) throw new Error('no contentDocument');
			walk(doc.documentElement, depth + 1);
			box.innerHTML = doc.body.innerHTML;
			counts.iframe++;
		} catch (e) {
			box.setAttribute('data-iframe-error', e.message);
		}
		frame.parentNode.replaceChild(box, frame);
	};

	walk(document.documentElement, 0);
	return JSON.stringify({
		html: document.documentElement.outerHTML,
		shadowCount: counts.shadow,
		iframeCount: counts.iframe,
	});
}`

type flattenResult struct {
	HTML        string `json:"html"`
	ShadowCount int    `json:"shadowCount"`
	IframeCount int    `json:"iframeCount"`
}

// FlattenShadowDOM returns the page as a single HTML document with shadow
// roots and iframes inlined, so fixtures and failure snapshots can be read
// with goquery or htmlquery. It mutates the live DOM.
//
// When the script cannot run the plain page.HTML() output is returned with
// zero counts.
func FlattenShadowDOM(page *rod.Page) (html string, shadowCount int, iframeCount int, err error) {
	res, evalErr := page.Eval(flattenJS)
	if evalErr == nil {
		var out flattenResult
		if jsonErr := json.Unmarshal([]byte(res.Value.Str()), &out); jsonErr == nil {
			return out.HTML, out.ShadowCount, out.IframeCount, nil
		}
	}

	html, err = page.HTML()
	if err != nil {
		return "", 0, 0, fmt.Errorf("flatten failed and plain HTML failed: %w", err)
	}
	return html, 0, 0, nil
}
