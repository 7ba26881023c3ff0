package browser

import (
	"time"

	"github.com/go-rod/rod"
)

// WaitForIFrames waits for the DOM of page and of every visible iframe below
// it to stop changing. Frames that cannot be entered are skipped.
func WaitForIFrames(page *rod.Page) error {
	if err := page.WaitDOMStable(time.Second, 0); err != nil {
		return err
	}

	iframes, err := page.Elements("iframe")
	if err != nil {
		return nil
	}

	for _, iframe := range iframes {
		if visible, _ := iframe.Visible(); !visible {
			continue
		}
		frame, err := iframe.Frame()
		if err != nil {
			continue
		}
		if err := WaitForIFrames(frame); err != nil {
			return err
		}
	}
	return nil
}
