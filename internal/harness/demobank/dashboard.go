package demobank

import (
	"context"

	"github.com/grez-lucas/bank-uicheck/internal/harness/browser"
	"github.com/grez-lucas/bank-uicheck/internal/harness/outcome"
)

const pageDashboard = "dashboard"

// CheckBalance names the tolerant balance check. The demo app sometimes
// hides the balance block with CSS while keeping it in the DOM.
const CheckBalance = "available-balance"

var availableBalance = mustAnchor(FragmentAvailableBalance)

type DashboardPage struct {
	s *Session
}

func NewDashboardPage(s *Session) *DashboardPage {
	return &DashboardPage{s: s}
}

func (p *DashboardPage) PersonalAccountsHeading() browser.Locator {
	return browser.Role("heading", NamePersonalAccounts)
}

func (p *DashboardPage) AvailableBalance() browser.Locator { return availableBalance }

func (p *DashboardPage) RecentOperationsHeading() browser.Locator {
	return browser.Role("heading", NameRecentOperations)
}

func (p *DashboardPage) RecentOperationsTable() browser.Locator {
	return browser.CSS(SelectorOperationsTable)
}

func (p *DashboardPage) LogoutLink() browser.Locator { return browser.Role("link", NameLogout) }

// VerifyVisible checks the accounts and operations sections. The balance
// passes when visible, or when merely present in the DOM.
func (p *DashboardPage) VerifyVisible(ctx context.Context) (outcome.Verdict, error) {
	if err := p.s.waitVisible(ctx, p.PersonalAccountsHeading()); err != nil {
		return outcome.Verdict{}, fail(pageDashboard, "VerifyVisible", err, "personal accounts heading")
	}

	v, err := p.s.Policy.Evaluate(ctx, outcome.Expectation{
		Check:     CheckBalance,
		Primary:   p.s.visibleProbe("balance visible", p.AvailableBalance()),
		Secondary: p.s.presentProbe("balance in DOM", p.AvailableBalance()),
	})
	if err != nil {
		return outcome.Verdict{}, fail(pageDashboard, "VerifyVisible", err, "available balance")
	}

	for _, loc := range []browser.Locator{p.RecentOperationsHeading(), p.RecentOperationsTable()} {
		if err := p.s.waitVisible(ctx, loc); err != nil {
			return outcome.Verdict{}, fail(pageDashboard, "VerifyVisible", err, loc.String())
		}
	}
	return v, nil
}

func (p *DashboardPage) VerifyLogoutVisible(ctx context.Context) error {
	return fail(pageDashboard, "VerifyLogoutVisible", p.s.waitVisible(ctx, p.LogoutLink()), "")
}

// Logout clicks the logout link and waits for the login page.
func (p *DashboardPage) Logout(ctx context.Context) error {
	if err := p.s.click(ctx, p.LogoutLink()); err != nil {
		return fail(pageDashboard, "Logout", err, "")
	}
	if err := browser.WaitURL(ctx, p.s.Page, URLLoginPage, p.s.Config.Timeout); err != nil {
		return fail(pageDashboard, "Logout", err, "login page URL not reached")
	}
	err := browser.WaitTitle(ctx, p.s.Page, TitleLogin, p.s.Config.Timeout)
	return fail(pageDashboard, "Logout", err, "login page title not shown")
}

// Summary parses the balance and recent operations from the current page.
func (p *DashboardPage) Summary(ctx context.Context) (*Summary, error) {
	html, err := p.s.Page.HTML(ctx)
	if err != nil {
		return nil, fail(pageDashboard, "Summary", err, "")
	}
	sum, err := ParseDashboard(html)
	return sum, fail(pageDashboard, "Summary", err, "")
}
