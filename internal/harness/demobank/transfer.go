package demobank

import (
	"context"

	"github.com/grez-lucas/bank-uicheck/internal/harness/browser"
	"github.com/grez-lucas/bank-uicheck/internal/harness/field"
	"github.com/sirupsen/logrus"
)

const pageTransfer = "transfer"

// TransferPage is the quick transfer form. It fills and inspects the form
// but never submits it.
type TransferPage struct {
	s *Session
}

func NewTransferPage(s *Session) *TransferPage {
	return &TransferPage{s: s}
}

func (p *TransferPage) Recipient() browser.Locator     { return browser.Role("combobox", "") }
func (p *TransferPage) ExecuteButton() browser.Locator { return browser.Role("button", NameExecute) }

func (p *TransferPage) quickTransferLink() browser.Locator {
	return browser.Role("link", NameQuickTransfer)
}

// Open follows the dashboard's quick transfer link.
func (p *TransferPage) Open(ctx context.Context) error {
	if err := p.s.click(ctx, p.quickTransferLink()); err != nil {
		return fail(pageTransfer, "Open", err, "")
	}
	err := browser.WaitURL(ctx, p.s.Page, URLTransfer, p.s.Config.Timeout)
	return fail(pageTransfer, "Open", err, "transfer form URL not reached")
}

func (p *TransferPage) VerifyLoaded(ctx context.Context) error {
	if err := browser.WaitURL(ctx, p.s.Page, URLTransfer, p.s.Config.Timeout); err != nil {
		return fail(pageTransfer, "VerifyLoaded", err, "")
	}
	return p.VerifyFormFieldsVisible(ctx)
}

// Amount resolves the amount box next to the "kwota" label.
func (p *TransferPage) Amount(ctx context.Context) (field.Result, error) {
	return p.s.Resolver.Locate(ctx, p.s.Page, FragmentAmount, field.KindInput)
}

// Title resolves the title box next to the "Tytułem" label.
func (p *TransferPage) Title(ctx context.Context) (field.Result, error) {
	return p.s.Resolver.Locate(ctx, p.s.Page, FragmentTitle, field.KindInput)
}

func (p *TransferPage) VerifyFormFieldsVisible(ctx context.Context) error {
	const op = "VerifyFormFieldsVisible"

	if err := p.s.waitVisible(ctx, p.Recipient()); err != nil {
		return fail(pageTransfer, op, err, "recipient selector")
	}
	for _, resolve := range []func(context.Context) (field.Result, error){p.Amount, p.Title} {
		res, err := resolve(ctx)
		if err != nil {
			return fail(pageTransfer, op, err, "")
		}
		if err := p.s.waitVisible(ctx, res.Locator); err != nil {
			return failField(pageTransfer, op, res, err)
		}
	}
	if err := p.s.waitVisible(ctx, p.ExecuteButton()); err != nil {
		return fail(pageTransfer, op, err, "execute button")
	}
	return nil
}

func (p *TransferPage) SelectRecipient(ctx context.Context, index int) error {
	loc := p.Recipient()
	if err := p.s.waitVisible(ctx, loc); err != nil {
		return fail(pageTransfer, "SelectRecipient", err, "")
	}
	return fail(pageTransfer, "SelectRecipient", p.s.Page.SelectIndex(ctx, loc, index), "")
}

func (p *TransferPage) FillAmount(ctx context.Context, amount string) error {
	return p.fillResolved(ctx, "FillAmount", p.Amount, amount)
}

func (p *TransferPage) FillTitle(ctx context.Context, title string) error {
	return p.fillResolved(ctx, "FillTitle", p.Title, title)
}

// fillResolved resolves a label-anchored text box, reconciled against a
// select false positive, and fills it once visible.
func (p *TransferPage) fillResolved(ctx context.Context, op string, resolve func(context.Context) (field.Result, error), value string) error {
	res, err := resolve(ctx)
	if err != nil {
		return fail(pageTransfer, op, err, "")
	}
	p.s.Log.WithFields(logrus.Fields{
		"fragment":  res.Fragment.String(),
		"strategy":  res.Strategy,
		"corrected": res.Corrected,
	}).Debug("Filling resolved field")

	if err := p.s.fill(ctx, res.Locator, value); err != nil {
		return failField(pageTransfer, op, res, err)
	}
	return nil
}

// FillForm selects a recipient and fills amount and title, in that order.
func (p *TransferPage) FillForm(ctx context.Context, recipientIndex int, amount, title string) error {
	if err := p.SelectRecipient(ctx, recipientIndex); err != nil {
		return err
	}
	if err := p.FillAmount(ctx, amount); err != nil {
		return err
	}
	return p.FillTitle(ctx, title)
}

// VerifyExecuteEnabled waits for the execute button to become enabled. The
// button is not clicked.
func (p *TransferPage) VerifyExecuteEnabled(ctx context.Context) error {
	err := browser.WaitEnabled(ctx, p.s.Page, p.ExecuteButton(), p.s.Config.Timeout)
	return fail(pageTransfer, "VerifyExecuteEnabled", err, "")
}
