package demobank

import "regexp"

// Stable hooks exposed by the demo bank.
const (
	TestIDLoginInput    = "login-input"
	TestIDPasswordInput = "password-input"
	TestIDLoginButton   = "login-button"

	PathLogin = "/"
)

// Accessible names, matched case-insensitively against element text.
const (
	NamePersonalAccounts = "konta osobiste"
	NameRecentOperations = "ostatnie operacje"
	NameLogout           = "Wyloguj"
	NameQuickTransfer    = "szybki przelew"
	NameExecute          = "wykonaj"
)

// Text fragments for controls that carry no identifier.
const (
	FragmentAmount           = "kwota"
	FragmentTitle            = "tytu"
	FragmentAvailableBalance = "dostępne środki"
)

var (
	URLDashboard = regexp.MustCompile(`pulpit|pulpit\.html`)
	URLLoginPage = regexp.MustCompile(`index\.html|/$`)
	// The quick transfer form may also render inline on the dashboard.
	URLTransfer = regexp.MustCompile(`quick_payment\.html|quick_payment|pulpit\.html`)

	TitleLogin = regexp.MustCompile(`(?i)Logowanie`)
)

// Selectors used by the dashboard parser.
const (
	SelectorBalanceAmount   = "#money_value"
	SelectorBalanceCurrency = "#currency"
	SelectorOperationsTable = "table"
	SelectorOperationRows   = "tbody tr"
)
