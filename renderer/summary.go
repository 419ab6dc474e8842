package renderer

import "github.com/etnz/papertrade"

// Summary renders the account summary.
func Summary(s papertrade.Summary) string {
	return renderTemplate("summary", "summary.md", accountPartials(), s)
}

// Accounts renders one line per account summary.
func Accounts(summaries []papertrade.Summary) string {
	return renderTemplate("accounts", "accounts.md", nil, summaries)
}
