package core

var (
	incomeCategories  = []string{"Salary", "Freelance", "Investment", "Gift", "Other"}
	expenseCategories = []string{"Food", "Transport", "Shopping", "Bills", "Entertainment", "Health", "Other"}
)

// CategoriesFor returns the suggested categories for a kind, in display
// order. The ledger accepts any non-empty category; this list is only offered
// to people entering data.
func CategoriesFor(k Kind) []string {
	switch k {
	case Income:
		return append([]string(nil), incomeCategories...)
	case Expense:
		return append([]string(nil), expenseCategories...)
	default:
		return nil
	}
}
