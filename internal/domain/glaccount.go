// internal/domain/glaccount.go
package domain

import (
	"fmt"
	"strings"
)

// GLAccount is the coarse ledger-account enum stored on expenses.
type GLAccount string

const (
	GLPostage  GLAccount = "Postage"
	GLFees     GLAccount = "Fees"
	GLSupplies GLAccount = "Supplies"
	GLTravel   GLAccount = "Travel"
	GLOther    GLAccount = "Other"
)

// GLAccountLabels are the friendly labels offered for expense entry. The
// vocabulary is open: unknown labels still map through MapGLAccount.
var GLAccountLabels = []string{
	"Bank Fees",
	"Car Expenses",
	"Cell Phone",
	"Contract Work",
	"Donations",
	"Equipment",
	"Internet",
	"Inventory Purchases",
	"Listing/Platform Fees",
	"Non-Sourcing Mileage/Transportation",
	"Office Supplies",
	"Rent",
	"Shipping Fees",
	"Shipping Supplies",
	"Sourcing Mileage/Transportation",
	"Subscriptions/Dues",
	"Travel",
	"Utilities",
	"Postage",
	"Fees",
	"Supplies",
	"Other",
}

// MapGLAccount coarsely maps a friendly label into the GLAccount enum.
func MapGLAccount(input string) GLAccount {
	v := strings.ToLower(strings.TrimSpace(input))

	if strings.Contains(v, "postage") || strings.Contains(v, "shipping") {
		return GLPostage
	}
	if strings.Contains(v, "fee") || strings.Contains(v, "listing") {
		return GLFees
	}
	if strings.Contains(v, "office") || strings.Contains(v, "suppl") {
		return GLSupplies
	}
	if strings.Contains(v, "travel") || strings.Contains(v, "mileage") || strings.Contains(v, "transport") {
		return GLTravel
	}
	return GLOther
}

// FoldGLLabel keeps an unmapped label visible by folding it into the
// description, so nothing entered by the user silently disappears.
func FoldGLLabel(description, label string) string {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "postage", "fees", "supplies", "travel", "other", "":
		return description
	}
	return strings.TrimSpace(fmt.Sprintf("%s [GL: %s]", description, label))
}
