package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePlatform(t *testing.T) {
	assert.Equal(t, PlatformNone, NormalizePlatform(""))
	assert.Equal(t, PlatformNone, NormalizePlatform("  No Platform "))
	assert.Equal(t, PlatformEbay, NormalizePlatform("eBay"))
	assert.Equal(t, PlatformVinted, NormalizePlatform("VINTED"))
	assert.Equal(t, PlatformOther, NormalizePlatform("Facebook Marketplace"))
}

func TestMapGLAccount(t *testing.T) {
	assert.Equal(t, GLPostage, MapGLAccount("Shipping Fees"))
	assert.Equal(t, GLFees, MapGLAccount("Listing/Platform Fees"))
	assert.Equal(t, GLSupplies, MapGLAccount("Office Supplies"))
	assert.Equal(t, GLTravel, MapGLAccount("Sourcing Mileage/Transportation"))
	assert.Equal(t, GLOther, MapGLAccount("Donations"))
	assert.Equal(t, GLOther, MapGLAccount(""))
}

func TestFoldGLLabelKeepsUnmappedLabelsVisible(t *testing.T) {
	assert.Equal(t, "stamps", FoldGLLabel("stamps", "Postage"))
	assert.Equal(t, "annual dues [GL: Subscriptions/Dues]", FoldGLLabel("annual dues", "Subscriptions/Dues"))
	assert.Equal(t, "[GL: Donations]", FoldGLLabel("", "Donations"))
	assert.Equal(t, "plain", FoldGLLabel("plain", ""))
}

func TestSaleProfit(t *testing.T) {
	s := SaleRecord{SalePrice: 45, PurchasePrice: 12.5, ShippingCost: 4, TransactionFees: 3.5}
	assert.InDelta(t, 25, s.Profit(), 1e-9)
}
