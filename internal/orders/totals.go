package orders

import "github.com/shopspring/decimal"

// RemainingAfter returns what is left of stock once requested is taken on top
// of the quantity already reserved by earlier lines of the same order.
// ok is false when the request does not fit.
func RemainingAfter(stock, alreadyReserved, requested int) (remaining int, ok bool) {
	available := stock - alreadyReserved
	if requested <= 0 || requested > available {
		return available, false
	}
	return available - requested, true
}

func LineTotal(qty int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(qty)))
}

// ComputeTotal sums the lines and adds the branch fee when the order uses the delivery type.
func ComputeTotal(lines []Line, deliveryTypeID, deliveryID int64, deliveryFee decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(LineTotal(l.Quantity, l.UnitPrice))
	}
	if deliveryTypeID == deliveryID {
		total = total.Add(deliveryFee)
	}
	return total
}
