package pricing

// ProjectTotals aggregates all priced line items of a project. Currency is
// nil when the lines mix currencies, since their totals cannot be safely
// combined into one figure.
type ProjectTotals struct {
	Currency     *string
	ListSubtotal float64
	Discounts    float64
	Subtotal     float64
	Shipping     float64
	Tax          float64
	Total        float64
	Margin       float64
	ShippingMeta RateMeta
	TaxMeta      RateMeta
	Lines        []LinePricing
}

// ComputeProjectTotals folds every line through ComputeLinePricing and
// resolves project-level shipping/tax with a single estimator call over
// the aggregated subtotal. The estimator result, when it decides, wins
// over the summed per-line supplier shipping/tax, which remain only as a
// fallback.
func ComputeProjectTotals(lines []LineInput, params Params) ProjectTotals {
	totals := ProjectTotals{
		Lines: make([]LinePricing, 0, len(lines)),
	}

	var lineShipping, lineTax float64
	var currency string
	mixed := false

	for _, line := range lines {
		priced := ComputeLinePricing(line, params)
		totals.Lines = append(totals.Lines, priced)

		totals.ListSubtotal += priced.ListTotal
		totals.Discounts += priced.DiscountTotal
		totals.Subtotal += priced.Total
		totals.Margin += priced.Margin
		lineShipping += priced.Shipping
		lineTax += priced.Tax

		if priced.Currency == "" {
			continue
		}
		switch {
		case currency == "":
			currency = priced.Currency
		case currency != priced.Currency:
			mixed = true
		}
	}

	if currency != "" && !mixed {
		totals.Currency = &currency
	}

	est := EstimateShippingTax(EstimateInput{
		Subtotal:   totals.Subtotal,
		ClientMeta: params.ClientMeta,
		TaxStatus:  params.TaxStatus,
	})
	totals.ShippingMeta = est.ShippingMeta
	totals.TaxMeta = est.TaxMeta

	totals.Shipping = lineShipping
	if est.Shipping != nil {
		totals.Shipping = *est.Shipping
	}
	totals.Tax = lineTax
	if est.Tax != nil {
		totals.Tax = *est.Tax
	}

	totals.Total = totals.Subtotal + totals.Shipping + totals.Tax
	return totals
}
