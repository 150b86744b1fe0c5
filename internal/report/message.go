package report

import (
	"fmt"

	"countysales/internal/domain"
	"countysales/internal/ports"
)

const investorMessage = `
Attached is the latest real estate sales report from all monitored counties.
Data has been cleaned and filtered for investor use, showing only recent property sales with confirmed prices.

Column explanations:
parcel_id - The unique property ID assigned by the county auditor.
fin_sqft - Finished square footage of the property. Some sites don't return this info so it might be blank for certain counties.
price_per_sqft - Sale price divided by finished square feet. Useful for comparing across different sized homes.
est_monthly_rent - A rent estimate using the "1% rule" (about 1% of sale price per month).
est_roi - Estimated return on investment (cap rate style) based on rent vs sale price.
cash_sale_flag - "True" if the property appears to have sold for cash (sale price = 0 or unusual entry). This is only a guess.
deal_flag - "True" if this property sold at least 20% below the median price per square foot (potential below-market deal).
`

// Subject is the email subject line for a run.
func Subject(window domain.DateRange) string {
	return fmt.Sprintf("Real Estate Sales Report - %s to %s", window.PortalStart(), window.PortalEnd())
}

// Body appends the county summaries to the fixed column guide.
func Body(summary string) string {
	return investorMessage + "\nIndividual County Summaries:\n" + summary
}

// NewMessage assembles the report email for the given artifacts.
func NewMessage(window domain.DateRange, summary string, attachments []string) ports.Message {
	return ports.Message{
		Subject:     Subject(window),
		Body:        Body(summary),
		Attachments: attachments,
	}
}
