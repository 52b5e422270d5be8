package packs

import "github.com/dpshade/pocket-meta/internal/models"

// DefaultSeed returns the records loaded when no packs file is configured.
func DefaultSeed() []models.PackRecord {
	return []models.PackRecord{
		{
			ID:       "pack-1",
			Name:     "US Identity Cards",
			PackName: "US_ID_V1",
			Goal:     "Produce photorealistic US state ID card scans for document parsing training",
			Directives: "Front side, flat scan, even lighting\n" +
				"Front side, phone photo at a slight angle\n" +
				"Back side with barcode fully visible",
			SystemNotes: "Use obviously fictional names and numbers. Never reproduce a real person.",
		},
		{
			ID:       "pack-2",
			Name:     "Turkish Invoices",
			PackName: "TR_INVOICE",
			Goal:     "Produce Turkish e-invoice printouts with varied layouts",
			Directives: "Single page, A4, printed and scanned\n" +
				"Crumpled paper photographed on a desk\n" +
				"Multi-line items with VAT breakdown",
			SystemNotes: "Amounts in TRY. Tax numbers must be syntactically valid but fictional.",
		},
		{
			ID:       "pack-3",
			Name:     "Retail Receipts",
			PackName: "RECEIPT_MIX",
			Goal:     "Produce thermal-paper receipts from mixed retailers",
			Directives: "Long receipt, partially faded\n" +
				"Short receipt held in hand",
			SystemNotes: "Keep totals arithmetically consistent with line items.",
		},
	}
}
