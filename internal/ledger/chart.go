package ledger

// Well-known postable accounts referenced by the event templates.
const (
	AccountCash            = "1.1.1"
	AccountBank            = "1.1.2"
	AccountReceivables     = "1.2.1"
	AccountSeedInventory   = "1.3.1"
	AccountFertInventory   = "1.3.2"
	AccountAgroInventory   = "1.3.3"
	AccountCropsInProgress = "1.4.1"
	AccountGrainStock      = "1.5.1"
	AccountGrainConsigned  = "1.5.2"
	AccountPayables        = "2.1.1"
	AccountCapital         = "3.1.1"
	AccountGrainSales      = "4.1.1"
	AccountProductionCosts = "5.1.1"
)

// ChartEntry is one row of the predefined chart of accounts.
type ChartEntry struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Kind        Kind   `json:"kind"`
	Description string `json:"description"`
}

// PredefinedChart is the default agricultural plan of accounts, seeded at
// migration time. Level-3 codes are postable; levels 1 and 2 aggregate.
var PredefinedChart = []ChartEntry{
	// Assets (1.x)
	{Code: "1", Name: "Assets", Kind: KindAsset, Description: "All asset accounts"},
	{Code: "1.1", Name: "Cash and Banks", Kind: KindAsset, Description: "Liquid funds"},
	{Code: "1.1.1", Name: "Cash", Kind: KindAsset, Description: "Cash on hand"},
	{Code: "1.1.2", Name: "Bank Accounts", Kind: KindAsset, Description: "Balances at banks"},
	{Code: "1.2", Name: "Receivables", Kind: KindAsset, Description: "Amounts owed by customers"},
	{Code: "1.2.1", Name: "Trade Receivables", Kind: KindAsset, Description: "Open customer invoices"},
	{Code: "1.3", Name: "Input Inventory", Kind: KindAsset, Description: "Agricultural inputs in storage"},
	{Code: "1.3.1", Name: "Seeds", Kind: KindAsset, Description: "Seed stock by campaign"},
	{Code: "1.3.2", Name: "Fertilizers", Kind: KindAsset, Description: "Fertilizer stock"},
	{Code: "1.3.3", Name: "Agrochemicals", Kind: KindAsset, Description: "Herbicides, insecticides, fungicides"},
	{Code: "1.4", Name: "Crops in Progress", Kind: KindAsset, Description: "Costs accumulated on standing crops"},
	{Code: "1.4.1", Name: "Crop Production", Kind: KindAsset, Description: "Inputs applied to unharvested crops"},
	{Code: "1.5", Name: "Grain Stock", Kind: KindAsset, Description: "Harvested grain"},
	{Code: "1.5.1", Name: "Grain on Hand", Kind: KindAsset, Description: "Grain in own silos"},
	{Code: "1.5.2", Name: "Grain Held by Third Parties", Kind: KindAsset, Description: "Grain delivered on consignment"},

	// Liabilities (2.x)
	{Code: "2", Name: "Liabilities", Kind: KindLiability, Description: "All liability accounts"},
	{Code: "2.1", Name: "Trade Payables", Kind: KindLiability, Description: "Amounts owed to suppliers"},
	{Code: "2.1.1", Name: "Suppliers", Kind: KindLiability, Description: "Open supplier invoices"},

	// Equity (3.x)
	{Code: "3", Name: "Equity", Kind: KindEquity, Description: "Owner's equity"},
	{Code: "3.1", Name: "Capital", Kind: KindEquity, Description: "Contributed capital"},
	{Code: "3.1.1", Name: "Owner Capital", Kind: KindEquity, Description: "Capital contributions and withdrawals"},

	// Income (4.x)
	{Code: "4", Name: "Income", Kind: KindIncome, Description: "All income accounts"},
	{Code: "4.1", Name: "Sales", Kind: KindIncome, Description: "Revenue from sales"},
	{Code: "4.1.1", Name: "Grain Sales", Kind: KindIncome, Description: "Revenue from grain sold"},

	// Expenses (5.x)
	{Code: "5", Name: "Expenses", Kind: KindExpense, Description: "All expense accounts"},
	{Code: "5.1", Name: "Production Costs", Kind: KindExpense, Description: "Costs of agricultural production"},
	{Code: "5.1.1", Name: "Campaign Costs", Kind: KindExpense, Description: "Costs expensed against a campaign"},
}

// LookupChartEntry finds a predefined chart entry by code.
func LookupChartEntry(code string) *ChartEntry {
	for i := range PredefinedChart {
		if PredefinedChart[i].Code == code {
			return &PredefinedChart[i]
		}
	}
	return nil
}
