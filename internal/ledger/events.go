package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Event is a typed business event that translates into one balanced journal
// entry. The set of variants is closed: EventLines matches exhaustively and
// each variant fixes the accounts and directions of its template, never the
// amounts.
type Event interface {
	isEvent()
	Description() string
}

// InputPurchase records buying an agricultural input from a supplier.
// Debit the input inventory account (by input type), credit supplier payables.
type InputPurchase struct {
	InputAccount string          `json:"input_account"` // 1.3.x
	SupplierID   string          `json:"supplier_id"`
	Input        string          `json:"input"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	CostCenter   string          `json:"cost_center,omitempty"`
}

// InputApplication records applying a stored input to a standing crop.
// Debit crops in progress, credit the input inventory account.
type InputApplication struct {
	InputAccount string          `json:"input_account"` // 1.3.x
	Input        string          `json:"input"`
	Crop         string          `json:"crop"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	CostCenter   string          `json:"cost_center,omitempty"` // field/plot/campaign
}

// Harvest records moving a finished crop into grain stock at accumulated cost.
// Debit grain on hand, credit crops in progress.
type Harvest struct {
	Crop       string          `json:"crop"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
	CostCenter string          `json:"cost_center,omitempty"`
}

// ConsignmentDelivery records delivering grain to a buyer without transfer of
// ownership. Debit grain held by third parties, credit grain on hand.
type ConsignmentDelivery struct {
	Crop       string          `json:"crop"`
	Buyer      string          `json:"buyer"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
	CostCenter string          `json:"cost_center,omitempty"`
}

// DirectSale records selling grain to a buyer on account.
// Debit trade receivables tagged with the buyer, credit grain sales.
type DirectSale struct {
	Crop       string          `json:"crop"`
	BuyerID    string          `json:"buyer_id"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
	CostCenter string          `json:"cost_center,omitempty"`
}

// Collection records a customer paying down their receivable.
// Debit cash/bank, credit trade receivables tagged with the customer.
type Collection struct {
	CashAccount string          `json:"cash_account,omitempty"` // 1.1.x, defaults to cash
	CustomerID  string          `json:"customer_id"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
}

// SupplierPayment records paying down a supplier payable.
// Debit supplier payables tagged with the supplier, credit cash/bank.
type SupplierPayment struct {
	CashAccount string          `json:"cash_account,omitempty"` // 1.1.x, defaults to cash
	SupplierID  string          `json:"supplier_id"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
}

func (InputPurchase) isEvent()       {}
func (InputApplication) isEvent()    {}
func (Harvest) isEvent()             {}
func (ConsignmentDelivery) isEvent() {}
func (DirectSale) isEvent()          {}
func (Collection) isEvent()          {}
func (SupplierPayment) isEvent()     {}

func (e InputPurchase) Description() string {
	return fmt.Sprintf("Purchase of %s", e.Input)
}

func (e InputApplication) Description() string {
	return fmt.Sprintf("Application of %s to %s", e.Input, e.Crop)
}

func (e Harvest) Description() string {
	return fmt.Sprintf("Harvest of %s", e.Crop)
}

func (e ConsignmentDelivery) Description() string {
	return fmt.Sprintf("Consignment delivery of %s to %s", e.Crop, e.Buyer)
}

func (e DirectSale) Description() string {
	return fmt.Sprintf("Sale of %s", e.Crop)
}

func (e Collection) Description() string {
	return "Collection from customer"
}

func (e SupplierPayment) Description() string {
	return "Payment to supplier"
}

func (e Collection) cashAccount() string {
	if e.CashAccount != "" {
		return e.CashAccount
	}
	return AccountCash
}

func (e SupplierPayment) cashAccount() string {
	if e.CashAccount != "" {
		return e.CashAccount
	}
	return AccountCash
}

// EventLines builds the candidate journal lines for an event. Pure: it never
// touches the store, and the resulting lines still go through full posting
// validation.
func EventLines(ev Event) ([]LedgerLine, error) {
	switch ev := ev.(type) {
	case InputPurchase:
		return []LedgerLine{
			{AccountCode: ev.InputAccount, Direction: Debit, Amount: ev.Amount, Currency: ev.Currency, CostCenter: ev.CostCenter},
			{AccountCode: AccountPayables, Direction: Credit, Amount: ev.Amount, Currency: ev.Currency, ThirdPartyID: ev.SupplierID},
		}, nil
	case InputApplication:
		return []LedgerLine{
			{AccountCode: AccountCropsInProgress, Direction: Debit, Amount: ev.Amount, Currency: ev.Currency, CostCenter: ev.CostCenter},
			{AccountCode: ev.InputAccount, Direction: Credit, Amount: ev.Amount, Currency: ev.Currency},
		}, nil
	case Harvest:
		return []LedgerLine{
			{AccountCode: AccountGrainStock, Direction: Debit, Amount: ev.Amount, Currency: ev.Currency, CostCenter: ev.CostCenter},
			{AccountCode: AccountCropsInProgress, Direction: Credit, Amount: ev.Amount, Currency: ev.Currency, CostCenter: ev.CostCenter},
		}, nil
	case ConsignmentDelivery:
		return []LedgerLine{
			{AccountCode: AccountGrainConsigned, Direction: Debit, Amount: ev.Amount, Currency: ev.Currency, CostCenter: ev.CostCenter},
			{AccountCode: AccountGrainStock, Direction: Credit, Amount: ev.Amount, Currency: ev.Currency, CostCenter: ev.CostCenter},
		}, nil
	case DirectSale:
		return []LedgerLine{
			{AccountCode: AccountReceivables, Direction: Debit, Amount: ev.Amount, Currency: ev.Currency, ThirdPartyID: ev.BuyerID},
			{AccountCode: AccountGrainSales, Direction: Credit, Amount: ev.Amount, Currency: ev.Currency, CostCenter: ev.CostCenter},
		}, nil
	case Collection:
		return []LedgerLine{
			{AccountCode: ev.cashAccount(), Direction: Debit, Amount: ev.Amount, Currency: ev.Currency},
			{AccountCode: AccountReceivables, Direction: Credit, Amount: ev.Amount, Currency: ev.Currency, ThirdPartyID: ev.CustomerID},
		}, nil
	case SupplierPayment:
		return []LedgerLine{
			{AccountCode: AccountPayables, Direction: Debit, Amount: ev.Amount, Currency: ev.Currency, ThirdPartyID: ev.SupplierID},
			{AccountCode: ev.cashAccount(), Direction: Credit, Amount: ev.Amount, Currency: ev.Currency},
		}, nil
	default:
		return nil, fmt.Errorf("unsupported event type %T", ev)
	}
}
