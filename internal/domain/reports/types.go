// Package reports provides the read-only report queries.
package reports

import (
	"time"

	"szafa/internal/core/id"
	"szafa/internal/core/types"
)

// --- Issues and demand ---

// SortBy orders issue-based reports.
type SortBy string

const (
	// SortEmployeeDate groups by employee, then by date
	SortEmployeeDate SortBy = "employee_date"
	// SortDateEmployee orders by date, then employee
	SortDateEmployee SortBy = "date_employee"
)

// IssueFilter selects issued items. DateFrom/DateTo apply to the issue date in the issues
// report and to next_issue_date in the demand report.
type IssueFilter struct {
	CompanyID    *id.ID
	DepartmentID *id.ID
	DateFrom     *time.Time
	DateTo       *time.Time
	SortBy       SortBy
}

// IssueLine is one issued item with its document and employee.
type IssueLine struct {
	ItemID         id.ID        `db:"item_id" json:"itemId"`
	DocumentID     id.ID        `db:"document_id" json:"documentId"`
	DocumentNumber string       `db:"document_number" json:"documentNumber"`
	IssueDate      time.Time    `db:"issue_date" json:"issueDate"`
	EmployeeID     id.ID        `db:"employee_id" json:"employeeId"`
	EmployeeName   string       `db:"employee_name" json:"employeeName"`
	CardNumber     string       `db:"card_number" json:"cardNumber"`
	CompanyID      id.ID        `db:"company_id" json:"companyId"`
	DepartmentID   id.ID        `db:"department_id" json:"departmentId"`
	ProductID      id.ID        `db:"product_id" json:"productId"`
	ProductCode    string       `db:"product_code" json:"productCode"`
	ProductName    string       `db:"product_name" json:"productName"`
	Size           string       `db:"size" json:"size"`
	Quantity       int          `db:"quantity" json:"quantity"`
	UnitPrice      *types.Money `db:"unit_price" json:"unitPrice,omitempty"`
	TotalValue     *types.Money `db:"total_value" json:"totalValue,omitempty"`
	Status         string       `db:"status" json:"status"`
	NextIssueDate  *time.Time   `db:"next_issue_date" json:"nextIssueDate,omitempty"`
}

// --- Receipts ---

// ReceiptFilter selects received items by document date, supplier and recipient.
type ReceiptFilter struct {
	SupplierID  *id.ID
	RecipientID *id.ID
	DateFrom    *time.Time
	DateTo      *time.Time
}

// ReceiptLine is one received item with its document.
type ReceiptLine struct {
	ItemID         id.ID       `db:"item_id" json:"itemId"`
	DocumentID     id.ID       `db:"document_id" json:"documentId"`
	DocumentNumber string      `db:"document_number" json:"documentNumber"`
	IssueDate      time.Time   `db:"issue_date" json:"issueDate"`
	SupplierID     id.ID       `db:"supplier_id" json:"supplierId"`
	SupplierName   string      `db:"supplier_name" json:"supplierName"`
	RecipientID    id.ID       `db:"recipient_id" json:"recipientId"`
	RecipientName  string      `db:"recipient_name" json:"recipientName"`
	ProductID      id.ID       `db:"product_id" json:"productId"`
	ProductCode    string      `db:"product_code" json:"productCode"`
	ProductName    string      `db:"product_name" json:"productName"`
	Size           string      `db:"size" json:"size"`
	Quantity       int         `db:"quantity" json:"quantity"`
	UnitPrice      types.Money `db:"unit_price" json:"unitPrice"`
	TotalValue     types.Money `db:"total_value" json:"totalValue"`
}

// --- Order demand ---

// OrderDemandFilter configures the order demand report.
type OrderDemandFilter struct {
	// MonthsAhead sets the forecast window to today .. today + 30 x MonthsAhead days
	MonthsAhead int
	// ShowZero keeps rows whose need is zero
	ShowZero bool
}

// ForecastRow sums the quantity of active items due in the window per (product, size).
type ForecastRow struct {
	ProductID     id.ID  `db:"product_id"`
	ProductCode   string `db:"product_code"`
	ProductName   string `db:"product_name"`
	MinQtyOnStock int    `db:"min_qty_on_stock"`
	Size          string `db:"size"`
	Quantity      int    `db:"quantity"`
}

// OrderDemandRow is one line of the order demand report.
type OrderDemandRow struct {
	ProductID    id.ID  `json:"productId"`
	ProductCode  string `json:"productCode"`
	ProductName  string `json:"productName"`
	Size         string `json:"size"`
	CurrentStock int    `json:"currentStock"`
	MinStock     int    `json:"minStock"`
	Forecast     int    `json:"forecast"`
	Need         int    `json:"need"`
}

// OrderDemandReport is the order demand result.
type OrderDemandReport struct {
	From      time.Time        `json:"from"`
	To        time.Time        `json:"to"`
	Rows      []OrderDemandRow `json:"rows"`
	TotalNeed int              `json:"totalNeed"`
}
