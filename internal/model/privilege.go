package model

// Privilege represents a permission that can be assigned to users
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g., "stock:book"
	Name string `gorm:"type:varchar(100)" json:"name"`
}

const (
	PrivUserView          = "user:view"
	PrivUserCreate        = "user:create"
	PrivUserUpdate        = "user:update"
	PrivUserPrivileges    = "user:update_privilege"
	PrivProductCreate     = "product:create"
	PrivProductUpdate     = "product:update"
	PrivLocationManage    = "location:manage"
	PrivProjectManage     = "project:manage"
	PrivStockBook         = "stock:book"
	PrivStockMove         = "stock:move"
	PrivTransactionView   = "transaction:view"
	PrivTransactionUpdate = "transaction:update"
	PrivTransactionDelete = "transaction:delete"
	PrivWorkCodeManage    = "workcode:manage"
	PrivTimeRegister      = "time:register"
	PrivDashboardView     = "dashboard:view"
)

// Default privileges for the system
var DefaultPrivileges = []Privilege{
	// User management
	{Code: PrivUserView, Name: "View User"},
	{Code: PrivUserCreate, Name: "Create User"},
	{Code: PrivUserUpdate, Name: "Update User"},
	{Code: PrivUserPrivileges, Name: "Update User Privileges"},
	// Master data
	{Code: PrivProductCreate, Name: "Create Product"},
	{Code: PrivProductUpdate, Name: "Update Product"},
	{Code: PrivLocationManage, Name: "Manage Locations"},
	{Code: PrivProjectManage, Name: "Manage Projects"},
	{Code: PrivWorkCodeManage, Name: "Manage Work Codes"},
	// Stock
	{Code: PrivStockBook, Name: "Book Stock"},
	{Code: PrivStockMove, Name: "Move Stock"},
	{Code: PrivTransactionView, Name: "View Transaction"},
	{Code: PrivTransactionUpdate, Name: "Update Transaction"},
	{Code: PrivTransactionDelete, Name: "Delete Transaction"},
	// Hours
	{Code: PrivTimeRegister, Name: "Register Time"},
	// Dashboard
	{Code: PrivDashboardView, Name: "View Dashboard"},
}
