package model

// Role represents user roles in the system
type Role struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Code        string      `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // ADMIN, OFFICE, WORKER
	Name        string      `gorm:"type:varchar(100)" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	Privileges  []Privilege `gorm:"many2many:role_privileges;" json:"privileges,omitempty"`
}

// Role codes as constants
const (
	RoleAdmin  = "ADMIN"
	RoleOffice = "OFFICE"
	RoleWorker = "WORKER"
)

// StockWarningRecipients are the roles notified about over-bookings.
var StockWarningRecipients = []string{RoleAdmin, RoleOffice}

// DefaultRoles defines the default roles in the system
var DefaultRoles = []Role{
	{
		Code:        RoleAdmin,
		Name:        "Administrator",
		Description: "Full system access with all privileges",
	},
	{
		Code:        RoleOffice,
		Name:        "Kantoor",
		Description: "Office staff: master data, stock and ledger corrections",
	},
	{
		Code:        RoleWorker,
		Name:        "Monteur",
		Description: "Field worker: time registration and stock booking",
	},
}

// DefaultRolePrivileges lists the privileges seeded per role. ADMIN receives all.
var DefaultRolePrivileges = map[string][]string{
	RoleOffice: {
		PrivUserView,
		PrivProductCreate, PrivProductUpdate, PrivLocationManage, PrivProjectManage, PrivWorkCodeManage,
		PrivStockBook, PrivStockMove,
		PrivTransactionView, PrivTransactionUpdate, PrivTransactionDelete,
		PrivTimeRegister, PrivDashboardView,
	},
	RoleWorker: {
		PrivStockBook, PrivTimeRegister,
	},
}
