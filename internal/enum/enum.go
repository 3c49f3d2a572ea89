package enum

// ── Order lifecycle states (one table per state) ──

const (
	OrderStateActive   = "ACTIVE"
	OrderStateFinished = "FINISHED"
	OrderStateCanceled = "CANCELED"
)

// ── Catalog categories (one table per category) ──

const (
	CategoryPizza = "PIZZA"
	CategorySnack = "SNACK"
	CategoryDrink = "DRINK"
)

// ── Customer kinds ──

const (
	CustomerKindTemporary = "TEMPORARY"
	CustomerKindPermanent = "PERMANENT"
)

// ── User roles (CHECK constrained in DB) ──

const (
	UserRoleManager = "MANAGER"
	UserRoleWaiter  = "WAITER"
	UserRoleChef    = "CHEF"
)

// ── Report periods ──

const (
	ReportPeriodDaily   = "DAILY"
	ReportPeriodWeekly  = "WEEKLY"
	ReportPeriodMonthly = "MONTHLY"
)
