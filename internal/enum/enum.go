package enum

// ── Group A: State machines (engine enforced) ──

const (
	OrderStatusPendingPayment = "PENDING_PAYMENT"
	OrderStatusHold           = "HOLD"
	OrderStatusPaid           = "PAID"
	OrderStatusSentToKitchen  = "SENT_TO_KITCHEN"
	OrderStatusPreparing      = "PREPARING"
	OrderStatusReadyForPickup = "READY_FOR_PICKUP"
	OrderStatusCompleted      = "COMPLETED"
	OrderStatusCancelled      = "CANCELLED"
)

const (
	ReplacementStatusNone     = "NONE"
	ReplacementStatusPending  = "PENDING"
	ReplacementStatusApproved = "APPROVED"
)

const (
	RequestStatusPending  = "PENDING"
	RequestStatusApproved = "APPROVED"
	RequestStatusRejected = "REJECTED"
)

const (
	TicketStatusSentToKitchen  = "SENT_TO_KITCHEN"
	TicketStatusPreparing      = "PREPARING"
	TicketStatusReadyForPickup = "READY_FOR_PICKUP"
)

// ── Group C: External contracts (audit shape; never renamed) ──

const (
	AuditActionCancel  = "CANCEL"
	AuditActionVoid    = "VOID"
	AuditActionRefund  = "REFUND"
	AuditActionPayment = "PAYMENT"
	AuditActionStatus  = "STATUS"
)

const (
	CashAuditRequested = "REQUESTED"
	CashAuditApproved  = "APPROVED"
	CashAuditRejected  = "REJECTED"
)

const (
	UserRoleAdmin   = "ADMIN"
	UserRoleCashier = "CASHIER"
	UserRoleKitchen = "KITCHEN"
)

// ── Group B: Configurable labels ──

const (
	OrderSourceKiosk = "KIOSK"
	OrderSourceStaff = "STAFF"
)

const (
	OrderTypeDineIn  = "DINE_IN"
	OrderTypeTakeout = "TAKEOUT"
)

const (
	StockEntryIn  = "IN"
	StockEntryOut = "OUT"
)

const (
	CashTypeShortage = "SHORTAGE"
	CashTypeOverage  = "OVERAGE"
)

const (
	PaymentMethodCash     = "CASH"
	PaymentMethodCard     = "CARD"
	PaymentMethodQR       = "QR"
	PaymentMethodTransfer = "TRANSFER"
)

const (
	UnitGram       = "g"
	UnitKilogram   = "kg"
	UnitMilliliter = "ml"
	UnitLiter      = "l"
	UnitPiece      = "pcs"
)
