package enums

// NotificationKind labels the business event that produced a notification.
type NotificationKind string

const (
	NotificationEmployeeCreated NotificationKind = "employee_created"
	NotificationAssignedProject NotificationKind = "assigned_project"
	NotificationMoneyReceived   NotificationKind = "money_received"
	NotificationTaskAssigned    NotificationKind = "task_assigned"
	NotificationTaskDone        NotificationKind = "task_done"
	NotificationOrderDone       NotificationKind = "order_done"
	NotificationOrderDeadline   NotificationKind = "order_deadline"
	NotificationWalletAdd       NotificationKind = "wallet_add"
	NotificationAdminMessage    NotificationKind = "admin_message"
)

func (k NotificationKind) IsValid() bool {
	switch k {
	case NotificationEmployeeCreated, NotificationAssignedProject,
		NotificationMoneyReceived, NotificationTaskAssigned,
		NotificationTaskDone, NotificationOrderDone,
		NotificationOrderDeadline, NotificationWalletAdd,
		NotificationAdminMessage:
		return true
	}
	return false
}
