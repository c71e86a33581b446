package domain

// NotificationType identifies which overdue rule produced a push.
type NotificationType string

const (
	NotificationPODPending     NotificationType = "POD_PENDING"
	NotificationAdvancePending NotificationType = "ADVANCE_PENDING"
)
