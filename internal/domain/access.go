package domain

// Action is an operation a caller attempts on an application or one of its parts.
type Action string

const (
	ActionRead            Action = "read"
	ActionUpdate          Action = "update"
	ActionDelete          Action = "delete"
	ActionSubmit          Action = "submit"
	ActionManageDocuments Action = "manage_documents"
	ActionReview          Action = "review"
	ActionViewPayments    Action = "view_payments"
)

// Can decides whether a caller with the given role may perform action on an
// application it does (or does not) own.
//
// Managers may read but not update or delete; this mirrors the portal rules
// and is asserted in access_test.go.
func Can(role UserRole, isOwner bool, action Action) bool {
	switch action {
	case ActionRead, ActionViewPayments:
		return isOwner || role.IsStaff()
	case ActionUpdate, ActionDelete, ActionManageDocuments:
		return isOwner || role == RoleAdmin
	case ActionSubmit:
		return isOwner
	case ActionReview:
		return role.IsStaff()
	}
	return false
}
