package models

// Role identifies what a user is allowed to see and do
type Role string

const (
	RoleStudent  Role = "student"
	RoleAdmin    Role = "admin"
	RoleWriter   Role = "writer"
	RoleDelivery Role = "delivery"
)

// Valid reports whether the role is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleAdmin, RoleWriter, RoleDelivery:
		return true
	}
	return false
}

// Action is a gated operation checked through CanPerform
type Action string

const (
	ActionViewStats    Action = "view_stats"
	ActionManageUsers  Action = "manage_users"
	ActionManageOrders Action = "manage_orders"
	ActionAssignOrders Action = "assign_orders"
	ActionViewEarnings Action = "view_earnings"

	// lifecycle transitions, one action per target status
	ActionStartWriting  Action = "start_writing"
	ActionMarkReady     Action = "mark_ready"
	ActionStartDelivery Action = "start_delivery"
	ActionMarkDelivered Action = "mark_delivered"
)

// permissions is the single source of truth for role-gated actions.
// Admin endpoints check their own action here; the status transition
// endpoint resolves the target status to an action first.
var permissions = map[Action]map[Role]bool{
	ActionViewStats:    {RoleAdmin: true},
	ActionManageUsers:  {RoleAdmin: true},
	ActionManageOrders: {RoleAdmin: true},
	ActionAssignOrders: {RoleAdmin: true},
	ActionViewEarnings: {RoleWriter: true, RoleDelivery: true},

	ActionStartWriting:  {RoleWriter: true, RoleAdmin: true},
	ActionMarkReady:     {RoleWriter: true, RoleAdmin: true},
	ActionStartDelivery: {RoleDelivery: true, RoleAdmin: true},
	ActionMarkDelivered: {RoleDelivery: true, RoleAdmin: true},
}

// CanPerform reports whether the role may perform the action
func CanPerform(role Role, action Action) bool {
	return permissions[action][role]
}
