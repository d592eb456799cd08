// Copyright (c) 2026 The Barryland Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Admin actions recorded in the admin log.
const (
	AdminActionApproveProperty    = "approve_property"
	AdminActionRejectProperty     = "reject_property"
	AdminActionDeactivateProperty = "deactivate_property"
	AdminActionUpdateProperty     = "update_property"
	AdminActionRenewProperty      = "renew_property"
	AdminActionDeleteProperty     = "delete_property"
	AdminActionUpdateUserRole     = "update_user_role"
	AdminActionSetUserActive      = "set_user_active"
	AdminActionDeleteUser         = "delete_user"
	AdminActionUpdateSetting      = "update_setting"
	AdminActionUpdateContact      = "update_contact_message"
	AdminActionReconcileFavorites = "reconcile_favorites"
)

// ModerationAction maps a moderation status to its admin action.
func ModerationAction(status string) string {
	switch status {
	case PropertyStatusActive:
		return AdminActionApproveProperty
	case PropertyStatusRejected:
		return AdminActionRejectProperty
	default:
		return AdminActionDeactivateProperty
	}
}

// User activity actions.
const (
	ActivityRegister       = "register"
	ActivityLogin          = "login"
	ActivityPasswordReset  = "password_reset"
	ActivityProfileUpdate  = "profile_update"
	ActivityPropertyCreate = "property_create"
	ActivityPropertyUpdate = "property_update"
	ActivityPropertyDelete = "property_delete"
	ActivityPropertyRenew  = "property_renew"
	ActivityFavoriteAdd    = "favorite_add"
	ActivityFavoriteRemove = "favorite_remove"
	ActivityContactMessage = "contact_message"
)

// Audit target types.
const (
	TargetProperty       = "property"
	TargetUser           = "user"
	TargetSetting        = "setting"
	TargetContactMessage = "contact_message"
)
