package rbac

// CheckUserDeletion validates an account deletion requested by actor.
// Deleting one's own account is always rejected. Deleting an administrator is
// rejected when adminCount says it is the last one.
func CheckUserDeletion(actor *Identity, targetID uint64, targetRole Role, adminCount int64) error {
	if err := CheckNotSelf(actor, targetID); err != nil {
		return err
	}

	if targetRole == RoleAdmin && adminCount <= 1 {
		return ErrLastAdmin
	}

	return nil
}

// CheckNotSelf rejects targetID when it is the actor's own account. It needs no
// store access so it runs before the target is loaded.
func CheckNotSelf(actor *Identity, targetID uint64) error {
	if actor != nil && actor.UserID == targetID {
		return ErrSelfDeletion
	}

	return nil
}

// CheckRoleChange validates a role change of an account currently holding
// currentRole. Self-demotion is allowed as long as another administrator remains.
func CheckRoleChange(currentRole, newRole Role, adminCount int64) error {
	if !newRole.Valid() {
		return NewValidationError("role", "invalid role")
	}

	if currentRole == RoleAdmin && newRole != RoleAdmin && adminCount <= 1 {
		return ErrLastAdmin
	}

	return nil
}
