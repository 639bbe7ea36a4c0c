package domain

import "errors"

var (
	// ErrDuplicateEmail is returned by UserStore.Create when the email is taken.
	ErrDuplicateEmail = errors.New("email already exists")
	// ErrNotFound is returned by store lookups that match no record.
	ErrNotFound = errors.New("user not found")
	// ErrIdentityIncomplete is returned when an OAuth assertion lacks an email.
	ErrIdentityIncomplete = errors.New("identity assertion missing email")
	// ErrWrongProvider is returned when a local-password login hits an OAuth account.
	ErrWrongProvider = errors.New("account uses an external login provider")
	// ErrInvalidCredentials covers unknown email and wrong password alike.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrSelfDelete is returned when an admin tries to delete its own account.
	ErrSelfDelete = errors.New("cannot delete your own account")
	// ErrAdminProtected is returned when a delete targets another admin.
	ErrAdminProtected = errors.New("cannot delete admin accounts")
	// ErrAlreadyAdmin is returned when a promote targets an admin.
	ErrAlreadyAdmin = errors.New("user already has the admin role")
)
