package adapter

// PasswordService hashes and verifies account passwords.
type PasswordService interface {
	// HashPassword returns the bcrypt hash of password.
	HashPassword(password string) (string, error)

	// VerifyPassword returns nil when password matches hashedPassword.
	VerifyPassword(hashedPassword, password string) error

	// ValidatePasswordStrength rejects passwords below the minimum policy.
	ValidatePasswordStrength(password string) error
}
