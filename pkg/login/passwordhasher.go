package login

// PasswordHasher defines the interface for password hashing operations
type PasswordHasher interface {
	// Hash generates a hash from a plaintext password
	Hash(password string) (string, error)

	// Verify checks if a plaintext password matches a hash
	Verify(password, hashedPassword string) (bool, error)
}
