package password

import (
	"github.com/alexedwards/argon2id"
)

var policy = LoadParamsFromEnv()

// Gate checks login attempts against one shared passphrase. Every account uses
// the same secret; there is no per-user credential. The plaintext is hashed
// once at startup so each check is a constant-time argon2id compare instead of
// a string equality on a secret kept in memory.
type Gate struct {
	phc string
}

// NewGate hashes the shared passphrase. Returns a PHC string like
// `$argon2id$v=19$m=65536,t=2,p=1$...` under the hood.
func NewGate(sharedSecret string) (*Gate, error) {
	p := argon2id.Params{
		Memory:      policy.Memory,
		Iterations:  policy.Iterations,
		Parallelism: policy.Parallelism,
		SaltLength:  policy.SaltLength,
		KeyLength:   policy.KeyLength,
	}
	phc, err := argon2id.CreateHash(sharedSecret, &p)
	if err != nil {
		return nil, err
	}
	return &Gate{phc: phc}, nil
}

// Verify reports whether the supplied password matches the shared passphrase.
func (g *Gate) Verify(plain string) (bool, error) {
	return argon2id.ComparePasswordAndHash(plain, g.phc)
}
