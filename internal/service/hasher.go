package service

import (
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher abstrae el hash unidireccional de passwords y codigos.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) error
}

// BcryptHasher implementa PasswordHasher con bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher usa el costo indicado; valores fuera de rango caen a 10.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(plain string) (string, error) {
	hashBytes, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashBytes), nil
}

func (h *BcryptHasher) Compare(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
