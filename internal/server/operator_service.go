package server

import (
	"fmt"

	"github.com/jonathan/orphaned-data/internal/config"
)

// dummyPassword is hashed at startup so unknown logins cost one bcrypt comparison
// like known ones.
const dummyPassword = "orphaned-data-timing-equaliser"

// OperatorService authenticates operators declared in the configuration.
type OperatorService struct {
	operators      map[string]config.Operator
	passwordConfig *config.PasswordConfig
	dummyHash      string
}

// NewOperatorService creates an OperatorService over ops.
func NewOperatorService(ops []config.Operator, passwordConfig *config.PasswordConfig) (*OperatorService, error) {
	dummyHash, err := passwordConfig.HashPassword(dummyPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare password verifier: %w", err)
	}
	byLogin := make(map[string]config.Operator, len(ops))
	for _, op := range ops {
		byLogin[op.Login] = op
	}
	return &OperatorService{
		operators:      byLogin,
		passwordConfig: passwordConfig,
		dummyHash:      dummyHash,
	}, nil
}

// Authenticate returns the operator for login when password matches.
func (s *OperatorService) Authenticate(login, password string) (config.Operator, error) {
	op, ok := s.operators[login]
	if !ok {
		s.passwordConfig.VerifyPassword(password, s.dummyHash)
		return config.Operator{}, &ErrInvalidCredentials{}
	}
	if !s.passwordConfig.VerifyPassword(password, op.PasswordHash) {
		return config.Operator{}, &ErrInvalidCredentials{}
	}
	return op, nil
}
