package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// OTPService issues and verifies short-lived numeric codes keyed by email.
// The cache is process-local and owned exclusively by this service; nothing
// else reaches into it.
type OTPService struct {
	codes *gocache.Cache
	ttl   time.Duration

	// Guards the check-and-delete in Verify so a code can never be
	// consumed twice.
	mu sync.Mutex
}

func NewOTPService(ttl time.Duration) *OTPService {
	return &OTPService{
		codes: gocache.New(ttl, time.Minute),
		ttl:   ttl,
	}
}

// Issue generates a fresh 6-digit code and stores it under the email,
// overwriting any prior pending code for that address.
func (s *OTPService) Issue(email string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	code := fmt.Sprintf("%06d", n.Int64()+100000)

	s.codes.Set(email, code, s.ttl)
	return code, nil
}

// Verify consumes the stored code on first match. It reports plain false for
// unknown emails, expired codes and mismatches alike; callers get no signal
// about which it was.
func (s *OTPService) Verify(email, submitted string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.codes.Get(email)
	if !ok {
		return false
	}
	code, _ := v.(string)
	if code != submitted {
		return false
	}
	s.codes.Delete(email)
	return true
}

// Resend reissues without requiring the prior code to be verified or expired.
func (s *OTPService) Resend(email string) (string, error) {
	return s.Issue(email)
}
