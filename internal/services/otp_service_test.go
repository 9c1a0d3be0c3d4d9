package services

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOTPIssueAndVerify(t *testing.T) {
	s := NewOTPService(time.Minute)

	code, err := s.Issue("a@x.com")
	require.NoError(t, err)
	require.Len(t, code, 6)

	assert.True(t, s.Verify("a@x.com", code))
}

func TestOTPSingleUse(t *testing.T) {
	s := NewOTPService(time.Minute)

	code, err := s.Issue("a@x.com")
	require.NoError(t, err)

	assert.True(t, s.Verify("a@x.com", code))
	assert.False(t, s.Verify("a@x.com", code), "a consumed code must not verify twice")
}

func TestOTPWrongCodeAndUnknownEmail(t *testing.T) {
	s := NewOTPService(time.Minute)

	code, err := s.Issue("a@x.com")
	require.NoError(t, err)

	assert.False(t, s.Verify("a@x.com", "000000"))
	assert.False(t, s.Verify("nobody@x.com", code))

	// A wrong attempt must not consume the pending code.
	assert.True(t, s.Verify("a@x.com", code))
}

func TestOTPExpiry(t *testing.T) {
	s := NewOTPService(50 * time.Millisecond)

	code, err := s.Issue("a@x.com")
	require.NoError(t, err)

	time.Sleep(120 * time.Millisecond)
	assert.False(t, s.Verify("a@x.com", code))
}

func TestOTPReissueOverwrites(t *testing.T) {
	s := NewOTPService(time.Minute)

	first, err := s.Issue("a@x.com")
	require.NoError(t, err)
	second, err := s.Issue("a@x.com")
	require.NoError(t, err)

	if first != second {
		assert.False(t, s.Verify("a@x.com", first), "reissue must invalidate the prior code")
	}
	assert.True(t, s.Verify("a@x.com", second))
}

func TestOTPCodeRange(t *testing.T) {
	s := NewOTPService(time.Minute)

	for i := 0; i < 100; i++ {
		code, err := s.Issue("range@x.com")
		require.NoError(t, err)
		require.Len(t, code, 6)
		require.GreaterOrEqual(t, code, "100000")
		require.LessOrEqual(t, code, "999999")
	}
}

func TestOTPConcurrentEmails(t *testing.T) {
	s := NewOTPService(time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			email := fmt.Sprintf("user%d@x.com", i)
			code, err := s.Issue(email)
			assert.NoError(t, err)
			assert.True(t, s.Verify(email, code))
		}(i)
	}
	wg.Wait()
}

func TestOTPConcurrentVerifyConsumesOnce(t *testing.T) {
	s := NewOTPService(time.Minute)

	code, err := s.Issue("race@x.com")
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.Verify("race@x.com", code) {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes, "exactly one concurrent verification may win")
}
