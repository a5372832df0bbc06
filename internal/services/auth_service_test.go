package services_test

import (
	"regexp"
	"sync"
	"testing"
	"time"

	"terang/internal/apperr"
	"terang/internal/models"
	"terang/internal/repositories"
	"terang/internal/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryUserRepository is an in-memory UserRepository for auth tests.
type memoryUserRepository struct {
	mu    sync.Mutex
	users map[string]models.User // keyed by ID
}

func newMemoryUserRepository() *memoryUserRepository {
	return &memoryUserRepository{users: make(map[string]models.User)}
}

func (r *memoryUserRepository) Create(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	for _, u := range r.users {
		if u.Email == user.Email {
			return repositories.ErrDuplicateKey
		}
	}
	r.users[user.ID] = *user
	return nil
}

func (r *memoryUserRepository) GetByEmail(email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *memoryUserRepository) GetByID(id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &user, nil
}

func (r *memoryUserRepository) Update(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return repositories.ErrNotFound
	}
	r.users[user.ID] = *user
	return nil
}

// capturingEmailSender records sent mails so tests can read the code
// out of the message body.
type capturingEmailSender struct {
	mu    sync.Mutex
	mails []struct{ To, Subject, Body string }
}

func (s *capturingEmailSender) Send(to, subject, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mails = append(s.mails, struct{ To, Subject, Body string }{to, subject, body})
	return nil
}

var otpPattern = regexp.MustCompile(`\b(\d{6})\b`)

func (s *capturingEmailSender) lastCode(t *testing.T) string {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.mails)
	match := otpPattern.FindStringSubmatch(s.mails[len(s.mails)-1].Body)
	require.NotNil(t, match, "mail body should contain a 6-digit code")
	return match[1]
}

func authFixture() (*services.AuthService, *memoryUserRepository, *capturingEmailSender) {
	userRepo := newMemoryUserRepository()
	sender := &capturingEmailSender{}
	svc := services.NewAuthService(userRepo, sender, "test-secret", 5*time.Minute)
	return svc, userRepo, sender
}

func TestAuthService_OTPRoundTrip(t *testing.T) {
	svc, userRepo, sender := authFixture()

	require.NoError(t, svc.RequestOTP("Shopper@Example.com ", "0812"))
	code := sender.lastCode(t)

	// Email is normalized before storage and lookup.
	token, user, err := svc.VerifyOTP("shopper@example.com", code)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "shopper@example.com", user.Email)
	assert.True(t, user.IsVerified)
	assert.Empty(t, user.OTPHash)
	assert.Nil(t, user.OTPExpires)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims["user_id"])
	assert.Equal(t, "shopper@example.com", claims["email"])

	// The code is single-use.
	_, _, err = svc.VerifyOTP("shopper@example.com", code)
	require.Error(t, err)
	assert.Equal(t, apperr.BadRequest, apperr.KindOf(err))

	stored, err := userRepo.GetByEmail("shopper@example.com")
	require.NoError(t, err)
	assert.True(t, stored.IsVerified)
}

func TestAuthService_RequestOTPUpdatesExistingUser(t *testing.T) {
	svc, userRepo, sender := authFixture()

	require.NoError(t, svc.RequestOTP("shopper@example.com", ""))
	first, err := userRepo.GetByEmail("shopper@example.com")
	require.NoError(t, err)

	require.NoError(t, svc.RequestOTP("shopper@example.com", "0812"))
	second, err := userRepo.GetByEmail("shopper@example.com")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "re-requesting must not create a second account")
	assert.Equal(t, "0812", second.Mobile)
	assert.Len(t, sender.mails, 2)

	// The earlier code is superseded by the new one.
	_, _, err = svc.VerifyOTP("shopper@example.com", sender.lastCode(t))
	require.NoError(t, err)
}

func TestAuthService_VerifyOTPRejections(t *testing.T) {
	svc, userRepo, sender := authFixture()

	_, _, err := svc.VerifyOTP("", "123456")
	assert.Equal(t, apperr.BadRequest, apperr.KindOf(err))

	// Unknown email and wrong code yield the same uniform error.
	_, _, err = svc.VerifyOTP("nobody@example.com", "123456")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid or expired OTP")

	require.NoError(t, svc.RequestOTP("shopper@example.com", ""))
	code := sender.lastCode(t)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	_, _, err = svc.VerifyOTP("shopper@example.com", wrong)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid or expired OTP")

	// Expired code.
	user, err := userRepo.GetByEmail("shopper@example.com")
	require.NoError(t, err)
	expired := time.Now().Add(-time.Minute)
	user.OTPExpires = &expired
	require.NoError(t, userRepo.Update(user))

	_, _, err = svc.VerifyOTP("shopper@example.com", code)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid or expired OTP")
}

func TestAuthService_ValidateTokenRejectsForgery(t *testing.T) {
	svc, _, sender := authFixture()
	require.NoError(t, svc.RequestOTP("shopper@example.com", ""))
	token, _, err := svc.VerifyOTP("shopper@example.com", sender.lastCode(t))
	require.NoError(t, err)

	other := services.NewAuthService(newMemoryUserRepository(), sender, "another-secret", 5*time.Minute)
	_, err = other.ValidateToken(token)
	assert.Error(t, err)

	_, err = svc.ValidateToken("not-a-token")
	assert.Error(t, err)
}
