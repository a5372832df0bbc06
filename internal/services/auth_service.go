package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"

	"terang/internal/apperr"
	"terang/internal/models"
	"terang/internal/repositories"
)

// AuthService implements passwordless email login: a one-time code is
// mailed to the shopper and exchanged for a JWT. Only a bcrypt hash of
// the code is stored, alongside its expiry.
type AuthService struct {
	userRepo    repositories.UserRepository
	emailSender EmailSender
	jwtSecret   []byte
	tokenDurat  time.Duration // Duration for which JWT is valid
	otpTTL      time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, emailSender EmailSender, jwtSecret string, otpTTL time.Duration) *AuthService {
	if otpTTL <= 0 {
		otpTTL = 5 * time.Minute
	}
	return &AuthService{
		userRepo:    userRepo,
		emailSender: emailSender,
		jwtSecret:   []byte(jwtSecret),
		tokenDurat:  7 * 24 * time.Hour,
		otpTTL:      otpTTL,
	}
}

// RequestOTP generates a 6-digit code for the email address, upserting
// the user record, and mails the code.
func (s *AuthService) RequestOTP(email, mobile string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return apperr.New(apperr.BadRequest, "Email is required")
	}
	mobile = strings.TrimSpace(mobile)

	code, err := generateOTP()
	if err != nil {
		return apperr.Wrap(err, "Failed to generate OTP")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return apperr.Wrap(err, "Failed to generate OTP")
	}
	expires := time.Now().Add(s.otpTTL)

	user, err := s.userRepo.GetByEmail(email)
	switch {
	case err == nil:
		user.Mobile = mobile
		user.OTPHash = string(hash)
		user.OTPExpires = &expires
		if err := s.userRepo.Update(user); err != nil {
			return apperr.Wrap(err, "Failed to store OTP")
		}
	case errors.Is(err, repositories.ErrNotFound):
		user = &models.User{
			Email:      email,
			Mobile:     mobile,
			OTPHash:    string(hash),
			OTPExpires: &expires,
		}
		if err := s.userRepo.Create(user); err != nil {
			return apperr.Wrap(err, "Failed to store OTP")
		}
	default:
		return apperr.Wrap(err, "Failed to store OTP")
	}

	body := fmt.Sprintf("Your one-time password is %s. It expires in %d minutes.", code, int(s.otpTTL.Minutes()))
	if err := s.emailSender.Send(email, "Your Terang OTP Code", body); err != nil {
		return apperr.Wrap(err, "Failed to send OTP email")
	}
	return nil
}

// VerifyOTP checks a submitted code and, when valid and unexpired,
// marks the user verified, clears the code and returns a signed JWT.
// Missing user, wrong code and expired code all produce the same error.
func (s *AuthService) VerifyOTP(email, otp string) (string, *models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	otp = strings.TrimSpace(otp)
	if email == "" || otp == "" {
		return "", nil, apperr.New(apperr.BadRequest, "Email and OTP are required")
	}

	invalid := apperr.New(apperr.BadRequest, "Invalid or expired OTP")

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", nil, invalid
		}
		return "", nil, apperr.Wrap(err, "Failed to verify OTP")
	}
	if user.OTPHash == "" || user.OTPExpires == nil || user.OTPExpires.Before(time.Now()) {
		return "", nil, invalid
	}
	if bcrypt.CompareHashAndPassword([]byte(user.OTPHash), []byte(otp)) != nil {
		return "", nil, invalid
	}

	user.IsVerified = true
	user.OTPHash = ""
	user.OTPExpires = nil
	if err := s.userRepo.Update(user); err != nil {
		return "", nil, apperr.Wrap(err, "Failed to verify OTP")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"exp":     time.Now().Add(s.tokenDurat).Unix(),
		"iat":     time.Now().Unix(),
	})
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", nil, apperr.Wrap(err, "Failed to generate token")
	}
	return tokenString, user, nil
}

// ValidateToken parses and validates a JWT, returning its claims.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		log.Printf("Token validation error: %v", err)
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}

// generateOTP returns a random 6-digit numeric code.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100_000), nil
}
