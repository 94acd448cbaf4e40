package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"daftar/internal/models"
	"daftar/internal/repositories"

	"github.com/dgrijalva/jwt-go"
)

// AuthService handles business logic for authentication. Login is by email
// only: an unknown email gets a user created on the spot, a known one is
// reused, and either way the caller gets a signed JWT carrying the user id.
type AuthService struct {
	userRepo   repositories.UserRepository
	jwtSecret  []byte
	tokenDurat time.Duration // Duration for which JWT is valid
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: 24 * time.Hour, // Token valid for 24 hours
	}
}

// LoginWithEmail resolves the user for the given email, creating one if it
// does not exist yet, and returns a signed JWT token.
func (s *AuthService) LoginWithEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", fmt.Errorf("email is required")
	}

	user, err := s.userRepo.GetByEmail(email)
	if errors.Is(err, repositories.ErrUserNotFound) {
		user = &models.User{Email: email}
		if createErr := s.userRepo.Create(user); createErr != nil {
			return "", fmt.Errorf("failed to create user for %s: %w", email, createErr)
		}
		log.Printf("Created new user for email %s", email)
	} else if err != nil {
		return "", fmt.Errorf("failed to look up user: %w", err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"exp":     time.Now().Add(s.tokenDurat).Unix(), // Token expiration time
		"iat":     time.Now().Unix(),                   // Issued at time
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate the alg is what we expect:
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
