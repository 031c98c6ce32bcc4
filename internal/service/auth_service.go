package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"fitcoach/coach-app/internal/cache"
	"fitcoach/coach-app/internal/domain"
	"fitcoach/coach-app/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrUserAlreadyExists = errors.New("user with this email already exists")
	ErrUserNotFound      = errors.New("user not found")
	ErrInvalidCode       = errors.New("invalid or expired verification code")
	ErrGoogleTokenFailed = errors.New("google token verification failed")
	ErrTokenGeneration   = errors.New("failed to generate authentication token")
)

// CodeSender delivers a verification code to an email address.
type CodeSender interface {
	SendCode(ctx context.Context, email, code string) error
}

// GoogleClaims is the subset of a verified Google ID token the service uses.
type GoogleClaims struct {
	Subject       string
	Email         string
	Name          string
	EmailVerified bool
}

// GoogleVerifier validates a Google ID token server-side.
type GoogleVerifier interface {
	Verify(ctx context.Context, idToken string) (*GoogleClaims, error)
}

// AuthResult is what a successful login or signup completion yields.
type AuthResult struct {
	Token string
	User  *domain.User
}

// AuthService handles the passwordless signup/login flows. Both flows are
// two-step: initiate emails a short code, complete redeems it for a JWT.
type AuthService interface {
	SignupInitiate(ctx context.Context, email, remarks string) error
	SignupComplete(ctx context.Context, email, code string) (*AuthResult, error)
	LoginInitiate(ctx context.Context, email string) error
	LoginComplete(ctx context.Context, email, code string) (*AuthResult, error)
	GoogleSignIn(ctx context.Context, idToken string) (*AuthResult, error)

	GetUser(ctx context.Context, userID primitive.ObjectID) (*domain.User, error)
	GetUserByProfileKey(ctx context.Context, profileKey string) (*domain.User, error)
	UpdateRemarks(ctx context.Context, userID primitive.ObjectID, remarks string) (*domain.User, error)
	SearchUsers(ctx context.Context, term string, page, limit int) ([]domain.User, int64, error)
	DeleteUserByEmail(ctx context.Context, email string) error
}

// authService implements the AuthService interface.
type authService struct {
	userRepo      repository.UserRepository
	codes         *cache.CodeStore
	sender        CodeSender
	google        GoogleVerifier
	jwtSecret     string
	jwtExpiration time.Duration
}

// NewAuthService creates a new instance of authService.
func NewAuthService(
	userRepo repository.UserRepository,
	codes *cache.CodeStore,
	sender CodeSender,
	google GoogleVerifier,
	jwtSecret string,
	jwtExpiration time.Duration,
) AuthService {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty")
	}
	if jwtExpiration <= 0 {
		jwtExpiration = 7 * 24 * time.Hour
	}
	return &authService{
		userRepo:      userRepo,
		codes:         codes,
		sender:        sender,
		google:        google,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

// SignupInitiate parks the signup and emails a verification code. The email
// must not belong to an existing account.
func (s *authService) SignupInitiate(ctx context.Context, email, remarks string) error {
	email = normalizeEmail(email)
	if email == "" {
		return errors.New("email cannot be empty")
	}

	_, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return ErrUserAlreadyExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	pending := cache.PendingSignup{
		Email:      email,
		ProfileKey: uuid.NewString(),
		Remarks:    remarks,
	}
	if err := s.codes.SavePendingSignup(ctx, pending); err != nil {
		return err
	}

	return s.issueCode(ctx, email)
}

// SignupComplete redeems the code, creates the account and signs the user in.
func (s *authService) SignupComplete(ctx context.Context, email, code string) (*AuthResult, error) {
	email = normalizeEmail(email)

	if err := s.codes.VerifyCode(ctx, email, code); err != nil {
		if errors.Is(err, cache.ErrCodeNotFound) || errors.Is(err, cache.ErrCodeMismatch) {
			return nil, ErrInvalidCode
		}
		return nil, err
	}

	pending, err := s.codes.TakePendingSignup(ctx, email)
	if err != nil {
		if errors.Is(err, cache.ErrCodeNotFound) {
			return nil, ErrInvalidCode
		}
		return nil, err
	}

	user := &domain.User{
		Email:              pending.Email,
		ProfileKey:         pending.ProfileKey,
		Remarks:            pending.Remarks,
		IsVerified:         true,
		SubscriptionStatus: domain.SubscriptionFree,
		AuthProvider:       domain.ProviderEmail,
	}
	userID, err := s.userRepo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}
	user.ID = userID

	return s.signIn(user)
}

// LoginInitiate emails a verification code to an existing account.
func (s *authService) LoginInitiate(ctx context.Context, email string) error {
	email = normalizeEmail(email)

	_, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	return s.issueCode(ctx, email)
}

// LoginComplete redeems the code and signs the user in.
func (s *authService) LoginComplete(ctx context.Context, email, code string) (*AuthResult, error) {
	email = normalizeEmail(email)

	if err := s.codes.VerifyCode(ctx, email, code); err != nil {
		if errors.Is(err, cache.ErrCodeNotFound) || errors.Is(err, cache.ErrCodeMismatch) {
			return nil, ErrInvalidCode
		}
		return nil, err
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if !user.IsVerified {
		user.IsVerified = true
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, err
		}
	}

	return s.signIn(user)
}

// GoogleSignIn verifies the ID token server-side, then signs in the matching
// account or creates one on first contact.
func (s *authService) GoogleSignIn(ctx context.Context, idToken string) (*AuthResult, error) {
	claims, err := s.google.Verify(ctx, idToken)
	if err != nil {
		log.WithError(err).Warn("google id token rejected")
		return nil, ErrGoogleTokenFailed
	}

	user, err := s.userRepo.GetByGoogleID(ctx, claims.Subject)
	if errors.Is(err, repository.ErrNotFound) {
		// Link by email when the account predates Google sign-in.
		user, err = s.userRepo.GetByEmail(ctx, normalizeEmail(claims.Email))
		if errors.Is(err, repository.ErrNotFound) {
			return s.createGoogleUser(ctx, claims)
		}
		if err != nil {
			return nil, err
		}
		user.GoogleID = claims.Subject
		user.GoogleProfile = &domain.GoogleProfile{
			Name:          claims.Name,
			EmailVerified: claims.EmailVerified,
		}
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	return s.signIn(user)
}

func (s *authService) createGoogleUser(ctx context.Context, claims *GoogleClaims) (*AuthResult, error) {
	user := &domain.User{
		Email:              normalizeEmail(claims.Email),
		ProfileKey:         uuid.NewString(),
		IsVerified:         claims.EmailVerified,
		SubscriptionStatus: domain.SubscriptionFree,
		GoogleID:           claims.Subject,
		GoogleProfile: &domain.GoogleProfile{
			Name:          claims.Name,
			EmailVerified: claims.EmailVerified,
		},
		AuthProvider: domain.ProviderGoogle,
	}

	userID, err := s.userRepo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}
	user.ID = userID
	return s.signIn(user)
}

// GetUser retrieves a user by ID.
func (s *authService) GetUser(ctx context.Context, userID primitive.ObjectID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// GetUserByProfileKey retrieves a user by their intake profile key.
func (s *authService) GetUserByProfileKey(ctx context.Context, profileKey string) (*domain.User, error) {
	user, err := s.userRepo.GetByProfileKey(ctx, profileKey)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateRemarks updates the free-form remarks on a user account.
func (s *authService) UpdateRemarks(ctx context.Context, userID primitive.ObjectID, remarks string) (*domain.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Remarks = remarks
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// SearchUsers finds users by email or profile key substring.
func (s *authService) SearchUsers(ctx context.Context, term string, page, limit int) ([]domain.User, int64, error) {
	return s.userRepo.Search(ctx, term, page, limit)
}

// DeleteUserByEmail removes an account.
func (s *authService) DeleteUserByEmail(ctx context.Context, email string) error {
	err := s.userRepo.DeleteByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}

// issueCode generates a 4-digit code, stores its hash and emails it.
func (s *authService) issueCode(ctx context.Context, email string) error {
	code, err := generateCode()
	if err != nil {
		return err
	}
	if err := s.codes.SaveCode(ctx, email, code); err != nil {
		return err
	}
	return s.sender.SendCode(ctx, email, code)
}

// generateCode returns a random 4-digit code with leading zeros kept.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%04d", n.Int64()), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// --- JWT Helper ---

// jwtClaims defines the structure of the JWT payload.
type jwtClaims struct {
	UserID     string `json:"uid"`
	ProfileKey string `json:"profileKey,omitempty"`
	jwt.RegisteredClaims
}

func (s *authService) signIn(user *domain.User) (*AuthResult, error) {
	expirationTime := time.Now().Add(s.jwtExpiration)
	claims := &jwtClaims{
		UserID:     user.ID.Hex(),
		ProfileKey: user.ProfileKey,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "coach-app",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, ErrTokenGeneration
	}
	return &AuthResult{Token: signedToken, User: user}, nil
}
