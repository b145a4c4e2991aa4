package auth

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/cases"

	"github.com/jhoicas/storefront-api/internal/application/dto"
	"github.com/jhoicas/storefront-api/internal/domain"
	"github.com/jhoicas/storefront-api/internal/domain/entity"
	"github.com/jhoicas/storefront-api/internal/domain/repository"
	"github.com/jhoicas/storefront-api/pkg/jwt"
)

const (
	minPasswordLen = 8
	maxPasswordLen = 72 // límite de bcrypt
	minUsernameLen = 3
	maxUsernameLen = 50
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase registro, login y perfil.
type AuthUseCase struct {
	userRepo   repository.UserRepository
	jwtCfg     JWTConfig
	bcryptCost int
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, jwtCfg: jwtCfg, bcryptCost: bcrypt.DefaultCost}
}

// WithBcryptCost ajusta el costo de bcrypt (tests usan bcrypt.MinCost).
func (uc *AuthUseCase) WithBcryptCost(cost int) *AuthUseCase {
	uc.bcryptCost = cost
	return uc
}

// NormalizeUsername aplica trim + case folding para que "Ana" y "ana" sean el mismo usuario.
func NormalizeUsername(username string) string {
	return cases.Fold().String(strings.TrimSpace(username))
}

// Signup crea un usuario customer. Devuelve domain.ErrUsernameTaken si ya existe.
func (uc *AuthUseCase) Signup(ctx context.Context, in dto.SignupRequest) (*dto.UserResponse, error) {
	return uc.createUser(ctx, in, entity.RoleCustomer)
}

// CreateAdmin crea un usuario admin (usado por el comando de seed, no expuesto por HTTP).
func (uc *AuthUseCase) CreateAdmin(ctx context.Context, in dto.SignupRequest) (*dto.UserResponse, error) {
	return uc.createUser(ctx, in, entity.RoleAdmin)
}

func (uc *AuthUseCase) createUser(ctx context.Context, in dto.SignupRequest, role string) (*dto.UserResponse, error) {
	username := NormalizeUsername(in.Username)
	if err := validateSignup(username, in); err != nil {
		return nil, err
	}
	existing, err := uc.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrUsernameTaken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), uc.bcryptCost)
	if err != nil {
		return nil, err
	}
	fullName := strings.TrimSpace(in.FullName)
	if fullName == "" {
		fullName = username
	}
	now := time.Now().UTC()
	user := &entity.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        strings.TrimSpace(in.Email),
		FullName:     fullName,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return ToUserResponse(user), nil
}

func validateSignup(username string, in dto.SignupRequest) error {
	n := utf8.RuneCountInString(username)
	if n < minUsernameLen || n > maxUsernameLen {
		return domain.Invalid("username", "debe tener entre 3 y 50 caracteres")
	}
	if strings.IndexFunc(username, unicode.IsSpace) >= 0 {
		return domain.Invalid("username", "no puede contener espacios")
	}
	if len(in.Password) < minPasswordLen {
		return domain.Invalid("password", "debe tener al menos 8 caracteres")
	}
	if len(in.Password) > maxPasswordLen {
		return domain.Invalid("password", "debe tener como máximo 72 bytes")
	}
	if strings.TrimSpace(in.Email) == "" {
		return domain.Invalid("email", "es requerido")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return domain.Invalid("email", "formato inválido")
	}
	return nil
}

// Login verifica username/password, genera JWT y retorna token + usuario.
// Usuario inexistente y password incorrecto devuelven el mismo error.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	if strings.TrimSpace(in.Username) == "" || in.Password == "" {
		return nil, domain.Invalid("username", "username y password son requeridos")
	}
	user, err := uc.userRepo.GetByUsername(ctx, NormalizeUsername(in.Username))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	return uc.issue(user)
}

// Refresh emite un token nuevo para la identidad actual, releyendo el rol desde el store.
func (uc *AuthUseCase) Refresh(ctx context.Context, id Identity) (*dto.LoginResponse, error) {
	user, err := uc.userRepo.GetByID(ctx, id.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrInvalidToken
	}
	return uc.issue(user)
}

// Me devuelve el perfil del usuario autenticado.
func (uc *AuthUseCase) Me(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	return ToUserResponse(user), nil
}

func (uc *AuthUseCase) issue(user *entity.User) (*dto.LoginResponse, error) {
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(time.Duration(uc.jwtCfg.ExpMinutes) * time.Minute).UTC(),
		User:      *ToUserResponse(user),
	}, nil
}

// ToUserResponse convierte la entidad a DTO sin exponer el hash.
func ToUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}
