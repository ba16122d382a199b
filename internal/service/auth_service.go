package service

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/hirestack/hirestack-backend/internal/dto"
	"github.com/hirestack/hirestack-backend/internal/model"
	"github.com/hirestack/hirestack-backend/internal/repository"
	"github.com/hirestack/hirestack-backend/pkg/apperror"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthClaims is the JWT payload. Role is one of user, company, admin and
// decides which table the subject id points into.
type AuthClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type AuthService interface {
	RegisterUser(ctx context.Context, req dto.RegisterUserRequest) (*dto.LoginResponse, error)
	RegisterCompany(ctx context.Context, req dto.RegisterCompanyRequest) (*dto.LoginResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
}

type authService struct {
	userRepo    repository.UserRepository
	companyRepo repository.CompanyRepository
	adminRepo   repository.AdminRepository
	secret      string
}

func NewAuthService(userRepo repository.UserRepository, companyRepo repository.CompanyRepository, adminRepo repository.AdminRepository) AuthService {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "12345"
	}

	return &authService{
		userRepo:    userRepo,
		companyRepo: companyRepo,
		adminRepo:   adminRepo,
		secret:      secret,
	}
}

func (s *authService) RegisterUser(ctx context.Context, req dto.RegisterUserRequest) (*dto.LoginResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.issueToken(user.ID.String(), model.RoleUser, user.FullName)
}

func (s *authService) RegisterCompany(ctx context.Context, req dto.RegisterCompanyRequest) (*dto.LoginResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	company := &model.Company{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Website:      req.Website,
		About:        req.About,
	}
	if err := s.companyRepo.Create(ctx, company); err != nil {
		return nil, err
	}

	return s.issueToken(company.ID.String(), model.RoleCompany, company.Name)
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	var (
		id   string
		name string
		hash string
	)

	switch req.Role {
	case model.RoleUser:
		user, err := s.userRepo.FindByEmail(ctx, req.Email)
		if err != nil {
			return nil, loginErr(err)
		}
		id, name, hash = user.ID.String(), user.FullName, user.PasswordHash
	case model.RoleCompany:
		company, err := s.companyRepo.FindByEmail(ctx, req.Email)
		if err != nil {
			return nil, loginErr(err)
		}
		id, name, hash = company.ID.String(), company.Name, company.PasswordHash
	case model.RoleAdmin:
		admin, err := s.adminRepo.FindByEmail(ctx, req.Email)
		if err != nil {
			return nil, loginErr(err)
		}
		id, name, hash = admin.ID.String(), admin.FullName, admin.PasswordHash
	default:
		return nil, apperror.ErrInvalidInput
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)); err != nil {
		return nil, apperror.ErrUnauthorized
	}

	return s.issueToken(id, req.Role, name)
}

func (s *authService) issueToken(id, role, name string) (*dto.LoginResponse, error) {
	claims := AuthClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(72 * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		Token: signed,
		Role:  role,
		ID:    id,
		Name:  name,
	}, nil
}

// loginErr hides whether the account exists.
func loginErr(err error) error {
	if errors.Is(err, apperror.ErrNotFound) {
		return apperror.ErrUnauthorized
	}
	return err
}
