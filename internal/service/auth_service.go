package service

import (
	"context"
	"time"

	"machtrade/internal/apperr"
	"machtrade/internal/config"
	"machtrade/internal/dto"
	"machtrade/internal/model"
	"machtrade/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
	CreateUser(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error)
	UpdateUser(ctx context.Context, id uuid.UUID, req dto.UpdateUserRequest) (*dto.UserResponse, error)
	ListUsers(ctx context.Context, page, limit int) ([]dto.UserResponse, int64, error)
}

type authService struct {
	repo       repository.UserRepository
	branchRepo repository.BranchRepository
	cfg        *config.Config
}

func NewAuthService(repo repository.UserRepository, branchRepo repository.BranchRepository, cfg *config.Config) AuthService {
	return &authService{repo: repo, branchRepo: branchRepo, cfg: cfg}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.repo.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, apperr.Authorization("invalid credentials")
	}
	if !user.Active {
		return nil, apperr.Authorization("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperr.Authorization("invalid credentials")
	}
	return s.issueTokens(user)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, apperr.Authorization("refresh token invalid or expired")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apperr.Authorization("malformed token")
	}
	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return nil, apperr.Authorization("malformed token")
	}
	uid, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, apperr.Authorization("malformed token")
	}

	user, err := s.repo.FindByID(ctx, uid)
	if err != nil || !user.Active {
		return nil, apperr.Authorization("user not found or inactive")
	}
	return s.issueTokens(user)
}

func (s *authService) issueTokens(user *model.User) (*dto.LoginResponse, error) {
	accessToken, err := s.generateToken(user, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.generateToken(user, time.Duration(s.cfg.JWTRefreshHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    s.cfg.JWTExpirationHours * 3600,
		User:         userToResponse(user),
	}, nil
}

func (s *authService) CreateUser(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     req.Username,
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
		Active:       true,
	}
	if req.HomeBranchID != nil {
		id, err := uuid.Parse(*req.HomeBranchID)
		if err != nil {
			return nil, apperr.Validation("invalid home_branch_id")
		}
		user.HomeBranchID = &id
	}
	if user.Role == "branch" && user.HomeBranchID == nil {
		return nil, apperr.Validation("branch users need a home branch")
	}

	branches, err := s.resolveBranches(ctx, req.BranchIDs)
	if err != nil {
		return nil, err
	}
	user.Branches = branches

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	resp := userToResponse(user)
	return &resp, nil
}

func (s *authService) UpdateUser(ctx context.Context, id uuid.UUID, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("user not found")
	}
	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Email != nil {
		user.Email = req.Email
	}
	if req.Role != "" {
		user.Role = req.Role
	}
	if req.HomeBranchID != nil {
		hid, err := uuid.Parse(*req.HomeBranchID)
		if err != nil {
			return nil, apperr.Validation("invalid home_branch_id")
		}
		user.HomeBranchID = &hid
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	if req.BranchIDs != nil {
		branches, err := s.resolveBranches(ctx, req.BranchIDs)
		if err != nil {
			return nil, err
		}
		if err := s.repo.ReplaceBranches(ctx, user, branches); err != nil {
			return nil, err
		}
		user.Branches = branches
	}

	resp := userToResponse(user)
	return &resp, nil
}

func (s *authService) ListUsers(ctx context.Context, page, limit int) ([]dto.UserResponse, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}
	users, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	resp := make([]dto.UserResponse, len(users))
	for i := range users {
		resp[i] = userToResponse(&users[i])
	}
	return resp, total, nil
}

func (s *authService) resolveBranches(ctx context.Context, ids []string) ([]model.Branch, error) {
	branches := make([]model.Branch, 0, len(ids))
	for _, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, apperr.Validation("invalid branch id in branch_ids")
		}
		b, err := s.branchRepo.FindByID(ctx, id)
		if err != nil {
			return nil, apperr.NotFound("branch not found")
		}
		branches = append(branches, *b)
	}
	return branches, nil
}

func (s *authService) generateToken(user *model.User, duration time.Duration) (string, error) {
	branchIDs := make([]string, 0, len(user.Branches))
	for _, b := range user.Branches {
		branchIDs = append(branchIDs, b.ID.String())
	}
	claims := jwt.MapClaims{
		"user_id":    user.ID.String(),
		"username":   user.Username,
		"role":       user.Role,
		"branch_ids": branchIDs,
		"exp":        time.Now().Add(duration).Unix(),
		"iat":        time.Now().Unix(),
	}
	if user.HomeBranchID != nil {
		claims["home_branch_id"] = user.HomeBranchID.String()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func userToResponse(u *model.User) dto.UserResponse {
	branchIDs := make([]string, 0, len(u.Branches))
	for _, b := range u.Branches {
		branchIDs = append(branchIDs, b.ID.String())
	}
	resp := dto.UserResponse{
		ID:        u.ID.String(),
		Username:  u.Username,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		BranchIDs: branchIDs,
		Active:    u.Active,
	}
	if u.HomeBranchID != nil {
		hid := u.HomeBranchID.String()
		resp.HomeBranchID = &hid
	}
	return resp
}
