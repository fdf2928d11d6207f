package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"garageflow-backend/models"
	"garageflow-backend/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ShopService registers shops and issues their tokens.
type ShopService struct {
	db          *gorm.DB
	jwtSecret   string
	tokenExpiry time.Duration
	logger      *zap.Logger
}

func NewShopService(db *gorm.DB, jwtSecret string, tokenExpiry time.Duration, logger *zap.Logger) *ShopService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShopService{db: db, jwtSecret: jwtSecret, tokenExpiry: tokenExpiry, logger: logger}
}

type RegisterShopRequest struct {
	ShopName    string  `json:"shop_name" binding:"required,max=200"`
	ShopAddress *string `json:"shop_address"`
	ShopPhone   *string `json:"shop_phone" binding:"omitempty,max=50"`
	ShopEmail   string  `json:"shop_email" binding:"required,email"`
	Password    string  `json:"password" binding:"required,min=8,max=72"`
	TaxID       *string `json:"tax_id" binding:"omitempty,max=50"`
}

func (s *ShopService) Register(ctx context.Context, req RegisterShopRequest) (*models.Shop, error) {
	email := strings.ToLower(strings.TrimSpace(req.ShopEmail))

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Shop{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, Internal("check shop email", err)
	}
	if count > 0 {
		return nil, Conflict("Email already registered")
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, Internal("hash password", err)
	}

	shop := models.Shop{
		Name:          strings.TrimSpace(req.ShopName),
		Address:       trimmedOrNil(req.ShopAddress),
		Phone:         trimmedOrNil(req.ShopPhone),
		Email:         email,
		PasswordHash:  hash,
		NextInvoiceNo: 1,
		TaxID:         trimmedOrNil(req.TaxID),
	}
	if err := s.db.WithContext(ctx).Create(&shop).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, Conflict("Email already registered")
		}
		return nil, Internal("create shop", err)
	}

	s.logger.Info("shop registered", zap.Uint("shop_id", shop.ID))
	return &shop, nil
}

type LoginRequest struct {
	ShopEmail string `json:"shop_email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
}

type LoginResult struct {
	Token string       `json:"token"`
	Shop  ShopIdentity `json:"shop"`
}

type ShopIdentity struct {
	ID       uint   `json:"id"`
	ShopName string `json:"shop_name"`
}

// ErrInvalidCredentials is returned by Login for an unknown email or a wrong
// password alike.
var ErrInvalidCredentials = errors.New("invalid credentials")

func (s *ShopService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	var shop models.Shop
	err := s.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(req.ShopEmail))).
		Take(&shop).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, Internal("load shop", err)
	}
	if !utils.CheckPasswordHash(req.Password, shop.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(s.jwtSecret, s.tokenExpiry, shop.ID, shop.Name)
	if err != nil {
		return nil, Internal("sign token", err)
	}
	return &LoginResult{Token: token, Shop: ShopIdentity{ID: shop.ID, ShopName: shop.Name}}, nil
}

func (s *ShopService) GetShop(ctx context.Context, shopID uint) (*models.Shop, error) {
	var shop models.Shop
	if err := s.db.WithContext(ctx).Take(&shop, shopID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("Shop not found")
		}
		return nil, Internal("get shop", err)
	}
	return &shop, nil
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=72"`
}

func (s *ShopService) ChangePassword(ctx context.Context, shopID uint, req ChangePasswordRequest) error {
	shop, err := s.GetShop(ctx, shopID)
	if err != nil {
		return err
	}
	if !utils.CheckPasswordHash(req.CurrentPassword, shop.PasswordHash) {
		return InvalidRequest("Current password is incorrect")
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return Internal("hash password", err)
	}
	err = s.db.WithContext(ctx).Model(&models.Shop{}).
		Where("id = ?", shopID).
		Update("password_hash", hash).Error
	if err != nil {
		return Internal("update password", err)
	}
	return nil
}
