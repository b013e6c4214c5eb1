package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/franciscosanchezn/pizzeria-api/internal/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ClientRegistration describes a new API client
type ClientRegistration struct {
	Name   string `json:"name" binding:"required"`
	Domain string `json:"domain"`
	Scopes string `json:"scopes"`
}

// ClientService manages OAuth2 client credentials owned by admin users
type ClientService interface {
	// CreateClient stores a new client and returns it with the plain secret,
	// which is not retrievable afterwards
	CreateClient(ctx context.Context, userID uint, reg ClientRegistration) (*models.OAuthClient, string, error)
	GetClientsByUserID(ctx context.Context, userID uint) ([]models.OAuthClient, error)
	GetClientByID(ctx context.Context, id string) (*models.OAuthClient, error)
	DeleteClient(ctx context.Context, clientID string, userID uint) error
}

type clientService struct {
	db *gorm.DB
}

func NewClientService(db *gorm.DB) ClientService {
	return &clientService{db: db}
}

func (s *clientService) CreateClient(ctx context.Context, userID uint, reg ClientRegistration) (*models.OAuthClient, string, error) {
	if strings.TrimSpace(reg.Name) == "" {
		return nil, "", fmt.Errorf("%w: client name is required", ErrValidation)
	}
	scopes := reg.Scopes
	if scopes == "" {
		scopes = "orders:read,orders:write"
	}

	secret := strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash client secret: %w", err)
	}

	client := &models.OAuthClient{
		ID:         "pz_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:24],
		Secret:     string(hashed),
		Name:       strings.TrimSpace(reg.Name),
		Domain:     reg.Domain,
		UserID:     userID,
		Scopes:     scopes,
		GrantTypes: "client_credentials",
	}
	if err := s.db.WithContext(ctx).Create(client).Error; err != nil {
		return nil, "", err
	}
	return client, secret, nil
}

func (s *clientService) GetClientsByUserID(ctx context.Context, userID uint) ([]models.OAuthClient, error) {
	var clients []models.OAuthClient
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

func (s *clientService) GetClientByID(ctx context.Context, id string) (*models.OAuthClient, error) {
	var client models.OAuthClient
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&client).Error; err != nil {
		return nil, notFound(err, "client")
	}
	return &client, nil
}

func (s *clientService) DeleteClient(ctx context.Context, clientID string, userID uint) error {
	result := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", clientID, userID).Delete(&models.OAuthClient{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("client %s: %w", clientID, ErrNotFound)
	}
	return nil
}
