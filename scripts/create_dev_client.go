package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"

	"github.com/franciscosanchezn/pizzeria-api/internal/config"
	"github.com/franciscosanchezn/pizzeria-api/internal/database"
	"github.com/franciscosanchezn/pizzeria-api/internal/models"
	"github.com/franciscosanchezn/pizzeria-api/internal/services"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

// Creates (or reuses) an admin user and registers an OAuth2 client for it.
// Usage: go run ./scripts -email admin@pizza.com -password changeme
func main() {
	email := flag.String("email", "admin@pizza.com", "Admin user email")
	password := flag.String("password", "admin-secret-123", "Admin password, used only when the user is created")
	name := flag.String("name", "Development Client", "OAuth2 client name")
	scopes := flag.String("scopes", "", "Comma separated scopes, empty for the defaults")
	flag.Parse()

	_ = godotenv.Load()
	conf, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	db, err := database.InitDatabase(database.DatabaseConfig{
		Driver:   conf.DBDriver,
		URL:      conf.DatabaseURL,
		Host:     conf.DBHost,
		Port:     conf.DBPort,
		User:     conf.DBUser,
		Password: conf.DBPassword,
		Name:     conf.DBName,
		SSLMode:  conf.DBSSLMode,
		Path:     conf.DBPath,
	})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	admin, err := getOrCreateAdmin(db, *email, *password)
	if err != nil {
		log.Fatal("Failed to get admin user:", err)
	}

	client, secret, err := services.NewClientService(db).CreateClient(context.Background(), admin.ID, services.ClientRegistration{
		Name:   *name,
		Domain: "http://localhost",
		Scopes: *scopes,
	})
	if err != nil {
		log.Fatal("Failed to create client:", err)
	}

	fmt.Printf("✓ OAuth client created for %s (user ID %d)\n", admin.Email, admin.ID)
	fmt.Printf("Client ID: %s\n", client.ID)
	fmt.Printf("Client Secret: %s\n", secret)
	fmt.Println("\nThe secret is not stored in plain text, keep it now. Request a token with:")
	fmt.Printf("curl -X POST http://%s:%d/oauth/token \\\n", conf.Host, conf.Port)
	fmt.Printf("  -d 'grant_type=client_credentials' \\\n")
	fmt.Printf("  -d 'client_id=%s' \\\n", client.ID)
	fmt.Printf("  -d 'client_secret=%s'\n", secret)
}

// getOrCreateAdmin returns the user with the given email, promoting it to admin if needed
func getOrCreateAdmin(db *gorm.DB, email, password string) (*models.User, error) {
	var user models.User
	err := db.Where("email = ?", email).First(&user).Error
	switch {
	case err == nil:
		if user.Role != models.RoleAdmin {
			if err := db.Model(&user).Update("role", models.RoleAdmin).Error; err != nil {
				return nil, err
			}
			fmt.Printf("Promoted existing user %s to admin\n", user.Email)
		} else {
			fmt.Printf("Found existing admin: %s (ID: %d)\n", user.Email, user.ID)
		}
		return &user, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	user = models.User{
		Name:            "Admin",
		Email:           email,
		Password:        password,
		Role:            models.RoleAdmin,
		IsEmailVerified: true,
	}
	if err := user.HashPassword(); err != nil {
		return nil, err
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}
	fmt.Printf("Created admin user: %s (ID: %d)\n", user.Email, user.ID)
	return &user, nil
}
