package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/mreglen/banya-backend/models"
	"github.com/mreglen/banya-backend/storage"
)

// Seeds the admin role and the first staff account. Credentials come from
// ADMIN_USERNAME / ADMIN_PASSWORD; safe to run twice.
func main() {
	godotenv.Load()

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("DB_CONNECTION_STRING environment variable is required")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("error connecting to db: " + err.Error())
	}
	if err := storage.Migrate(db); err != nil {
		log.Fatal("error running migrations: " + err.Error())
	}

	username := os.Getenv("ADMIN_USERNAME")
	password := os.Getenv("ADMIN_PASSWORD")
	if username == "" || password == "" {
		log.Fatal("ADMIN_USERNAME and ADMIN_PASSWORD environment variables are required")
	}

	var role models.Role
	if err := db.Where("name = ?", "admin").First(&role).Error; err != nil {
		role = models.Role{Name: "admin"}
		if err := db.Create(&role).Error; err != nil {
			log.Fatal("error creating admin role: " + err.Error())
		}
	}

	var existing models.User
	if err := db.Where("username = ?", username).First(&existing).Error; err == nil {
		log.Println("admin user already exists:", username)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("error hashing password: " + err.Error())
	}

	user := models.User{
		Username:     username,
		PasswordHash: string(hash),
		RoleID:       role.ID,
		IsActive:     true,
		FullName:     "Administrator",
	}
	if err := db.Create(&user).Error; err != nil {
		log.Fatal("error creating admin user: " + err.Error())
	}

	log.Println("admin user created:", username)
}
