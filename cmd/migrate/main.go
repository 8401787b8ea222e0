package main

import (
	"errors"
	"log"
	"os"

	"renovation/internal/app/ds"
	"renovation/internal/app/dsn"
	"renovation/internal/app/role"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	_ = godotenv.Load()

	dsnStr := dsn.FromEnv()
	if dsnStr == "" {
		log.Fatal("DSN string is empty. Check your .env file")
	}

	db, err := gorm.Open(postgres.Open(dsnStr), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	log.Println("Connected to database successfully")

	if err := db.AutoMigrate(ds.Models()...); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	log.Println("Database migration completed successfully")

	if err := seedAdmin(db); err != nil {
		log.Fatalf("Failed to seed admin: %v", err)
	}
}

// seedAdmin creates the first admin from ADMIN_LOGIN / ADMIN_PASSWORD once.
func seedAdmin(db *gorm.DB) error {
	login, password := os.Getenv("ADMIN_LOGIN"), os.Getenv("ADMIN_PASSWORD")
	if login == "" || password == "" {
		log.Println("ADMIN_LOGIN or ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}

	var existing ds.User
	err := db.Where("login = ?", login).First(&existing).Error
	if err == nil {
		log.Printf("User %s already exists", login)
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := ds.User{
		Login:    login,
		Password: string(hash),
		FullName: "Administrator",
		Email:    os.Getenv("ADMIN_EMAIL"),
		Role:     role.Admin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	log.Printf("Admin %s created", login)
	return nil
}
