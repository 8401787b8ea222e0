//go:build ignore

package main

import (
	"fmt"
	"log"

	"renovation/internal/app/ds"
	"renovation/internal/app/dsn"

	"github.com/joho/godotenv"
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
		log.Fatal("Failed to connect to database:", err)
	}

	var projects []ds.Project
	if err := db.Order("id").Find(&projects).Error; err != nil {
		log.Fatal("Failed to get projects:", err)
	}

	fmt.Println("Projects in database:")
	for _, project := range projects {
		var quotes []ds.ClientQuote
		if err := db.Where("project_id = ?", project.ID).Order("id").Find(&quotes).Error; err != nil {
			log.Fatal("Failed to get client quotes:", err)
		}

		fmt.Printf("ID: %d, Name: %s, Client: %s, Status: %s\n", project.ID, project.Name, project.ClientName, project.Status)
		for _, q := range quotes {
			fmt.Printf("    %s  %-14s total %s  paid %s\n",
				q.Number, q.Status, q.Total.StringFixed(2), q.AmountPaid.StringFixed(2))
		}
	}
}
