package main

import (
	"log"

	"renovation/internal/api"
)

// @title Renovation procurement API
// @version 1.0
// @description Projects, FFE schedules, supplier RFQs, purchase orders, client invoices and the task board of an interior design studio.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer token from /api/auth/login. Format: "Bearer {token}"

func main() {
	log.Println("App start")
	api.StartServer()
	log.Println("App terminated")
}
