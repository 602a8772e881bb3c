package main

import (
	"log"

	"customer-service-be/internal/config"
	"customer-service-be/pkg/database"
)

func main() {
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, cfg.IsProduction())
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Seeding catalog...")
	products := SeedProducts(db)

	log.Println("Seeding customers...")
	customers := SeedCustomers(db)

	log.Println("Seeding orders...")
	SeedOrders(db, customers, products)

	log.Println("Seeding support tickets...")
	SeedTickets(db, customers)

	log.Println("Seeding completed!")
}
