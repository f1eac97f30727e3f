package main

import (
	"log"
	"net/http"
	"os"

	"github.com/ecotrack/wastage-api/database"
	"github.com/ecotrack/wastage-api/mailer"
	"github.com/ecotrack/wastage-api/routes"
	"github.com/ecotrack/wastage-api/store"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	log.Print("starting server...")

	// Load environment variables from .env when present.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	st := buildStore()
	sender := buildSender()

	r := routes.SetupRoutes(st, sender)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
	})
	httpHandler := c.Handler(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
		log.Printf("defaulting to port %s", port)
	}

	log.Printf("listening on port %s", port)
	if err := http.ListenAndServe(":"+port, httpHandler); err != nil {
		log.Fatal(err)
	}
}

// buildStore picks the PostgreSQL store when DB_HOST is configured and the
// volatile in-memory store otherwise. All state in the memory store is lost
// on restart, matching the original system.
func buildStore() store.Store {
	if os.Getenv("DB_HOST") != "" {
		db, err := database.InitDB()
		if err != nil {
			log.Fatal("Failed to initialize database:", err)
		}
		if err := database.EnsureSchema(db); err != nil {
			log.Fatal("Failed to ensure database schema:", err)
		}
		return store.NewPostgres(db)
	}

	log.Print("no DB_HOST configured, using in-memory store")
	mem := store.NewMemory()
	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := mem.SeedDemoData(); err != nil {
			log.Fatal("Failed to seed demo data:", err)
		}
		log.Print("seeded demo data (admin@example.com / password123)")
	}
	return mem
}

// buildSender delivers reset links over SMTP when SMTP_HOST is configured;
// otherwise the link is written to the server log.
func buildSender() mailer.Sender {
	cfg := mailer.LoadConfig()
	if cfg.Host != "" {
		return mailer.NewSMTPSender(cfg)
	}
	log.Print("no SMTP_HOST configured, password reset links will be logged")
	return mailer.LogSender{}
}
