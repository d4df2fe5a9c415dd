package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lumina-pos/api/internal/archive"
	"github.com/lumina-pos/api/internal/auth"
	"github.com/lumina-pos/api/internal/config"
	"github.com/lumina-pos/api/internal/engine"
	"github.com/lumina-pos/api/internal/enum"
	"github.com/lumina-pos/api/internal/router"
	"github.com/lumina-pos/api/internal/ws"
)

func main() {
	cfg := config.Load()

	eng := engine.New(cfg.TaxRate)

	users := auth.NewDirectory()
	seedUsers(users)

	hub := ws.NewHub()
	go hub.Run()

	var archiver *archive.Archiver
	if cfg.ArchiveDatabaseURL != "" {
		pool, err := pgxpool.New(context.Background(), cfg.ArchiveDatabaseURL)
		if err != nil {
			log.Fatalf("connect archive database: %v", err)
		}
		defer pool.Close()

		archiver = archive.New(pool)
		if err := archiver.EnsureSchema(context.Background()); err != nil {
			log.Fatalf("ensure archive schema: %v", err)
		}
		log.Println("Archive database connected")
	} else {
		log.Println("ARCHIVE_DATABASE_URL not set, closed orders will not be archived")
	}

	r := router.New(cfg, eng, users, hub, archiver)

	log.Printf("Starting server on :%s", cfg.Port)
	if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.Port), r); err != nil {
		log.Fatal(err)
	}
}

// seedUsers loads the default staff accounts. Replace the passwords before
// exposing the server anywhere.
func seedUsers(users *auth.Directory) {
	seed := []struct {
		email, name, role, password string
	}{
		{"admin@lumina.local", "Admin", enum.UserRoleAdmin, "admin123"},
		{"cashier@lumina.local", "Cashier", enum.UserRoleCashier, "cashier123"},
		{"kitchen@lumina.local", "Kitchen", enum.UserRoleKitchen, "kitchen123"},
	}
	for _, s := range seed {
		if _, err := users.Add(s.email, s.name, s.role, s.password); err != nil {
			log.Fatalf("seed user %s: %v", s.email, err)
		}
	}
}
