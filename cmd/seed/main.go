// Package main seeds a development database with demo hosts and guests and
// prints an identity token for each, so the API can be exercised without the
// external sign-in provider.
//
// Usage:
//
//	DATA_PATH=~/NesveskVienas go run ./cmd/seed
//	DATA_PATH=~/NesveskVienas go run ./cmd/seed --invite  # Also send a few invitations
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/nesvesk-vienas/nesvesk-server/internal/auth"
	"github.com/nesvesk-vienas/nesvesk-server/internal/domain"
	"github.com/nesvesk-vienas/nesvesk-server/internal/service"
	"github.com/nesvesk-vienas/nesvesk-server/internal/store/sqlite"
	"github.com/nesvesk-vienas/nesvesk-server/internal/validation"
)

var sendInvites = flag.Bool("invite", false, "Send invitations from every guest to the first host")

type demoMember struct {
	name      string
	role      domain.Role
	city      domain.City
	languages []domain.Language
	dates     []domain.HolidayDate
	capacity  int
	bio       string
}

var members = []demoMember{
	{"Ona", domain.RoleHost, domain.Vilnius, []domain.Language{domain.Lithuanian, domain.English}, []domain.HolidayDate{domain.ChristmasEve, domain.ChristmasDay}, 4, "Kūčios su dvylika patiekalų."},
	{"Petras", domain.RoleBoth, domain.Kaunas, []domain.Language{domain.Lithuanian}, []domain.HolidayDate{domain.ChristmasDay}, 2, "Mėgstu stalo žaidimus."},
	{"Olena", domain.RoleGuest, domain.Vilnius, []domain.Language{domain.Ukrainian, domain.English}, []domain.HolidayDate{domain.ChristmasEve}, 0, "New in Vilnius, would love company."},
	{"Jonas", domain.RoleGuest, domain.Klaipeda, []domain.Language{domain.Lithuanian}, []domain.HolidayDate{domain.ChristmasEve, domain.NewYearsEve}, 0, "Studentas, šventės toli nuo namų."},
}

func main() {
	flag.Parse()

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/NesveskVienas")
	}
	if err := os.MkdirAll(dataPath, 0o750); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	dbPath := filepath.Join(dataPath, "nesvesk.db")
	fmt.Printf("Opening database at: %s\n", dbPath)

	logger := slog.New(slog.DiscardHandler)

	st, err := sqlite.Open(dbPath, logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	key, err := auth.LoadOrGenerateKey(os.Getenv("AUTH_TOKEN_KEY"), dataPath)
	if err != nil {
		log.Fatalf("Failed to load token key: %v", err)
	}
	tokens, err := auth.NewTokenService(key, 24*time.Hour)
	if err != nil {
		log.Fatalf("Failed to create token service: %v", err)
	}

	v := validation.New()
	users := service.NewUserService(st, logger)
	profiles := service.NewProfileService(st, nil, v, logger)
	// No outbox wake-ups: the server's dispatcher picks the jobs up on its next poll.
	invitations := service.NewInvitationService(st, nil, &service.Effects{DefaultLocale: domain.LocaleLithuanian}, v, logger)

	ctx := context.Background()

	ids := make(map[string]string, len(members))
	var firstHost string

	for _, m := range members {
		identity := auth.Identity{
			ExternalID: "seed-" + m.name,
			Email:      fmt.Sprintf("%s@seed.nesvesk-vienas.lt", m.name),
			Name:       m.name,
		}

		user, err := users.EnsureUser(ctx, identity)
		if err != nil {
			log.Fatalf("Failed to create user %s: %v", m.name, err)
		}
		ids[m.name] = user.ID

		_, err = profiles.UpsertProfile(ctx, user.ID, service.UpsertProfileRequest{
			Role:           m.role,
			FirstName:      m.name,
			City:           m.city,
			Bio:            m.bio,
			Languages:      m.languages,
			AvailableDates: m.dates,
			Capacity:       m.capacity,
		})
		if err != nil {
			log.Fatalf("Failed to create profile for %s: %v", m.name, err)
		}

		if firstHost == "" && m.role.CanHost() {
			firstHost = user.ID
		}

		token, err := tokens.Issue(identity)
		if err != nil {
			log.Fatalf("Failed to issue token for %s: %v", m.name, err)
		}
		fmt.Printf("\n%s (%s, %s)\n  user:  %s\n  token: %s\n", m.name, m.role, m.city, user.ID, token)
	}

	if *sendInvites && firstHost != "" {
		fmt.Println("\nSending invitations...")
		for _, m := range members {
			if m.role != domain.RoleGuest {
				continue
			}
			inv, err := invitations.Send(ctx, ids[m.name], service.SendInvitationRequest{
				ToUserID: firstHost,
				Date:     m.dates[0],
			})
			if err != nil {
				log.Printf("Skipping invitation from %s: %v", m.name, err)
				continue
			}
			fmt.Printf("  %s -> host on %s (%s)\n", m.name, inv.Date, inv.ID)
		}
	}

	fmt.Println("\nSeed completed.")
}
