package main

import (
	"fmt"
	"log"

	"agencyio/internal/config"
	"agencyio/internal/database"
	"agencyio/internal/domain"
)

// Recomputes the slot key for every consultation: non-terminal records get
// "email|date|time", terminal records get NULL. Needed once when the unique
// slot index is introduced over data created before it existed.
func main() {
	// Load configuration
	_, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	if err := database.Init(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	db := database.GetDB()

	var consultations []domain.Consultation
	if err := db.Find(&consultations).Error; err != nil {
		log.Fatalf("Failed to load consultations: %v", err)
	}

	updated := 0
	for i := range consultations {
		c := &consultations[i]
		want := c.SlotKey()

		if c.Status.Terminal() {
			if c.Slot == nil {
				continue
			}
		} else if c.Slot != nil && *c.Slot == want {
			continue
		}

		// Save triggers the BeforeUpdate hook, which derives or clears
		// the slot from the current status.
		if err := db.Save(c).Error; err != nil {
			log.Fatalf("Failed to update consultation id=%d: %v", c.ID, err)
		}
		updated++
	}

	fmt.Printf("Backfill complete: %d of %d consultations updated\n", updated, len(consultations))
}
