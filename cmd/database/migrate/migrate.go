package migration

import (
	"zerohunger-backend/entities"
	"fmt"
	"log"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	// Postgres extensions for uuid defaults and the spatial containment
	// queries used by the proximity matcher.
	db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\";")
	db.Exec("CREATE EXTENSION IF NOT EXISTS \"cube\";")
	db.Exec("CREATE EXTENSION IF NOT EXISTS \"earthdistance\" CASCADE;")

	if err := db.AutoMigrate(&entities.Restaurant{}); err != nil {
		log.Fatalf("Error migrating restaurant database: %v", err)
		return err
	}
	if err := db.AutoMigrate(&entities.NGO{}); err != nil {
		log.Fatalf("Error migrating ngo database: %v", err)
		return err
	}
	if err := db.AutoMigrate(&entities.Admin{}); err != nil {
		log.Fatalf("Error migrating admin database: %v", err)
		return err
	}
	if err := db.AutoMigrate(&entities.Donation{}); err != nil {
		log.Fatalf("Error migrating donation database: %v", err)
		return err
	}

	// Functional indexes backing the radius containment queries.
	db.Exec("CREATE INDEX IF NOT EXISTS idx_donations_earth ON donations USING gist (ll_to_earth(location_latitude, location_longitude));")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_ngos_earth ON ngos USING gist (ll_to_earth(location_latitude, location_longitude));")

	fmt.Println("Database migration complete")
	return nil
}
