package database

import (
	"database/sql"
)

// defaultCategories is the starter set seeded into an empty database.
var defaultCategories = []string{
	"Bills & Subscriptions",
	"Clothing",
	"Coffee Shops",
	"Doctor",
	"Education",
	"Electronics",
	"Entertainment",
	"Fees & Charges",
	"Flights",
	"Food & Dining",
	"Freelance",
	"Games",
	"Gas & Fuel",
	"Gifts & Donations",
	"Groceries",
	"Gym",
	"Health & Fitness",
	"Home & Garden",
	"Hotels",
	"Housing",
	"Income",
	"Insurance",
	"Interest",
	"Movies & Shows",
	"Parking",
	"Personal Care",
	"Pharmacy",
	"Public Transit",
	"Rent/Mortgage",
	"Restaurants",
	"Ride Share",
	"Shopping",
	"Streaming",
	"Transfer",
	"Transportation",
	"Travel",
	"Uncategorized",
	"Utilities",
}

// SeedDefaults populates the default categories when the table is empty.
// It is idempotent and safe to run on every startup.
func SeedDefaults(db *sql.DB) error {
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM categories`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return WithTx(db, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`INSERT OR IGNORE INTO categories (name) VALUES (?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, name := range defaultCategories {
			if _, err := stmt.Exec(name); err != nil {
				return err
			}
		}
		return nil
	})
}
