// Package directory holds the public producer directory: record types,
// the in-memory filter engine, persistence, self-registration and CSV import.
package directory

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Import source constants
const (
	SourceCSV          = "csv"
	SourceGoogleSheets = "google_sheets"
)

// Regions lists the French administrative regions a producer may register in.
var Regions = []string{
	"Auvergne-Rhône-Alpes",
	"Bourgogne-Franche-Comté",
	"Bretagne",
	"Centre-Val de Loire",
	"Corse",
	"Grand Est",
	"Hauts-de-France",
	"Île-de-France",
	"Normandie",
	"Nouvelle-Aquitaine",
	"Occitanie",
	"Pays de la Loire",
	"Provence-Alpes-Côte d'Azur",
	"Guadeloupe",
	"Guyane",
	"Martinique",
	"La Réunion",
	"Mayotte",
}

// ProductCategories lists the fixed product category enumeration shown in the
// directory filter.
var ProductCategories = []string{
	"Fruits et Légumes",
	"Viandes et Charcuteries",
	"Produits Laitiers",
	"Boulangerie et Pâtisserie",
	"Boissons",
	"Épicerie Fine",
	"Poissons et Fruits de Mer",
	"Miel et Produits de la Ruche",
}

// Producer represents a registered food-production business
type Producer struct {
	ID          uuid.UUID      `json:"id" db:"id"`
	UserID      *uuid.UUID     `json:"user_id,omitempty" db:"user_id"`
	CompanyName string         `json:"company_name" db:"company_name"`
	ContactName string         `json:"contact_name" db:"contact_name"`
	Email       string         `json:"email" db:"email"`
	Phone       string         `json:"phone" db:"phone"`
	Address     string         `json:"address" db:"address"`
	PostalCode  string         `json:"postal_code" db:"postal_code"`
	City        string         `json:"city" db:"city"`
	Region      string         `json:"region" db:"region"`
	Products    pq.StringArray `json:"products" db:"products"`
	Categories  pq.StringArray `json:"categories" db:"categories"`
	Description string         `json:"description" db:"description"`
	Website     string         `json:"website" db:"website"`
	LogoURL     string         `json:"logo_url" db:"logo_url"`
	IsVisible   bool           `json:"is_visible" db:"is_visible"`
	IsBlocked   bool           `json:"is_blocked" db:"is_blocked"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}

// ImportHistory is one append-only record of a CSV import attempt
type ImportHistory struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Filename     string    `json:"filename" db:"filename"`
	Source       string    `json:"source" db:"source"`
	TotalRows    int       `json:"total_rows" db:"total_rows"`
	ImportedRows int       `json:"imported_rows" db:"imported_rows"`
	FailedRows   int       `json:"failed_rows" db:"failed_rows"`
	Errors       []string  `json:"errors,omitempty" db:"errors"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
