// server/internal/models/asset.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Asset states as they are persisted and shown to users.
const (
	StateGood          = "Bon état"
	StateDefective     = "Défectueux"
	StateDepreciated   = "Déprécié"
	StateInMaintenance = "En maintenance"
	StateRetired       = "Retiré"
)

// StateOrder is the display order used when grouping by state.
var StateOrder = []string{StateGood, StateDefective, StateInMaintenance, StateDepreciated, StateRetired}

// Asset is a tracked physical item of company property.
type Asset struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Code             string             `bson:"code" json:"code"` // e.g. "2024-EDC-AA-0001"
	Name             string             `bson:"name" json:"name"`
	Category         string             `bson:"category" json:"category"`
	Location         string             `bson:"location" json:"location"`
	AcquisitionYear  string             `bson:"acquisitionYear" json:"acquisitionYear"`
	RegistrationDate string             `bson:"registrationDate" json:"registrationDate"` // YYYY-MM-DD
	State            string             `bson:"state" json:"state"`
	Holder           string             `bson:"holder" json:"holder"`
	HolderPresence   string             `bson:"holderPresence" json:"holderPresence"`
	Door             string             `bson:"door" json:"door"`
	Description      string             `bson:"description" json:"description"`
	Observation      string             `bson:"observation" json:"observation"`
	PhotoURL         string             `bson:"photoUrl,omitempty" json:"photoUrl"`
	CustomAttributes map[string]string  `bson:"customAttributes" json:"customAttributes"`
	Amount           *float64           `bson:"amount,omitempty" json:"amount,omitempty"`
	Unit             string             `bson:"unit,omitempty" json:"unit,omitempty"`
	IsArchived       bool               `bson:"isArchived" json:"isArchived"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}
