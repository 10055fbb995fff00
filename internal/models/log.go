package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Audit actions.
const (
	ActionCreate = "CREATE"
	ActionUpdate = "UPDATE"
	ActionDelete = "DELETE"
	ActionConfig = "CONFIG"
)

// FieldChange is one before/after pair captured on edit.
type FieldChange struct {
	Field  string `bson:"field" json:"field"`
	Before any    `bson:"before" json:"before"`
	After  any    `bson:"after" json:"after"`
}

// Log is an immutable audit record.
type Log struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Timestamp   time.Time          `bson:"timestamp" json:"timestamp"`
	UserID      string             `bson:"userId" json:"userId"`
	UserEmail   string             `bson:"userEmail" json:"userEmail"`
	UserName    string             `bson:"userName" json:"userName"`
	Action      string             `bson:"action" json:"action"`
	Description string             `bson:"description" json:"description"`
	TargetCode  string             `bson:"targetCode" json:"targetCode"`
	Changes     []FieldChange      `bson:"changes,omitempty" json:"changes,omitempty"`
}
