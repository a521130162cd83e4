package models

import "time"

// Audit logging
type AuditLog struct {
	ID         uint      `gorm:"primaryKey"`
	ActorEmail string    // qui a fait la modification
	EntityType string    // ex: "User", "Task"
	EntityKey  string    // email ou ID de l'entité modifiée
	Action     string    // ex: "role_change", "delete"
	OldValue   string    // ancienne valeur (optionnel)
	NewValue   string    // nouvelle valeur (optionnel)
	CreatedAt  time.Time // quand
}
