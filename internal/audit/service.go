package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"canteen-backend/internal/models"

	"gorm.io/gorm"
)

type actorKey struct{}

// Actor identifies who performs a workflow step.
type Actor struct {
	UserID uint
	Role   models.UserRole
}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFrom returns the actor stored in ctx; the zero Actor means "system".
func ActorFrom(ctx context.Context) Actor {
	a, _ := ctx.Value(actorKey{}).(Actor)
	return a
}

type LogOptions struct {
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

// WriteLog records one audit entry inside tx, attributed to the actor in ctx.
func WriteLog(ctx context.Context, tx *gorm.DB, opts LogOptions) error {
	beforeStr := "null"
	afterStr := "null"

	if opts.Before != nil {
		if b, err := json.Marshal(opts.Before); err == nil {
			beforeStr = string(b)
		}
	}
	if opts.After != nil {
		if b, err := json.Marshal(opts.After); err == nil {
			afterStr = string(b)
		}
	}

	actor := ActorFrom(ctx)
	entry := models.AuditLog{
		UserID:      actor.UserID,
		UserRole:    actor.Role,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  beforeStr,
		AfterData:   afterStr,
	}

	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}
	return nil
}
