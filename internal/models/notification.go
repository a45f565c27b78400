package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Notification хранит событие для пользователя (новая заявка, решение
// по котировке). Доставка — забота коллаборатора, ядро только пишет строку.
type Notification struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	UserID    uuid.UUID       `db:"user_id" json:"user_id"`
	Event     string          `db:"event" json:"event"`
	Payload   json.RawMessage `db:"payload" json:"payload"`
	IsRead    bool            `db:"is_read" json:"is_read"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}
