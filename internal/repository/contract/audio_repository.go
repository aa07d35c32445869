package contract

import (
	"context"

	"grant-assistant-be/internal/entity"
	"grant-assistant-be/pkg/voice"
)

type AudioRepository interface {
	Save(ctx context.Context, audio voice.Audio) (string, error)
	Get(id string) (*entity.AudioClip, bool)
}
