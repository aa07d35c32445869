package memory

import (
	"context"
	"fmt"
	"time"

	"grant-assistant-be/internal/entity"
	"grant-assistant-be/internal/repository/contract"
	"grant-assistant-be/pkg/voice"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// AudioRepository holds synthesized speech until clients have fetched it.
type AudioRepository struct {
	cache *cache.Cache
}

var (
	_ contract.AudioRepository = &AudioRepository{}
	_ voice.AudioStore         = &AudioRepository{}
)

func NewAudioRepository(ttl time.Duration) *AudioRepository {
	return &AudioRepository{cache: cache.New(ttl, ttl)}
}

func (r *AudioRepository) Save(_ context.Context, audio voice.Audio) (string, error) {
	if len(audio.Data) == 0 {
		return "", fmt.Errorf("refusing to store empty audio")
	}

	clip := &entity.AudioClip{
		Id:          uuid.NewString(),
		ContentType: audio.ContentType,
		Data:        audio.Data,
		CreatedAt:   time.Now(),
	}
	r.cache.Set(clip.Id, clip, cache.DefaultExpiration)
	return clip.Id, nil
}

func (r *AudioRepository) Get(id string) (*entity.AudioClip, bool) {
	if x, found := r.cache.Get(id); found {
		return x.(*entity.AudioClip), true
	}
	return nil, false
}
