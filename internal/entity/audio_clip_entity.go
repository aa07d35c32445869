package entity

import "time"

type AudioClip struct {
	Id          string
	ContentType string
	Data        []byte
	CreatedAt   time.Time
}
