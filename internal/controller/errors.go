package controller

import (
	"errors"

	"grant-assistant-be/internal/pkg/serverutils"
	"grant-assistant-be/internal/service"
)

// serviceError maps service sentinels onto HTTP errors; anything else is a 500.
func serviceError(err error) error {
	switch {
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrSectionNotFound),
		errors.Is(err, service.ErrEntryNotFound),
		errors.Is(err, service.ErrAudioNotFound):
		return serverutils.NotFound(err.Error())
	case errors.Is(err, service.ErrSectionLocked):
		return serverutils.Forbidden(err.Error())
	case errors.Is(err, service.ErrUnsupportedDocument):
		return serverutils.UnsupportedMediaType(err.Error())
	default:
		return err
	}
}
