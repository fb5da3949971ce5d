package api

import (
	"errors"
	"net/http"

	"github.com/framereel/framereel-agent/internal/editor"
	"github.com/framereel/framereel-agent/internal/history"
	"github.com/framereel/framereel-agent/internal/studio"
)

type errorMapping struct {
	err    error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{editor.ErrEmptySelection, http.StatusUnprocessableEntity, "EMPTY_SELECTION"},
	{editor.ErrEmptyClipboard, http.StatusUnprocessableEntity, "EMPTY_CLIPBOARD"},
	{editor.ErrInvalidDuration, http.StatusUnprocessableEntity, "INVALID_DURATION"},
	{editor.ErrIndexOutOfRange, http.StatusUnprocessableEntity, "INDEX_OUT_OF_RANGE"},
	{editor.ErrNothingToUndo, http.StatusUnprocessableEntity, "NOTHING_TO_UNDO"},
	{editor.ErrNoMove, http.StatusUnprocessableEntity, "NO_MOVE"},
	{editor.ErrNoItems, http.StatusUnprocessableEntity, "NO_FRAMES"},
	{editor.ErrNoTarget, http.StatusUnprocessableEntity, "NO_TARGET"},
	{studio.ErrUnknownCommand, http.StatusBadRequest, "UNKNOWN_COMMAND"},
	{studio.ErrUnknownShortcut, http.StatusBadRequest, "UNKNOWN_SHORTCUT"},
	{studio.ErrBusy, http.StatusConflict, "BUSY"},
	{studio.ErrNoEncode, http.StatusConflict, "NO_ENCODE"},
	{studio.ErrJobNotFound, http.StatusNotFound, "NOT_FOUND"},
	{studio.ErrClosed, http.StatusServiceUnavailable, "SHUTTING_DOWN"},
	{history.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
	{history.ErrEmpty, http.StatusUnprocessableEntity, "EMPTY_ARTIFACT"},
	{history.ErrTooLarge, http.StatusRequestEntityTooLarge, "TOO_LARGE"},
}

// writeDomainError maps known failures to a status and code; anything else
// is a 500 with a generic message.
func writeDomainError(w http.ResponseWriter, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			WriteError(w, m.status, err.Error(), m.code)
			return
		}
	}
	WriteError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
}
