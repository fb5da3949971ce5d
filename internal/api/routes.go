package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/framereel/framereel-agent/internal/ingest"
	"github.com/framereel/framereel-agent/internal/playback"
	"github.com/framereel/framereel-agent/internal/studio"
)

const (
	uploadField     = "files"
	uploadMemoryMax = 32 << 20
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(LoopbackGuard())
	r.Use(CORSAllowlist())

	r.Get("/health", healthHandler(cfg))

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Repository, cfg.Logger))

		r.Get("/state", stateHandler(cfg))
		r.Get("/events", eventsHandler(cfg))

		r.Post("/frames", importFramesHandler(cfg))
		r.Delete("/frames", resetFramesHandler(cfg))
		r.Get("/frames/{index}/image", frameImageHandler(cfg))

		r.Post("/commands", commandHandler(cfg))
		r.Post("/shortcuts", shortcutHandler(cfg))

		r.Post("/encode", startEncodeHandler(cfg))
		r.Delete("/encode", cancelEncodeHandler(cfg))
		r.Get("/encode/jobs", listJobsHandler(cfg))
		r.Get("/encode/jobs/{id}", getJobHandler(cfg))

		r.Get("/history", listHistoryHandler(cfg))
		r.Delete("/history", clearHistoryHandler(cfg))
		r.Get("/history/{id}/artifact", artifactHandler(cfg))
		r.Delete("/history/{id}", deleteHistoryHandler(cfg))
		r.Post("/history/{id}/export", exportHistoryHandler(cfg))
	})

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := int64(time.Since(cfg.StartTime).Seconds())
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Version: cfg.Version,
			UptimeS: uptime,
		})
	}
}

func stateHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, cfg.Studio.State())
	}
}

func importFramesHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(uploadMemoryMax); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid multipart body", "BAD_REQUEST")
			return
		}
		defer r.MultipartForm.RemoveAll()

		mode := r.FormValue("mode")
		switch mode {
		case "":
			mode = "replace"
		case "replace", "append":
		default:
			WriteError(w, http.StatusBadRequest, "mode must be replace or append", "BAD_REQUEST")
			return
		}

		res, err := ingest.FromMultipart(r.MultipartForm, uploadField)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}

		n, err := cfg.Studio.Import(res, mode == "append")
		if err != nil {
			writeDomainError(w, err)
			return
		}

		WriteJSON(w, http.StatusOK, ImportResponse{
			Mode:     mode,
			Imported: n,
			Skipped:  res.Skipped,
			Frames:   len(cfg.Studio.State().Frames),
		})
	}
}

func resetFramesHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := cfg.Studio.Reset(); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func frameImageHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, err := strconv.Atoi(chi.URLParam(r, "index"))
		if err != nil {
			WriteError(w, http.StatusBadRequest, "frame index must be an integer", "BAD_REQUEST")
			return
		}

		item, ok := cfg.Studio.Frame(index)
		if !ok {
			WriteError(w, http.StatusNotFound, "frame not found", "NOT_FOUND")
			return
		}

		// Frame items are immutable, so the ID is a stable ETag.
		blob := playback.Blob{Name: item.Name, ContentType: item.MIME, Data: item.Data, ETag: item.ID}
		if err := cfg.PlaybackServer.ServeBlob(w, r, blob); err != nil {
			cfg.Logger.Error("frame playback error", "error", err, "index", index)
		}
	}
}

func commandHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var cmd studio.Command
		if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if cmd.Name == "" {
			WriteError(w, http.StatusBadRequest, "name is required", "BAD_REQUEST")
			return
		}

		res, err := cfg.Studio.Dispatch(cmd)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, CommandResponse{Result: res, Revision: cfg.Studio.State().Revision})
	}
}

func shortcutHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ShortcutRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		res, err := cfg.Studio.Shortcut(req.Key)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, CommandResponse{Result: res, Revision: cfg.Studio.State().Revision})
	}
}

func decodeOptional(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
