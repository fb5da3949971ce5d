package api

import (
	"net/http"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"

	"github.com/framereel/framereel-agent/internal/export"
	"github.com/framereel/framereel-agent/internal/playback"
)

func listHistoryHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := cfg.History.List(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list history", "INTERNAL_ERROR")
			return
		}
		stats, err := cfg.History.Stats(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to read history stats", "INTERNAL_ERROR")
			return
		}

		limits := cfg.History.Limits()
		resp := HistoryResponse{
			Entries:    make([]EntryResponse, len(entries)),
			Count:      stats.Count,
			TotalBytes: stats.TotalBytes,
			TotalHuman: humanize.IBytes(uint64(stats.TotalBytes)),
			MaxItems:   limits.MaxItems,
			MaxBytes:   limits.MaxBytes,
		}
		for i, e := range entries {
			resp.Entries[i] = EntryToResponse(e)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func artifactHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		entry, data, err := cfg.History.Data(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		blob := playback.Blob{
			Name:        entry.FileName,
			ContentType: "image/gif",
			Data:        data,
			ETag:        entry.ID,
			Download:    r.URL.Query().Get("download") == "1",
		}
		if err := cfg.PlaybackServer.ServeBlob(w, r, blob); err != nil {
			cfg.Logger.Error("artifact playback error", "error", err, "history_id", id)
		}
	}
}

func deleteHistoryHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := cfg.History.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func clearHistoryHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := cfg.History.Clear(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to clear history", "INTERNAL_ERROR")
			return
		}
		WriteJSON(w, http.StatusOK, map[string]int{"deleted": n})
	}
}

func exportHistoryHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req export.ExportRequest
		if err := decodeOptional(r, &req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.OutputDir == "" && cfg.ExportDir != "" {
			req.OutputDir = cfg.ExportDir
			if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
				WriteError(w, http.StatusInternalServerError, "failed to create export directory", "INTERNAL_ERROR")
				return
			}
		}

		if err := export.ValidateOutputDir(req.OutputDir); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}

		entry, data, err := cfg.History.Data(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeDomainError(w, err)
			return
		}

		name := export.GIFFileName(req.FileName, entry.FileName)
		outputPath, err := export.WriteArtifact(req.OutputDir, name, data, req.Overwrite)
		if err != nil {
			cfg.Logger.Error("export failed", "error", err, "history_id", entry.ID)
			WriteError(w, http.StatusInternalServerError, "failed to write export file", "INTERNAL_ERROR")
			return
		}

		WriteJSON(w, http.StatusOK, export.ExportResponse{
			Status:     "ok",
			OutputPath: outputPath,
			Size:       int64(len(data)),
		})
	}
}
