package httpapi

import (
	"net/http"
)

func (a *API) ListSongs(w http.ResponseWriter, r *http.Request) {
	songs, err := a.Songs.List(r.Context())
	if err != nil {
		writeError(w, a.Logger, "ListSongs", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(songs))
}

// ExportSongs GET /api/v1/songs/export (text/csv, no envelope)
func (a *API) ExportSongs(w http.ResponseWriter, r *http.Request) {
	csv, err := a.Songs.Export(r.Context())
	if err != nil {
		writeError(w, a.Logger, "ExportSongs", err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="songs.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(csv))
}

// ImportSongs PUT /api/v1/leader/songs (body: CSV)
func (a *API) ImportSongs(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r, maxBodyBytes)
	if err != nil {
		writeError(w, a.Logger, "ImportSongs", err)
		return
	}
	songs, err := a.Songs.Import(r.Context(), string(body))
	if err != nil {
		writeError(w, a.Logger, "ImportSongs", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(songs))
}

func (a *API) DeleteSong(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := a.Songs.Delete(r.Context(), id); err != nil {
		writeError(w, a.Logger, "DeleteSong", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"deleted": id}))
}
