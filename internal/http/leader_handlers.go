package httpapi

import (
	"fmt"
	"net/http"

	"github.com/vonm84/qah-app/internal/domain"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ListDateWindow GET /api/v1/leader/dates
func (a *API) ListDateWindow(w http.ResponseWriter, r *http.Request) {
	dates, err := a.Schedule.Window(r.Context(), a.Today())
	if err != nil {
		writeError(w, a.Logger, "ListDateWindow", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(dates))
}

// SetDateEnabled PUT /api/v1/leader/dates/{date}  body: {"enabled": bool}
func (a *API) SetDateEnabled(w http.ResponseWriter, r *http.Request) {
	date, err := domain.ParseDate(r.PathValue("date"))
	if err != nil {
		writeError(w, a.Logger, "SetDateEnabled", domain.Invalid("date", err.Error()))
		return
	}
	var payload struct {
		Enabled *bool `json:"enabled"`
	}
	if err := readBodyJSON(r, maxBodyBytes, &payload); err != nil {
		writeError(w, a.Logger, "SetDateEnabled", err)
		return
	}
	if payload.Enabled == nil {
		writeError(w, a.Logger, "SetDateEnabled", domain.Invalid("enabled", "is required"))
		return
	}
	if err := a.Schedule.SetEnabled(r.Context(), date, *payload.Enabled); err != nil {
		writeError(w, a.Logger, "SetDateEnabled", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(domain.RehearsalDate{Date: date, Enabled: *payload.Enabled}))
}

// GetRoster GET /api/v1/leader/roster（每次实时计算）
func (a *API) GetRoster(w http.ResponseWriter, r *http.Request) {
	roster, err := a.Roster.Upcoming(r.Context(), a.Today())
	if err != nil {
		writeError(w, a.Logger, "GetRoster", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(roster))
}

// GetRosterSnapshot GET /api/v1/leader/roster/snapshot（qah-roster 最近提交的快照）
func (a *API) GetRosterSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := a.Roster.Snapshot(r.Context())
	if err != nil {
		writeError(w, a.Logger, "GetRosterSnapshot", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(snap))
}

func (a *API) Breakdowns(w http.ResponseWriter, r *http.Request) {
	list, err := a.Roster.Breakdowns(r.Context())
	if err != nil {
		writeError(w, a.Logger, "Breakdowns", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(list))
}

func (a *API) SongBreakdown(w http.ResponseWriter, r *http.Request) {
	b, err := a.Roster.Breakdown(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, a.Logger, "SongBreakdown", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(b))
}

func (a *API) PartsGrid(w http.ResponseWriter, r *http.Request) {
	grid, err := a.Assignments.PartsGrid(r.Context())
	if err != nil {
		writeError(w, a.Logger, "PartsGrid", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(grid))
}

func (a *API) AttendanceChart(w http.ResponseWriter, r *http.Request) {
	chart, err := a.Attendance.Chart(r.Context(), a.Today())
	if err != nil {
		writeError(w, a.Logger, "AttendanceChart", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(chart))
}

// ExportWorkbook GET /api/v1/leader/export.xlsx
func (a *API) ExportWorkbook(w http.ResponseWriter, r *http.Request) {
	today := a.Today()
	data, err := a.Roster.Workbook(r.Context(), today)
	if err != nil {
		writeError(w, a.Logger, "ExportWorkbook", err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="qah-rehearsals-%s.xlsx"`, today))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
