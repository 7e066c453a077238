package httpapi

import (
	"net/http"

	"github.com/vonm84/qah-app/internal/service"
)

// ListRehearsals GET /api/v1/rehearsals
// 生成缺失日期后返回今天及以后的启用日期
func (a *API) ListRehearsals(w http.ResponseWriter, r *http.Request) {
	dates, err := a.Schedule.Upcoming(r.Context(), a.Today())
	if err != nil {
		writeError(w, a.Logger, "ListRehearsals", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(dates))
}

func (a *API) MemberAttendance(w http.ResponseWriter, r *http.Request) {
	list, err := a.Attendance.ForMember(r.Context(), r.PathValue("name"), a.Today())
	if err != nil {
		writeError(w, a.Logger, "MemberAttendance", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(list))
}

// UpsertAttendance PUT /api/v1/attendance
// member_name defaults to the caller.
func (a *API) UpsertAttendance(w http.ResponseWriter, r *http.Request) {
	var req service.UpsertAttendanceRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeError(w, a.Logger, "UpsertAttendance", err)
		return
	}
	if req.MemberName == "" {
		req.MemberName = callerName(r)
	}
	if err := a.actingFor(r, req.MemberName); err != nil {
		writeError(w, a.Logger, "UpsertAttendance", err)
		return
	}
	rec, err := a.Attendance.Upsert(r.Context(), req)
	if err != nil {
		writeError(w, a.Logger, "UpsertAttendance", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(rec))
}

func (a *API) MemberAssignments(w http.ResponseWriter, r *http.Request) {
	list, err := a.Assignments.ForMember(r.Context(), r.PathValue("name"))
	if err != nil {
		writeError(w, a.Logger, "MemberAssignments", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(list))
}

// UpsertAssignment PUT /api/v1/assignments
func (a *API) UpsertAssignment(w http.ResponseWriter, r *http.Request) {
	var req service.UpsertAssignmentRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeError(w, a.Logger, "UpsertAssignment", err)
		return
	}
	if req.MemberName == "" {
		req.MemberName = callerName(r)
	}
	if err := a.actingFor(r, req.MemberName); err != nil {
		writeError(w, a.Logger, "UpsertAssignment", err)
		return
	}
	rec, err := a.Assignments.Upsert(r.Context(), req)
	if err != nil {
		writeError(w, a.Logger, "UpsertAssignment", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(rec))
}
