package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

// Router 使用标准库 http.ServeMux（Go 1.22 起支持 "METHOD /path/{param}" 模式）
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterRoutes 注册全部 /api/v1 路由
func (r *Router) RegisterRoutes(a *API) {
	r.Handle("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, Ok("healthy"))
	})

	// member screens
	r.Handle("GET /api/v1/rehearsals", a.ListRehearsals)
	r.Handle("GET /api/v1/readiness-levels", a.ListReadinessLevels)
	r.Handle("GET /api/v1/birthdays", a.ListBirthdays)

	r.Handle("GET /api/v1/members", a.ListMembers)
	r.Handle("POST /api/v1/members", a.RegisterMember)
	r.Handle("GET /api/v1/members/{name}", a.GetMember)
	r.Handle("PUT /api/v1/members/{name}", a.UpdateMember)
	r.Handle("DELETE /api/v1/members/{name}", a.DeleteMember)
	r.Handle("GET /api/v1/members/{name}/attendance", a.MemberAttendance)
	r.Handle("GET /api/v1/members/{name}/assignments", a.MemberAssignments)

	r.Handle("PUT /api/v1/attendance", a.UpsertAttendance)
	r.Handle("PUT /api/v1/assignments", a.UpsertAssignment)

	r.Handle("GET /api/v1/songs", a.ListSongs)
	r.Handle("GET /api/v1/songs/export", a.ExportSongs)

	// leader
	r.Handle("PUT /api/v1/leader/songs", a.requireLeader(a.ImportSongs))
	r.Handle("DELETE /api/v1/leader/songs/{id}", a.requireLeader(a.DeleteSong))
	r.Handle("GET /api/v1/leader/songs/{id}/breakdown", a.requireLeader(a.SongBreakdown))
	r.Handle("GET /api/v1/leader/breakdown", a.requireLeader(a.Breakdowns))

	r.Handle("GET /api/v1/leader/dates", a.requireLeader(a.ListDateWindow))
	r.Handle("PUT /api/v1/leader/dates/{date}", a.requireLeader(a.SetDateEnabled))

	r.Handle("GET /api/v1/leader/roster", a.requireLeader(a.GetRoster))
	r.Handle("GET /api/v1/leader/roster/snapshot", a.requireLeader(a.GetRosterSnapshot))
	r.Handle("GET /api/v1/leader/parts-grid", a.requireLeader(a.PartsGrid))
	r.Handle("GET /api/v1/leader/attendance-chart", a.requireLeader(a.AttendanceChart))
	r.Handle("GET /api/v1/leader/export.xlsx", a.requireLeader(a.ExportWorkbook))
}
