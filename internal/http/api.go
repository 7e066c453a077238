package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vonm84/qah-app/internal/domain"
	"github.com/vonm84/qah-app/internal/service"
)

// HeaderMemberName carries the caller's member name. The session layer in
// front of the API is trusted to set it.
const HeaderMemberName = "X-Member-Name"

// API 聚合所有 Handler 依赖
type API struct {
	Members     service.MemberService
	Schedule    service.ScheduleService
	Attendance  service.AttendanceService
	Assignments service.AssignmentService
	Songs       service.SongService
	Roster      service.RosterService

	// Today returns the current date in the choir's time zone.
	Today  func() domain.Date
	Logger *zap.Logger
}

// TodayIn returns a clock that reads the date in loc.
func TodayIn(loc *time.Location) func() domain.Date {
	return func() domain.Date { return domain.DateOf(time.Now().In(loc)) }
}

func callerName(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(HeaderMemberName))
}

// requireLeader 仅允许管理员（领队）访问
func (a *API) requireLeader(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := callerName(r)
		if !a.Members.IsAdmin(caller) {
			a.Logger.Debug("Leader route refused",
				zap.String("path", r.URL.Path),
				zap.String("caller", caller),
			)
			writeJSON(w, http.StatusForbidden, Fail("leader only"))
			return
		}
		next(w, r)
	}
}

// actingFor checks the caller may act on member's behalf: themselves, or any
// member when the caller is the leader.
func (a *API) actingFor(r *http.Request, member string) error {
	caller := callerName(r)
	if caller == "" {
		return fmt.Errorf("missing %s header: %w", HeaderMemberName, domain.ErrForbidden)
	}
	if caller == member || a.Members.IsAdmin(caller) {
		return nil
	}
	return fmt.Errorf("%s cannot act for %s: %w", caller, member, domain.ErrForbidden)
}
