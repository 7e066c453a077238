package httpapi

import (
	"net/http"

	"github.com/vonm84/qah-app/internal/birthday"
	"github.com/vonm84/qah-app/internal/domain"
)

// ListMembers GET /api/v1/members[?include_admin=true]
func (a *API) ListMembers(w http.ResponseWriter, r *http.Request) {
	includeAdmin := r.URL.Query().Get("include_admin") == "true"
	list, err := a.Members.List(r.Context(), includeAdmin)
	if err != nil {
		writeError(w, a.Logger, "ListMembers", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(list))
}

// RegisterMember POST /api/v1/members
// 已存在的成员直接返回原资料（登录流程）
func (a *API) RegisterMember(w http.ResponseWriter, r *http.Request) {
	var payload domain.Member
	if err := readBodyJSON(r, maxBodyBytes, &payload); err != nil {
		writeError(w, a.Logger, "RegisterMember", err)
		return
	}
	m, created, err := a.Members.Register(r.Context(), payload)
	if err != nil {
		writeError(w, a.Logger, "RegisterMember", err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, Ok(m))
}

func (a *API) GetMember(w http.ResponseWriter, r *http.Request) {
	m, err := a.Members.Get(r.Context(), r.PathValue("name"))
	if err != nil {
		writeError(w, a.Logger, "GetMember", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(m))
}

// UpdateMember PUT /api/v1/members/{name}
func (a *API) UpdateMember(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if err := a.actingFor(r, name); err != nil {
		writeError(w, a.Logger, "UpdateMember", err)
		return
	}
	var payload domain.Member
	if err := readBodyJSON(r, maxBodyBytes, &payload); err != nil {
		writeError(w, a.Logger, "UpdateMember", err)
		return
	}
	payload.Name = name
	m, err := a.Members.UpdateProfile(r.Context(), payload)
	if err != nil {
		writeError(w, a.Logger, "UpdateMember", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(m))
}

func (a *API) DeleteMember(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if err := a.actingFor(r, name); err != nil {
		writeError(w, a.Logger, "DeleteMember", err)
		return
	}
	if err := a.Members.Delete(r.Context(), name); err != nil {
		writeError(w, a.Logger, "DeleteMember", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"deleted": name}))
}

type birthdayItem struct {
	birthday.Entry
	LabelText string `json:"label_text,omitempty"`
}

// ListBirthdays GET /api/v1/birthdays[?lang=pt]
func (a *API) ListBirthdays(w http.ResponseWriter, r *http.Request) {
	lang := domain.Language(r.URL.Query().Get("lang"))
	if !lang.Valid() {
		lang = domain.LanguageEN
	}
	entries, err := a.Members.Birthdays(r.Context(), a.Today())
	if err != nil {
		writeError(w, a.Logger, "ListBirthdays", err)
		return
	}
	items := make([]birthdayItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, birthdayItem{Entry: e, LabelText: e.Label.Text(lang)})
	}
	writeJSON(w, http.StatusOK, Ok(items))
}

func (a *API) ListReadinessLevels(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, Ok(domain.ReadinessLevels()))
}
