package main

import (
	"context"
	"net/http"
	"strings"

	"github.com/Simplici0/nebula-roi/internal/lead"
	"github.com/Simplici0/nebula-roi/internal/roi"
)

type leadLister interface {
	List(ctx context.Context, query string) ([]lead.Lead, error)
}

type loginViewData struct {
	baseViewData
}

type leadListItem struct {
	CreatedAt string
	Email     string
	Mode      string
	Savings   string
}

type leadsViewData struct {
	baseViewData
	Query string
	Leads []leadListItem
}

func (s *server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	if isAuthenticated(r, s.auth) {
		http.Redirect(w, r, "/admin/leads", http.StatusSeeOther)
		return
	}
	s.renderTemplate(w, "login.html", loginViewData{})
}

func (s *server) handleLoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	email := r.FormValue("email")
	password := r.FormValue("password")
	valid, err := s.auth.validateCredentials(email, password)
	if err != nil {
		s.logger.WithError(err).Error("failed to validate credentials")
		http.Error(w, "authentication error", http.StatusInternalServerError)
		return
	}
	if !valid {
		w.WriteHeader(http.StatusUnauthorized)
		s.renderTemplate(w, "login.html", loginViewData{baseViewData: baseViewData{ErrorMessage: "Invalid credentials. Please try again."}})
		return
	}

	s.auth.setSessionCookie(w, email)
	http.Redirect(w, r, "/admin/leads", http.StatusSeeOther)
}

func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *server) handleAdminLeads(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	leads, err := s.leadList.List(r.Context(), query)
	if err != nil {
		s.logger.WithError(err).Error("failed to load leads")
		http.Error(w, "failed to load leads", http.StatusInternalServerError)
		return
	}

	items := make([]leadListItem, 0, len(leads))
	for _, l := range leads {
		items = append(items, leadListItem{
			CreatedAt: l.CreatedAt.Format("2006-01-02 15:04"),
			Email:     l.Email,
			Mode:      string(l.Mode),
			Savings:   roi.Money(l.Savings),
		})
	}

	s.renderTemplate(w, "admin_leads.html", leadsViewData{
		baseViewData: baseViewData{Admin: true},
		Query:        query,
		Leads:        items,
	})
}
