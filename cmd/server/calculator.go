package main

import (
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Simplici0/nebula-roi/internal/lead"
	"github.com/Simplici0/nebula-roi/internal/report"
	"github.com/Simplici0/nebula-roi/internal/roi"
	"github.com/Simplici0/nebula-roi/internal/session"
)

const calcCookieName = "nebula_roi_calc"

type inputField struct {
	Name        string
	Placeholder string
}

var inputFields = []inputField{
	{Name: roi.FieldSanitationCost, Placeholder: "Monthly Sanitation Cost"},
	{Name: roi.FieldOutbreaksPerYear, Placeholder: "Outbreaks Per Year"},
	{Name: roi.FieldOutbreakCost, Placeholder: "Cost Per Outbreak"},
	{Name: roi.FieldSickDays, Placeholder: "Sick Days Per Year"},
	{Name: roi.FieldWorkersComp, Placeholder: "Cost Per Sick Day"},
	{Name: roi.FieldCustomCost, Placeholder: "Other Annual Cost"},
}

type rateOption struct {
	Value    string
	Label    string
	Selected bool
}

type calculatorViewData struct {
	baseViewData
	State       roi.InputState
	Fields      []inputField
	RateOptions []rateOption
	Summary     roi.Summary
	Chart       roi.Chart
	IsPurchase  bool
}

type reportViewData struct {
	baseViewData
	Body template.HTML
}

func (s *server) handleCalculator(w http.ResponseWriter, r *http.Request) {
	_, state, ok := s.loadState(w, r)
	if !ok {
		return
	}

	result, flags := roi.Compute(state)
	s.renderTemplate(w, "calculator.html", calculatorViewData{
		baseViewData: baseViewData{
			ErrorMessage:   r.URL.Query().Get("error"),
			SuccessMessage: r.URL.Query().Get("success"),
		},
		State:       state,
		Fields:      inputFields,
		RateOptions: rateOptions(state.SavingsRate),
		Summary:     roi.Summarize(state, result, flags),
		Chart:       roi.ChartFor(result, state.Mode),
		IsPurchase:  state.Mode == roi.ModePurchase,
	})
}

func (s *server) handleCalcSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	id, state, ok := s.loadState(w, r)
	if !ok {
		return
	}

	if !s.saveState(w, r, id, applyForm(state, r.PostForm)) {
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *server) handleModeSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	mode, err := roi.ParseMode(r.FormValue("mode"))
	if err != nil {
		http.Error(w, "invalid mode", http.StatusBadRequest)
		return
	}

	id, state, ok := s.loadState(w, r)
	if !ok {
		return
	}

	if !s.saveState(w, r, id, state.SetMode(mode)) {
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *server) handleReset(w http.ResponseWriter, r *http.Request) {
	id, _, ok := s.loadState(w, r)
	if !ok {
		return
	}

	if !s.saveState(w, r, id, roi.Reset()) {
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *server) handleLeadSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	id, state, ok := s.loadState(w, r)
	if !ok {
		return
	}
	if _, present := r.PostForm[roi.FieldEmail]; present {
		state = state.Update(roi.FieldEmail, r.PostForm.Get(roi.FieldEmail))
		if !s.saveState(w, r, id, state) {
			return
		}
	}

	result, _ := roi.Compute(state)
	l, err := lead.New(state, result, s.now())
	if errors.Is(err, lead.ErrEmptyEmail) {
		http.Redirect(w, r, "/?error="+url.QueryEscape("Please enter your email."), http.StatusSeeOther)
		return
	}

	if err := s.leads.Submit(r.Context(), l); err != nil {
		s.logger.WithError(err).Error("failed to capture lead")
		http.Error(w, "failed to submit request", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/?success="+url.QueryEscape("Thanks! We will call you back soon."), http.StatusSeeOther)
}

func (s *server) handleReport(w http.ResponseWriter, r *http.Request) {
	_, state, ok := s.loadState(w, r)
	if !ok {
		return
	}

	body, err := report.HTML(report.Markdown(state))
	if err != nil {
		s.logger.WithError(err).Error("failed to render report")
		http.Error(w, "failed to render report", http.StatusInternalServerError)
		return
	}

	// goldmark escapes raw HTML by default, so the fragment is safe to embed.
	s.renderTemplate(w, "report.html", reportViewData{Body: template.HTML(body)})
}

func (s *server) handleReportMarkdown(w http.ResponseWriter, r *http.Request) {
	_, state, ok := s.loadState(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="roi-summary.md"`)
	_, _ = w.Write([]byte(report.Markdown(state)))
}

// applyForm runs Update for every calculator field present in form.
func applyForm(state roi.InputState, form url.Values) roi.InputState {
	for _, field := range roi.Fields {
		if _, ok := form[field]; !ok {
			continue
		}
		state = state.Update(field, form.Get(field))
	}
	return state
}

func rateOptions(selected float64) []rateOption {
	options := make([]rateOption, 0, len(roi.SavingsRates))
	for _, rate := range roi.SavingsRates {
		options = append(options, rateOption{
			Value:    strconv.FormatFloat(rate, 'f', -1, 64),
			Label:    strconv.Itoa(int(rate*100+0.5)) + "% Savings",
			Selected: rate == selected,
		})
	}
	return options
}

// loadState returns the session id and InputState of the caller, starting a
// new session with default values when there is none. It writes an error
// response and returns false when the store fails.
func (s *server) loadState(w http.ResponseWriter, r *http.Request) (string, roi.InputState, bool) {
	if cookie, err := r.Cookie(calcCookieName); err == nil && session.ValidID(cookie.Value) {
		state, err := s.sessions.Get(r.Context(), cookie.Value)
		if err == nil {
			return cookie.Value, state, true
		}
		if !errors.Is(err, session.ErrNotFound) {
			s.logger.WithError(err).Error("failed to load calculator session")
			http.Error(w, "failed to load calculator", http.StatusInternalServerError)
			return "", roi.InputState{}, false
		}
	}

	id := session.NewID()
	state := roi.DefaultInputState()
	if err := s.sessions.Save(r.Context(), id, state); err != nil {
		s.logger.WithError(err).Error("failed to start calculator session")
		http.Error(w, "failed to load calculator", http.StatusInternalServerError)
		return "", roi.InputState{}, false
	}

	http.SetCookie(w, &http.Cookie{
		Name:     calcCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id, state, true
}

func (s *server) saveState(w http.ResponseWriter, r *http.Request, id string, state roi.InputState) bool {
	if err := s.sessions.Save(r.Context(), id, state); err != nil {
		s.logger.WithError(err).Error("failed to save calculator session")
		http.Error(w, "failed to save calculator", http.StatusInternalServerError)
		return false
	}
	return true
}
