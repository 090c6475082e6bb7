package http

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/gorilla/mux"

	"budget/internal/app"
	"budget/internal/log"
	"budget/internal/store"
)

const notFoundMessage = "That transaction no longer exists."

var templateFuncs = template.FuncMap{
	"amountClass": func(gain bool) string {
		if gain {
			return "gain"
		}
		return "expense"
	},
}

// indexPage is the data behind templates/index.html.
type indexPage struct {
	View      app.View
	Form      app.FormInput
	Alert     string
	Recovered string
}

func (s *Server) renderIndex(w http.ResponseWriter, r *http.Request, status int, page indexPage) {
	page.Recovered = s.ctrl.Recovered()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.templates.ExecuteTemplate(w, "index.html", page); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Index template execution failed",
			log.FieldError, err,
			log.FieldOperation, log.OpRender)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderIndex(w, r, http.StatusOK, indexPage{View: s.ctrl.View()})
}

// handleSubmit creates or updates a transaction. Form posts redirect back to
// the index on success; JSON posts get the saved transaction.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	in, isJSON, err := parseTransactionInput(w, r)
	if err != nil {
		if isJSON {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	res, err := s.ctrl.Submit(r.Context(), in)
	if isJSON {
		if err != nil {
			writeError(w, statusFor(err), messageFor(err))
			return
		}
		status := http.StatusCreated
		if in.Editing() {
			status = http.StatusOK
		}
		writeJSON(w, status, res.Transaction)
		return
	}

	if err != nil {
		s.renderIndex(w, r, statusFor(err), indexPage{View: res.View, Form: res.Form, Alert: messageFor(err)})
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleEdit pre-fills the form from an existing transaction.
func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	form, err := s.ctrl.Edit(mux.Vars(r)["id"])
	if err != nil {
		s.renderIndex(w, r, statusFor(err), indexPage{View: s.ctrl.View(), Alert: messageFor(err)})
		return
	}
	s.renderIndex(w, r, http.StatusOK, indexPage{View: s.ctrl.View(), Form: form})
}

func (s *Server) handleDeleteForm(w http.ResponseWriter, r *http.Request) {
	view, err := s.ctrl.Delete(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.renderIndex(w, r, statusFor(err), indexPage{View: view, Alert: messageFor(err)})
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleDeleteAPI(w http.ResponseWriter, r *http.Request) {
	if _, err := s.ctrl.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, statusFor(err), messageFor(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListAPI(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ctrl.Transactions())
}

func (s *Server) handleSummaryAPI(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ctrl.Summary().Display())
}

func (s *Server) handleChartAPI(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ctrl.View().Chart)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready.Ping(r.Context()); err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed",
				log.FieldError, err,
				log.FieldErrorType, log.ErrorTypeStorage)
			http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded")
	w.Header().Set("Retry-After", "60")
	http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
}

// statusFor maps controller errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case app.IsValidation(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrIndexOutOfRange):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// messageFor is the user-facing text for err.
func messageFor(err error) string {
	var ve *app.ValidationError
	switch {
	case errors.As(err, &ve):
		return ve.Message()
	case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrIndexOutOfRange):
		return notFoundMessage
	default:
		return "Could not save your changes. Please try again."
	}
}
