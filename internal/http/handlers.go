package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"moneytracker/internal/core"
	"moneytracker/internal/log"
)

// IdempotencyKeyHeader lets clients retry a create without duplicating it.
const IdempotencyKeyHeader = "Idempotency-Key"

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Data(map[string]any{
		"status":     "ready",
		"entries":    s.ledger.Len(),
		"requests":   s.tracer.GetMetrics(),
		"rate_limit": s.rateLimiter.GetMetrics(),
		"security":   s.detector.GetMetrics(),
	}).Write(w)
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	filter, err := core.ParseFilter(r.URL.Query().Get("filter"))
	if err != nil {
		DomainError(err).Write(w)
		return
	}
	NewJSONResponse().Data(newEntryViews(s.ledger.List(filter), s.currency)).Write(w)
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	e, err := s.ledger.Get(id)
	if err != nil {
		s.writeError(r.Context(), w, err, log.OpRead)
		return
	}
	NewJSONResponse().Data(newEntryView(e, s.currency)).Write(w)
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	in, ok := s.parseEntryInput(w, r)
	if !ok {
		return
	}

	create := func() (core.Entry, error) {
		return s.ledger.Create(r.Context(), in)
	}

	var (
		e   core.Entry
		err error
	)
	if key := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader)); key != "" && s.idempotency != nil {
		e, err = s.idempotency.Remember(key, create)
	} else {
		e, err = create()
	}
	if err != nil {
		s.writeError(r.Context(), w, err, log.OpCreate)
		return
	}

	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/entries/"+strconv.FormatInt(e.ID, 10)).
		Data(newEntryView(e, s.currency)).
		Write(w)
}

func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	in, ok := s.parseEntryInput(w, r)
	if !ok {
		return
	}

	e, err := s.ledger.Update(r.Context(), id, in)
	if err != nil {
		s.writeError(r.Context(), w, err, log.OpUpdate)
		return
	}
	NewJSONResponse().Data(newEntryView(e, s.currency)).Write(w)
}

// handleDeleteEntry answers 204 whether or not the entry existed.
func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	if _, err := s.ledger.Delete(r.Context(), id); err != nil {
		s.writeError(r.Context(), w, err, log.OpDelete)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTotals(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Data(newTotalsView(s.ledger.Totals(), s.currency)).Write(w)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("kind")
	if strings.TrimSpace(raw) == "" {
		NewJSONResponse().Data(map[string][]string{
			core.Income.String():  core.CategoriesFor(core.Income),
			core.Expense.String(): core.CategoriesFor(core.Expense),
		}).Write(w)
		return
	}

	kind, err := core.ParseKind(raw)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	NewJSONResponse().Data(core.CategoriesFor(kind)).Write(w)
}

// parseEntryInput writes the error response itself and reports whether the
// handler should continue.
func (s *Server) parseEntryInput(w http.ResponseWriter, r *http.Request) (core.EntryInput, bool) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			ErrorResponse(http.StatusRequestEntityTooLarge, "request body too large").Write(w)
			return core.EntryInput{}, false
		}
		BadRequestError(err.Error()).Write(w)
		return core.EntryInput{}, false
	}
	in, err := p.EntryInput()
	if err != nil {
		DomainError(err).Write(w)
		return core.EntryInput{}, false
	}
	return in, true
}

func (s *Server) writeError(ctx context.Context, w http.ResponseWriter, err error, op string) {
	if errorStatus(err) == http.StatusInternalServerError {
		log.NewStructuredLogger(log.FromContext(ctx)).LogError(ctx, "Ledger operation failed", err, op, nil)
	}
	DomainError(err).Write(w)
}
