package server

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"github.com/jonathan/orphaned-data/internal/bulk"
	"github.com/jonathan/orphaned-data/internal/listing"
	"github.com/jonathan/orphaned-data/internal/logger"
	"github.com/jonathan/orphaned-data/internal/notice"
	"github.com/jonathan/orphaned-data/internal/server/middleware"
	"github.com/jonathan/orphaned-data/internal/types"
)

// renderHTML executes the named template into a buffer so a failing template
// never leaves a half-written page.
func renderHTML(w http.ResponseWriter, r *http.Request, tmpl *template.Template, log logger.Logger, status int, name string, data any) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		logger.FromContext(r.Context(), log).Error("failed to render page",
			logger.String("template", name), logger.Err(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

type errorView struct {
	Title   string
	Message string
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	renderHTML(w, r, s.tmpl, s.log, status, "error", errorView{Title: http.StatusText(status), Message: message})
}

// fail maps err onto an error page.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	message := "Something went wrong. Please try again."
	var forbidden *ErrForbidden
	var invalid *ErrValidation
	switch {
	case errors.As(err, &forbidden):
		message = "Sorry, you are not allowed to access this page."
	case errors.As(err, &invalid):
		message = "The submitted form is invalid."
	default:
		logger.FromContext(r.Context(), s.log).Error("request failed", logger.Err(err))
	}
	s.renderError(w, r, status, message)
}

// requireCapability returns ErrForbidden unless p holds capability.
func requireCapability(p middleware.Principal, capability string) error {
	if !middleware.Can(p, capability) {
		return &ErrForbidden{Capability: capability}
	}
	return nil
}

// principal returns the signed-in operator; RequireSession guarantees one.
func principal(r *http.Request) middleware.Principal {
	p, _ := middleware.GetPrincipal(r)
	return p
}

type toolsView struct {
	Title      string
	CanEdit    bool
	ListingURL string
}

// handleTools renders the tools page with the orphaned data card.
func (s *Server) handleTools(w http.ResponseWriter, r *http.Request) {
	renderHTML(w, r, s.tmpl, s.log, http.StatusOK, "tools", toolsView{
		Title:      "Tools",
		CanEdit:    middleware.Can(principal(r), listing.CapEditPosts),
		ListingURL: ListingPath,
	})
}

// handleListing renders the orphaned posts screen.
func (s *Server) handleListing(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	if err := requireCapability(p, listing.CapEditPosts); err != nil {
		s.fail(w, r, err)
		return
	}
	ctx := r.Context()

	orphans, err := s.orphans.Refresh(ctx)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.metrics.SetOrphanedTypes(len(orphans))

	view, err := s.screen.Build(ctx, listing.BuildRequest{
		Query:      listing.ParseQuery(r.URL.Query()),
		PerPage:    s.perPage(r, p.GetUserID()),
		Orphans:    orphans,
		Viewer:     listing.Viewer{UserID: p.GetUserID(), Capabilities: p.GetCapabilities()},
		Notices:    s.notices.Pop(p.GetUserID()),
		RequestURI: r.URL.RequestURI(),
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := s.screen.Render(&buf, view); err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// perPage reads the operator's page size preference; lookup failures fall back
// to the default.
func (s *Server) perPage(r *http.Request, userID int64) int {
	v, ok, err := s.store.GetUserMeta(r.Context(), userID, listing.PerPageMetaKey)
	if err != nil {
		logger.FromContext(r.Context(), s.log).Warn("failed to read page size preference", logger.Err(err))
		return listing.DefaultPerPage
	}
	return listing.ResolvePerPage(v, ok)
}

// handleListingAction handles the listing form. A bulk or row action redirects
// back to the listing; pressing Filter never runs one. A changed filter
// redirects to the filtered URL, anything else renders the listing in place.
func (s *Server) handleListingAction(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	if err := requireCapability(p, listing.CapEditPosts); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		s.fail(w, r, &ErrValidation{Field: "form", Message: err.Error()})
		return
	}

	if r.PostForm.Get(listing.FieldFilterSubmit) == "" {
		if s.applyBulkAction(w, r, p) {
			return
		}
	}

	if r.PostForm.Has(listing.FieldFilter) {
		if target, ok := listing.FilterRedirect(r.URL, r.PostForm.Get(listing.FieldFilter)); ok {
			http.Redirect(w, r, target, http.StatusSeeOther)
			return
		}
	}
	s.handleListing(w, r)
}

// applyBulkAction runs the submitted bulk or row action and reports whether a
// response was written.
func (s *Server) applyBulkAction(w http.ResponseWriter, r *http.Request, p middleware.Principal) bool {
	req, err := decodeBulkForm(r.PostForm)
	if err != nil {
		s.fail(w, r, err)
		return true
	}

	capability, ok := actionCapabilities[req.Action]
	if !ok {
		return false
	}
	if err := requireCapability(p, capability); err != nil {
		s.fail(w, r, err)
		return true
	}
	res, err := s.bulk.Process(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return true
	}
	if res.Handled {
		s.notices.Add(p.GetUserID(), notice.Notice{Kind: notice.KindSuccess, Message: res.Message})
		logger.FromContext(r.Context(), s.log).Info("bulk action processed",
			logger.String("action", req.Action),
			logger.Int("requested", len(req.PostIDs)),
			logger.Int("affected", res.Count),
			logger.Int64("user_id", p.GetUserID()),
		)
	}
	http.Redirect(w, r, r.URL.RequestURI(), http.StatusSeeOther)
	return true
}

// handleScreenOptions stores the operator's page size.
func (s *Server) handleScreenOptions(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	if err := requireCapability(p, listing.CapEditPosts); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		s.fail(w, r, &ErrValidation{Field: "form", Message: err.Error()})
		return
	}

	perPage, err := strconv.Atoi(r.PostForm.Get("per_page"))
	if err != nil {
		s.fail(w, r, &ErrValidation{Field: "per_page", Message: "not a number"})
		return
	}
	req := types.ScreenOptionsRequest{PerPage: perPage, RedirectTo: r.PostForm.Get("redirect_to")}
	if err := req.Validate(); err != nil {
		s.fail(w, r, &ErrValidation{Field: "screen_options", Message: extractValidationErrors(err)})
		return
	}

	value := strconv.Itoa(listing.ClampPerPage(req.PerPage))
	if err := s.store.UpdateUserMeta(r.Context(), p.GetUserID(), listing.PerPageMetaKey, value); err != nil {
		s.fail(w, r, err)
		return
	}
	http.Redirect(w, r, safeRedirect(req.RedirectTo, ListingPath), http.StatusSeeOther)
}

// actionCapabilities maps each bulk action onto the capability it needs.
var actionCapabilities = map[string]string{
	bulk.ActionDelete:     listing.CapDeletePosts,
	bulk.ActionChangeType: listing.CapEditPosts,
}
