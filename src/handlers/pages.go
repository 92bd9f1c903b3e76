package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"girlmath-server/src/middleware"
	"girlmath-server/src/models"
	"girlmath-server/src/util"
	"girlmath-server/src/views"

	"github.com/go-chi/chi/v5"
)

// Pages holds what every handler needs to answer with HTML: the renderer,
// the session cookies that carry identity and flash messages, and the
// read-only flag shown in the layout.
type Pages struct {
	views    *views.Renderer
	sessions *util.Sessions
	readOnly bool
}

func NewPages(renderer *views.Renderer, sessions *util.Sessions, readOnly bool) *Pages {
	return &Pages{views: renderer, sessions: sessions, readOnly: readOnly}
}

type errorView struct {
	Status  int
	Message string
}

func (p *Pages) render(w http.ResponseWriter, r *http.Request, page, title string, data any) {
	p.renderStatus(w, r, http.StatusOK, page, title, data)
}

func (p *Pages) renderStatus(w http.ResponseWriter, r *http.Request, status int, page, title string, data any) {
	err := p.views.Render(w, status, page, views.Page{
		Title:     title,
		Identity:  middleware.IdentityFromContext(r.Context()),
		Flash:     p.sessions.PopFlash(w, r),
		CSRFToken: middleware.CSRFToken(r.Context()),
		ReadOnly:  p.readOnly,
		Data:      data,
	})
	if err != nil {
		log.Printf("ERROR: Failed to render %s: %v", page, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// redirect sets a flash message and sends the browser to target.
func (p *Pages) redirect(w http.ResponseWriter, r *http.Request, target, kind, message string) {
	p.sessions.SetFlash(w, kind, message)
	http.Redirect(w, r, target, http.StatusFound)
}

// fail answers a failed operation. Domain errors become a flash message on
// target; anything else is logged and shown as the 500 page.
func (p *Pages) fail(w http.ResponseWriter, r *http.Request, err error, target string) {
	if models.IsExpected(err) {
		p.redirect(w, r, target, util.FlashError, models.Message(err, "Something went wrong."))
		return
	}
	log.Printf("ERROR: %s %s failed: %v", r.Method, r.URL.Path, err)
	p.ErrorPage(w, r, http.StatusInternalServerError, "Something went wrong on our side.")
}

// ErrorPage renders the error page. It matches middleware.ErrorPage.
func (p *Pages) ErrorPage(w http.ResponseWriter, r *http.Request, status int, message string) {
	p.renderStatus(w, r, status, "error.html", http.StatusText(status), errorView{Status: status, Message: message})
}

func (p *Pages) NotFound(w http.ResponseWriter, r *http.Request) {
	p.ErrorPage(w, r, http.StatusNotFound, "The page you were looking for does not exist.")
}

func (p *Pages) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	p.ErrorPage(w, r, http.StatusMethodNotAllowed, "That action is not supported here.")
}

// identity returns the authenticated caller. Routes using it sit behind
// middleware.RequireSession.
func identity(r *http.Request) *models.Identity {
	id := middleware.IdentityFromContext(r.Context())
	if id == nil {
		panic("handlers: route is missing middleware.RequireSession")
	}
	return id
}

var errBadID = errors.New("invalid id")

func idParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errBadID
	}
	return id, nil
}
