package handler

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"user-table-service/internal/usecase/record"
	pkgerrors "user-table-service/pkg/errors"
	"user-table-service/pkg/logger"
)

const (
	// SessionCookie holds the id of the caller's table view state.
	SessionCookie = "table_session"
	flashCookie   = "table_flash"

	alertPrefix  = "alert:"
	noticePrefix = "notice:"
)

//go:embed templates/*.html
var templatesFS embed.FS

// WebHandler serves the HTML table page. View state (page, search, modal)
// lives in the usecase, keyed by the session cookie.
type WebHandler struct {
	uc         record.Usecase
	log        *zap.Logger
	tmpl       *template.Template
	sessionTTL int // cookie max-age in seconds
	secure     bool
}

// NewWebHandler parses the embedded templates and creates a WebHandler.
func NewWebHandler(uc record.Usecase, log *zap.Logger, sessionTTLSeconds int, secureCookies bool) (*WebHandler, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"money": func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) },
	}).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &WebHandler{
		uc:         uc,
		log:        log,
		tmpl:       tmpl,
		sessionTTL: sessionTTLSeconds,
		secure:     secureCookies,
	}, nil
}

// tablePage is the data rendered by index.html.
type tablePage struct {
	View   *record.View
	Form   record.Record
	Alert  string
	Notice string
}

// confirmPage is the data rendered by confirm.html.
type confirmPage struct {
	Index int
	Name  string
}

// session returns the caller's session id, issuing a cookie on first visit,
// and a request context carrying it for logging.
func (h *WebHandler) session(c *gin.Context) (string, context.Context) {
	id, err := c.Cookie(SessionCookie)
	if err != nil || id == "" || len(id) > 64 {
		id = uuid.NewString()
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(SessionCookie, id, h.sessionTTL, "/", "", h.secure, true)
	}
	return id, logger.WithSessionID(c.Request.Context(), id)
}

func (h *WebHandler) setFlash(c *gin.Context, prefix, msg string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookie, url.QueryEscape(prefix+msg), 60, "/", "", h.secure, true)
}

// takeFlash reads and clears the one-shot message left by the previous redirect.
func (h *WebHandler) takeFlash(c *gin.Context) (alert, notice string) {
	raw, err := c.Cookie(flashCookie)
	if err != nil || raw == "" {
		return "", ""
	}
	c.SetCookie(flashCookie, "", -1, "/", "", h.secure, true)

	msg, err := url.QueryUnescape(raw)
	if err != nil {
		return "", ""
	}
	switch {
	case strings.HasPrefix(msg, alertPrefix):
		return strings.TrimPrefix(msg, alertPrefix), ""
	case strings.HasPrefix(msg, noticePrefix):
		return "", strings.TrimPrefix(msg, noticePrefix)
	}
	return "", ""
}

func (h *WebHandler) redirectHome(c *gin.Context) {
	c.Redirect(http.StatusSeeOther, "/")
}

// alertFor turns an error into the banner text shown above the table.
func alertFor(err error) string {
	var (
		validation   *pkgerrors.ValidationError
		notFound     *pkgerrors.NotFoundError
		exists       *pkgerrors.AlreadyExistsError
		precondition *pkgerrors.FailedPreconditionError
	)
	switch {
	case errors.As(err, &exists):
		return "User already exists!"
	case errors.As(err, &precondition):
		return "Users already synced!"
	case errors.As(err, &notFound):
		return "User not found."
	case errors.As(err, &validation):
		if validation.Field != "" {
			return "Invalid " + validation.Field + ": " + validation.Message
		}
		return "Invalid input: " + validation.Message
	default:
		return "Something went wrong. Please try again."
	}
}

// render writes the table page for a session. A nil view is loaded first.
func (h *WebHandler) render(ctx context.Context, c *gin.Context, sid string, status int, view *record.View, page tablePage) {
	if view == nil {
		v, err := h.uc.View(ctx, record.SessionRequest{SessionID: sid})
		if err != nil {
			logger.WithContext(ctx, h.log).Error("render table failed", zap.Error(err))
			c.String(http.StatusInternalServerError, "internal error")
			return
		}
		view = v
	}
	page.View = view
	if page.Form == (record.Record{}) {
		page.Form = view.Modal.Form
	}

	c.Header("Cache-Control", "no-store")
	c.Render(status, render.HTML{Template: h.tmpl, Name: "index.html", Data: page})
}

// fail logs err and renders the table with an alert banner.
func (h *WebHandler) fail(ctx context.Context, c *gin.Context, sid string, err error, page tablePage) {
	status, _ := errorStatus(err)
	logger.WithContext(ctx, h.log).Warn("table action failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	_ = c.Error(err)
	page.Alert = alertFor(err)
	h.render(ctx, c, sid, status, nil, page)
}

// Index handles GET /
// Query parameters: q sets the search, nav=prev|next steps one page, page jumps to a page.
func (h *WebHandler) Index(c *gin.Context) {
	sid, ctx := h.session(c)
	alert, notice := h.takeFlash(c)
	page := tablePage{Alert: alert, Notice: notice}

	var (
		view *record.View
		err  error
	)
	if q, ok := c.GetQuery("q"); ok {
		view, err = h.uc.Search(ctx, record.SearchRequest{SessionID: sid, Query: q})
		if err != nil {
			h.fail(ctx, c, sid, err, page)
			return
		}
	}

	switch c.Query("nav") {
	case "prev":
		view, err = h.uc.PrevPage(ctx, record.SessionRequest{SessionID: sid})
	case "next":
		view, err = h.uc.NextPage(ctx, record.SessionRequest{SessionID: sid})
	default:
		if raw, ok := c.GetQuery("page"); ok {
			n, perr := strconv.ParseInt(raw, 10, 64)
			if perr != nil {
				h.fail(ctx, c, sid, pkgerrors.NewValidationError("page", "must be a number"), page)
				return
			}
			view, err = h.uc.GoToPage(ctx, record.GoToPageRequest{SessionID: sid, Page: n})
		}
	}
	if err != nil {
		h.fail(ctx, c, sid, err, page)
		return
	}

	h.render(ctx, c, sid, http.StatusOK, view, page)
}

// NewRecord handles GET /records/new
func (h *WebHandler) NewRecord(c *gin.Context) {
	sid, ctx := h.session(c)
	if _, err := h.uc.OpenAddModal(ctx, record.SessionRequest{SessionID: sid}); err != nil {
		h.fail(ctx, c, sid, err, tablePage{})
		return
	}
	h.render(ctx, c, sid, http.StatusOK, nil, tablePage{})
}

// EditRecord handles GET /records/:index/edit
func (h *WebHandler) EditRecord(c *gin.Context) {
	sid, ctx := h.session(c)
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		h.fail(ctx, c, sid, pkgerrors.NewNotFoundError("record", "record not found"), tablePage{})
		return
	}
	if _, err := h.uc.OpenEditModal(ctx, record.OpenEditModalRequest{SessionID: sid, Index: index}); err != nil {
		h.fail(ctx, c, sid, err, tablePage{})
		return
	}
	h.render(ctx, c, sid, http.StatusOK, nil, tablePage{})
}

// SaveRecord handles POST /records, the modal form submit.
func (h *WebHandler) SaveRecord(c *gin.Context) {
	sid, ctx := h.session(c)

	form := record.Record{
		Name:  c.PostForm("name"),
		Email: c.PostForm("email"),
		ID:    c.PostForm("id"),
		DOB:   c.PostForm("dob"),
	}
	page := tablePage{Form: form}

	if raw := strings.TrimSpace(c.PostForm("salary")); raw != "" {
		salary, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			h.fail(ctx, c, sid, pkgerrors.NewValidationError("Salary", "must be a number"), page)
			return
		}
		form.Salary = salary
		page.Form.Salary = salary
	}

	resp, err := h.uc.SaveRecord(ctx, record.SaveRecordRequest{
		SessionID: sid,
		RecordInput: record.RecordInput{
			Name:   form.Name,
			Email:  form.Email,
			ID:     form.ID,
			Salary: form.Salary,
			DOB:    form.DOB,
		},
	})
	if err != nil {
		h.fail(ctx, c, sid, err, page)
		return
	}

	if resp.Created {
		h.setFlash(c, noticePrefix, "User added.")
	} else {
		h.setFlash(c, noticePrefix, "User updated.")
	}
	h.redirectHome(c)
}

// CloseModal handles POST /modal/close
func (h *WebHandler) CloseModal(c *gin.Context) {
	sid, ctx := h.session(c)
	if _, err := h.uc.CloseModal(ctx, record.SessionRequest{SessionID: sid}); err != nil {
		h.fail(ctx, c, sid, err, tablePage{})
		return
	}
	h.redirectHome(c)
}

// ConfirmDelete handles GET /records/:index/delete
func (h *WebHandler) ConfirmDelete(c *gin.Context) {
	sid, ctx := h.session(c)
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		h.fail(ctx, c, sid, pkgerrors.NewNotFoundError("record", "record not found"), tablePage{})
		return
	}

	resp, err := h.uc.GetRecord(ctx, record.GetRecordRequest{Index: index})
	if err != nil {
		h.fail(ctx, c, sid, err, tablePage{})
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Render(http.StatusOK, render.HTML{
		Template: h.tmpl,
		Name:     "confirm.html",
		Data:     confirmPage{Index: resp.Index, Name: resp.Record.Name},
	})
}

// DeleteRecord handles POST /records/:index/delete, the confirmed deletion.
func (h *WebHandler) DeleteRecord(c *gin.Context) {
	sid, ctx := h.session(c)
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		h.fail(ctx, c, sid, pkgerrors.NewNotFoundError("record", "record not found"), tablePage{})
		return
	}

	if _, err := h.uc.DeleteRecord(ctx, record.DeleteRecordRequest{SessionID: sid, Index: index}); err != nil {
		h.fail(ctx, c, sid, err, tablePage{})
		return
	}

	h.setFlash(c, noticePrefix, "User deleted.")
	h.redirectHome(c)
}

// Sync handles POST /sync
func (h *WebHandler) Sync(c *gin.Context) {
	_, ctx := h.session(c)

	resp, err := h.uc.SyncRecords(ctx)
	if err != nil {
		logger.WithContext(ctx, h.log).Warn("sync from web failed", zap.Error(err))
		var precondition *pkgerrors.FailedPreconditionError
		if errors.As(err, &precondition) {
			h.setFlash(c, alertPrefix, "Users already synced!")
		} else {
			h.setFlash(c, alertPrefix, "Failed to fetch users.")
		}
		h.redirectHome(c)
		return
	}

	h.setFlash(c, noticePrefix, "Synced "+strconv.Itoa(resp.Added)+" users.")
	h.redirectHome(c)
}
