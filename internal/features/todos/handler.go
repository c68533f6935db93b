package todos

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xyz-asif/sheetodo/internal/pkg/flash"
	"github.com/xyz-asif/sheetodo/internal/pkg/logger"
	"github.com/xyz-asif/sheetodo/internal/pkg/response"
	apperrors "github.com/xyz-asif/sheetodo/pkg/errors"
)

type Handler struct {
	repo     *Repository
	reminder *Reminder
	flash    *flash.Store
}

func NewHandler(repo *Repository, reminder *Reminder, flashes *flash.Store) *Handler {
	return &Handler{repo: repo, reminder: reminder, flash: flashes}
}

// page is the data every template receives.
type page struct {
	Title         string
	Flashes       []flash.Message
	Todos         []Todo
	Options       ListOptions
	Todo          *Todo
	Form          TodoInput
	Action        string
	Errors        map[string]string
	ErrorMessages []string
	Message       string
}

func (h *Handler) render(c *gin.Context, status int, name string, p page) {
	p.Flashes = h.flash.Pop(c)
	c.HTML(status, name, p)
}

// List renders all todos, optionally sorted and filtered.
func (h *Handler) List(c *gin.Context) {
	var opts ListOptions
	_ = c.ShouldBindQuery(&opts)
	opts = opts.normalized()

	todos, err := h.repo.List(c.Request.Context())
	if err != nil {
		h.renderError(c, err)
		return
	}

	h.render(c, http.StatusOK, "index.html", page{
		Todos:   ApplyListOptions(todos, opts),
		Options: opts,
	})
}

func (h *Handler) NewForm(c *gin.Context) {
	h.render(c, http.StatusOK, "new.html", page{
		Title:  "New todo",
		Form:   TodoInput{Priority: string(PriorityMedium)},
		Action: "/new",
	})
}

func (h *Handler) Create(c *gin.Context) {
	var in TodoInput
	_ = c.ShouldBind(&in)

	todo, err := h.repo.Create(c.Request.Context(), in)
	if err != nil {
		var verr *apperrors.ValidationError
		if errors.As(err, &verr) {
			h.renderForm(c, "new.html", "New todo", "/new", in, verr)
			return
		}
		h.renderError(c, err)
		return
	}

	logger.Info("Created todo %s", todo.ID)
	h.addFlash(c, flash.KindSuccess, "Todo created.")
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) EditForm(c *gin.Context) {
	todo, err := h.repo.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}

	h.render(c, http.StatusOK, "edit.html", page{
		Title:  "Edit todo",
		Todo:   todo,
		Form:   inputFromTodo(todo),
		Action: "/edit/" + todo.ID,
	})
}

func (h *Handler) Update(c *gin.Context) {
	id := c.Param("id")

	var in TodoInput
	_ = c.ShouldBind(&in)

	todo, err := h.repo.Update(c.Request.Context(), id, in)
	if err != nil {
		var verr *apperrors.ValidationError
		if errors.As(err, &verr) {
			h.renderForm(c, "edit.html", "Edit todo", "/edit/"+id, in, verr)
			return
		}
		h.renderError(c, err)
		return
	}

	logger.Info("Updated todo %s", todo.ID)
	h.addFlash(c, flash.KindSuccess, "Todo updated.")
	c.Redirect(http.StatusSeeOther, "/")
}

// Toggle flips open/done and returns to the page the user came from.
func (h *Handler) Toggle(c *gin.Context) {
	todo, err := h.repo.ToggleStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}

	msg := "Marked as done."
	if !todo.IsDone() {
		msg = "Reopened."
	}
	h.addFlash(c, flash.KindSuccess, msg)
	c.Redirect(http.StatusSeeOther, backTo(c))
}

// Remind runs the reminder job for an external scheduler.
func (h *Handler) Remind(c *gin.Context) {
	result, err := h.reminder.Run(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		switch {
		case errors.Is(err, apperrors.ErrNotifyFailed):
			response.BadGateway(c, "Failed to send reminder")
		case errors.Is(err, apperrors.ErrStoreUnavailable):
			response.ServiceUnavailable(c, "Todo store unavailable")
		default:
			logger.Error("Reminder run failed: %v", err)
			response.InternalServerError(c, "Reminder run failed", "STORE_ERROR")
		}
		return
	}

	if result.Count == 0 {
		response.Success(c, result, "Nothing due")
		return
	}
	response.Success(c, result, "Reminder sent")
}

func (h *Handler) renderForm(c *gin.Context, name, title, action string, in TodoInput, verr *apperrors.ValidationError) {
	h.render(c, http.StatusBadRequest, name, page{
		Title:         title,
		Form:          in,
		Action:        action,
		Errors:        verr.Fields,
		ErrorMessages: verr.Messages(),
	})
}

// renderError maps repository errors to an error page.
func (h *Handler) renderError(c *gin.Context, err error) {
	_ = c.Error(err)

	status := http.StatusInternalServerError
	p := page{
		Title:   "Something went wrong",
		Message: "The todo list could not be loaded from the store. Please try again later.",
	}

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		status = http.StatusNotFound
		p.Title = "Todo not found"
		p.Message = "The todo you are looking for does not exist."
	case errors.Is(err, apperrors.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
		p.Title = "Store unavailable"
		logger.Error("Row store unavailable: %v", err)
	case errors.Is(err, apperrors.ErrStoreAuth):
		logger.Error("Row store rejected credentials: %v", err)
	case errors.Is(err, apperrors.ErrParse):
		logger.Error("Malformed row in store: %v", err)
	default:
		logger.Error("Unexpected error: %v", err)
	}

	h.render(c, status, "error.html", p)
}

func (h *Handler) addFlash(c *gin.Context, kind, text string) {
	if err := h.flash.Add(c, kind, text); err != nil {
		logger.Warn("Failed to set flash message: %v", err)
	}
}

// backTo returns the same-site path of the Referer, or "/".
func backTo(c *gin.Context) string {
	ref := c.GetHeader("Referer")
	if ref == "" {
		return "/"
	}
	u, err := url.Parse(ref)
	if err != nil || (u.Host != "" && u.Host != c.Request.Host) {
		return "/"
	}
	if !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(u.Path, "//") {
		return "/"
	}
	if u.RawQuery != "" {
		return u.Path + "?" + u.RawQuery
	}
	return u.Path
}
