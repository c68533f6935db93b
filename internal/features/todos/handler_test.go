package todos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/xyz-asif/sheetodo/internal/config"
	"github.com/xyz-asif/sheetodo/internal/middleware"
	"github.com/xyz-asif/sheetodo/internal/pkg/flash"
	"github.com/xyz-asif/sheetodo/internal/pkg/ratelimit"
	"github.com/xyz-asif/sheetodo/internal/rowstore"
	apperrors "github.com/xyz-asif/sheetodo/pkg/errors"
)

type testApp struct {
	router   *gin.Engine
	mem      *rowstore.Memory
	repo     *Repository
	notifier *fakeNotifier
}

func newTestApp(t *testing.T, limiter *ratelimit.RateLimiter) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		SecretKey:         "test-secret",
		Timezone:          testLoc,
		CronAuthToken:     "cron-secret",
		RemindWindowHours: 48,
	}
	tmpl, err := Templates(cfg.Timezone)
	require.NoError(t, err)

	router := gin.New()
	router.SetHTMLTemplate(tmpl)

	mem := rowstore.NewMemory()
	notifier := &fakeNotifier{}
	RegisterRoutes(&router.RouterGroup, mem, cfg, flash.NewStore(cfg.SecretKey, false), notifier, limiter)

	return &testApp{
		router:   router,
		mem:      mem,
		repo:     NewRepository(mem, testLoc),
		notifier: notifier,
	}
}

func (a *testApp) do(method, target string, form url.Values, header http.Header, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) seed(t *testing.T, in TodoInput) *Todo {
	t.Helper()
	todo, err := a.repo.Create(context.Background(), in)
	require.NoError(t, err)
	return todo
}

func cookieNamed(w *httptest.ResponseRecorder, name string) *http.Cookie {
	var found *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			found = c
		}
	}
	return found
}

func TestHandler_ListEmpty(t *testing.T) {
	app := newTestApp(t, nil)

	w := app.do("GET", "/", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "No todos yet")
}

func TestHandler_CreateRedirectsWithFlash(t *testing.T) {
	app := newTestApp(t, nil)

	w := app.do("POST", "/new", url.Values{
		"title":    {"Buy milk"},
		"body":     {"2%"},
		"due_date": {"2025-01-10"},
		"priority": {"High"},
	}, nil)
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, "/", w.Header().Get("Location"))
	require.Equal(t, 1, app.mem.Writes())

	flashCookie := cookieNamed(w, "flash")
	require.NotNil(t, flashCookie)

	w = app.do("GET", "/", nil, nil, flashCookie)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	require.Contains(t, body, "Todo created.")
	require.Contains(t, body, "Buy milk")
	require.Contains(t, body, "2025-01-10")

	// the flash is shown once
	w = app.do("GET", "/", nil, nil)
	require.NotContains(t, w.Body.String(), "Todo created.")
}

func TestHandler_CreateValidationRerendersForm(t *testing.T) {
	app := newTestApp(t, nil)

	w := app.do("POST", "/new", url.Values{"title": {"  "}, "body": {"keep me"}, "due_date": {"2025-13-01"}}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := w.Body.String()
	require.Contains(t, body, "Title is required.")
	require.Contains(t, body, "Due date must be a valid date")
	require.Contains(t, body, "keep me")
	require.Equal(t, 0, app.mem.Writes())
}

func TestHandler_NewForm(t *testing.T) {
	app := newTestApp(t, nil)

	w := app.do("GET", "/new", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `action="/new"`)
	require.Contains(t, w.Body.String(), `<option value="Medium" selected>`)
}

func TestHandler_EditFlow(t *testing.T) {
	app := newTestApp(t, nil)
	todo := app.seed(t, TodoInput{Title: "Buy milk", Body: "2%", DueDate: "2025-01-10"})

	w := app.do("GET", "/edit/"+todo.ID, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `value="Buy milk"`)
	require.Contains(t, w.Body.String(), `action="/edit/`+todo.ID+`"`)

	w = app.do("POST", "/edit/"+todo.ID, url.Values{"title": {"Buy oat milk"}, "body": {"2%"}, "due_date": {"2025-01-10"}}, nil)
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, "/", w.Header().Get("Location"))

	got, err := app.repo.Get(context.Background(), todo.ID)
	require.NoError(t, err)
	require.Equal(t, "Buy oat milk", got.Title)
	require.Equal(t, todo.CreatedAt, got.CreatedAt)

	w = app.do("POST", "/edit/"+todo.ID, url.Values{"title": {""}}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "Title is required.")
}

func TestHandler_EditUnknownID(t *testing.T) {
	app := newTestApp(t, nil)
	app.seed(t, TodoInput{Title: "Buy milk"})
	writes := app.mem.Writes()

	w := app.do("GET", "/edit/nonexistent-id", nil, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, w.Body.String(), "Todo not found")

	w = app.do("POST", "/edit/nonexistent-id", url.Values{"title": {"Buy oat milk"}}, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, writes, app.mem.Writes())
}

func TestHandler_StoreFailures(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"unavailable", fmt.Errorf("%w: dial tcp: timeout", apperrors.ErrStoreUnavailable), http.StatusServiceUnavailable},
		{"auth", fmt.Errorf("%w: 403", apperrors.ErrStoreAuth), http.StatusInternalServerError},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp(t, nil)
			app.mem.FailWith(tc.err)

			w := app.do("GET", "/", nil, nil)
			require.Equal(t, tc.status, w.Code)
			require.NotContains(t, w.Body.String(), "dial tcp")

			w = app.do("POST", "/new", url.Values{"title": {"x"}}, nil)
			require.Equal(t, tc.status, w.Code)
		})
	}
}

func TestHandler_MalformedRowRendersError(t *testing.T) {
	app := newTestApp(t, nil)
	require.NoError(t, app.mem.AppendRow(context.Background(), rowstore.Row{"x1", "", "", "", "", ""}))

	w := app.do("GET", "/", nil, nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Contains(t, w.Body.String(), "Something went wrong")
}

func TestHandler_ListSortAndFilter(t *testing.T) {
	app := newTestApp(t, nil)
	low := app.seed(t, TodoInput{Title: "Low task", Priority: "Low"})
	app.seed(t, TodoInput{Title: "High task", Priority: "High"})

	body := app.do("GET", "/", nil, nil).Body.String()
	require.Less(t, strings.Index(body, "Low task"), strings.Index(body, "High task"))

	body = app.do("GET", "/?sort=priority", nil, nil).Body.String()
	require.Less(t, strings.Index(body, "High task"), strings.Index(body, "Low task"))

	_, err := app.repo.ToggleStatus(context.Background(), low.ID)
	require.NoError(t, err)

	body = app.do("GET", "/?status=open", nil, nil).Body.String()
	require.NotContains(t, body, "Low task")
	require.Contains(t, body, "High task")
}

func TestHandler_Toggle(t *testing.T) {
	app := newTestApp(t, nil)
	todo := app.seed(t, TodoInput{Title: "Walk dog"})

	w := app.do("POST", "/todos/"+todo.ID+"/toggle", nil, http.Header{"Referer": {"http://example.com/?sort=due"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, "/?sort=due", w.Header().Get("Location"))

	got, err := app.repo.Get(context.Background(), todo.ID)
	require.NoError(t, err)
	require.True(t, got.IsDone())

	w = app.do("POST", "/todos/"+todo.ID+"/toggle", nil, http.Header{"Referer": {"https://evil.test/phish"}})
	require.Equal(t, "/", w.Header().Get("Location"))

	got, err = app.repo.Get(context.Background(), todo.ID)
	require.NoError(t, err)
	require.False(t, got.IsDone())

	w = app.do("POST", "/todos/missing/toggle", nil, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestBackTo(t *testing.T) {
	cases := map[string]string{
		"":                                "/",
		"/":                               "/",
		"http://example.com/edit/abc":     "/edit/abc",
		"http://example.com/?status=open": "/?status=open",
		"https://evil.test/":              "/",
		"//evil.test/path":                "/",
		"javascript:alert(1)":             "/",
	}

	for ref, want := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest("POST", "/todos/x/toggle", nil)
		if ref != "" {
			c.Request.Header.Set("Referer", ref)
		}
		require.Equal(t, want, backTo(c), ref)
	}
}

func TestHandler_Remind(t *testing.T) {
	app := newTestApp(t, nil)
	tomorrow := time.Now().In(testLoc).AddDate(0, 0, 1).Format(dateLayout)
	todo := app.seed(t, TodoInput{Title: "File taxes", DueDate: tomorrow})
	app.seed(t, TodoInput{Title: "No due date"})
	token := http.Header{middleware.CronTokenHeader: {"cron-secret"}}

	w := app.do("POST", "/cron/remind", nil, nil)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Empty(t, app.notifier.messages)

	w = app.do("POST", "/cron/remind", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool           `json:"success"`
		Data    ReminderResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.True(t, body.Success)
	require.Equal(t, 1, body.Data.Count)
	require.Equal(t, []string{todo.ID}, body.Data.IDs)
	require.Len(t, app.notifier.messages, 1)
	require.Contains(t, app.notifier.messages[0], "File taxes")

	w = app.do("POST", "/cron/remind", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, 0, body.Data.Count)
}

func TestHandler_RemindFailures(t *testing.T) {
	token := http.Header{middleware.CronTokenHeader: {"cron-secret"}}

	app := newTestApp(t, nil)
	app.seed(t, TodoInput{Title: "Due", DueDate: time.Now().In(testLoc).AddDate(0, 0, 1).Format(dateLayout)})
	app.notifier.err = errors.New("LINE push returned 500")

	w := app.do("POST", "/cron/remind", nil, token)
	require.Equal(t, http.StatusBadGateway, w.Code)

	app = newTestApp(t, nil)
	app.mem.FailWith(apperrors.ErrStoreAuth)
	w = app.do("POST", "/cron/remind", nil, token)
	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHandler_RateLimitsFormPosts(t *testing.T) {
	app := newTestApp(t, ratelimit.New(1, time.Minute))

	w := app.do("POST", "/new", url.Values{"title": {"one"}}, nil)
	require.Equal(t, http.StatusSeeOther, w.Code)

	w = app.do("POST", "/new", url.Values{"title": {"two"}}, nil)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.Equal(t, 1, app.mem.Writes())

	// reads are not limited
	w = app.do("GET", "/", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
}
