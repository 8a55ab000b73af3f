package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"todo-planner/internal/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *Session) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	session := NewSession("token-1")
	return New(srv.URL, session), session
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClientSendsBearerToken(t *testing.T) {
	var gotAuth string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, []model.Task{{ID: uuid.New(), Title: "a"}})
	})

	tasks, err := c.ListTasks(context.Background())
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Title != "a" {
		t.Errorf("tasks = %+v", tasks)
	}
	if gotAuth != "Bearer token-1" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}

func TestClientCalendarQuery(t *testing.T) {
	var gotQuery string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tasks/calendar" {
			t.Errorf("path = %s", r.URL.Path)
		}
		gotQuery = r.URL.RawQuery
		writeJSON(w, http.StatusOK, []model.Task{})
	})

	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)
	if _, err := c.CalendarTasks(context.Background(), start, end); err != nil {
		t.Fatalf("CalendarTasks: %v", err)
	}
	if gotQuery != "end_date=2026-03-07&start_date=2026-02-01" {
		t.Errorf("query = %q", gotQuery)
	}
}

func TestClientErrorKinds(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     any
		wantKind Kind
		wantCode string
		wantMsg  string
	}{
		{
			name:     "not found",
			status:   http.StatusNotFound,
			body:     ErrorBody{Error: "Task not found", Code: CodeNotFound, StatusCode: 404},
			wantKind: KindRequest,
			wantCode: CodeNotFound,
			wantMsg:  "Task not found",
		},
		{
			name:     "server error",
			status:   http.StatusInternalServerError,
			body:     ErrorBody{Error: "An internal server error occurred", Code: CodeInternal, StatusCode: 500},
			wantKind: KindServer,
			wantCode: CodeInternal,
			wantMsg:  "An internal server error occurred",
		},
		{
			name:     "no envelope",
			status:   http.StatusBadGateway,
			body:     "oops",
			wantKind: KindServer,
			wantCode: CodeInternal,
			wantMsg:  "Bad Gateway",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})
			_, err := c.GetTask(context.Background(), uuid.New())
			apiErr, ok := AsError(err)
			if !ok {
				t.Fatalf("expected *Error, got %T", err)
			}
			if apiErr.Kind != tt.wantKind || apiErr.Code != tt.wantCode || apiErr.Message != tt.wantMsg || apiErr.Status != tt.status {
				t.Errorf("error = %+v", apiErr)
			}
		})
	}
}

func TestClientNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := New(url, NewSession("t"))
	err := c.DeleteTask(context.Background(), uuid.New())
	apiErr, ok := AsError(err)
	if !ok || apiErr.Kind != KindNetwork || apiErr.Code != CodeNetwork || apiErr.Status != 0 {
		t.Fatalf("error = %#v", err)
	}
}

func TestClientCanceledContext(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []model.Task{})
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.ListTasks(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled in chain, got %v", err)
	}
}

func TestClientUnauthorizedClearsSession(t *testing.T) {
	c, session := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, ErrorBody{Error: "Authentication token has expired", Code: CodeTokenExpired, StatusCode: 401})
	})

	var hooked *Error
	session.OnUnauthorized(func(err *Error) { hooked = err })

	_, err := c.ListTasks(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if session.Authenticated() {
		t.Error("session should be cleared after 401")
	}
	if hooked == nil || hooked.Code != CodeTokenExpired {
		t.Errorf("hook got %+v", hooked)
	}
}

func TestClientLoginStoresSession(t *testing.T) {
	user := model.User{ID: uuid.New(), Email: "a@example.com"}
	c, session := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/login" || r.Method != http.MethodPost {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		var creds model.Credentials
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds.Email != "a@example.com" {
			t.Errorf("email = %q", creds.Email)
		}
		writeJSON(w, http.StatusOK, model.AuthResult{Token: "fresh", User: user})
	})

	if _, err := c.Login(context.Background(), model.Credentials{Email: " a@example.com ", Password: "password1"}); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if session.Token() != "fresh" {
		t.Errorf("token = %q", session.Token())
	}
	if got, ok := session.User(); !ok || got.ID != user.ID {
		t.Errorf("user = %+v", got)
	}
}

func TestClientLoginValidatesLocally(t *testing.T) {
	called := false
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	_, err := c.Login(context.Background(), model.Credentials{Email: "bad", Password: "x"})
	apiErr, ok := AsError(err)
	if !ok || apiErr.Kind != KindValidation || len(apiErr.Details) == 0 {
		t.Fatalf("error = %#v", err)
	}
	if called {
		t.Error("validation failure must not reach the network")
	}
}

func TestClientLogoutIsBestEffort(t *testing.T) {
	c, session := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, ErrorBody{Error: "boom", Code: CodeInternal})
	})
	if err := c.Logout(context.Background()); err == nil {
		t.Error("expected server error to be reported")
	}
	if session.Authenticated() {
		t.Error("session should be cleared even when logout fails")
	}
}
