package validation

import (
	"strings"
	"testing"
	"time"

	"todo-planner/internal/model"
)

func strPtr(s string) *string { return &s }

func TestCreateTask(t *testing.T) {
	daily := model.RecurrenceDaily
	bogus := model.RecurrencePattern("YEARLY")
	end := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		in      model.CreateTaskInput
		wantMsg string
	}{
		{name: "valid", in: model.CreateTaskInput{Title: "Buy milk"}},
		{name: "blank title", in: model.CreateTaskInput{Title: "   "}, wantMsg: "Title is required"},
		{name: "long title", in: model.CreateTaskInput{Title: strings.Repeat("a", 201)}, wantMsg: "Title must be less than 200 characters"},
		{name: "title at limit", in: model.CreateTaskInput{Title: strings.Repeat("a", 200)}},
		{name: "long description", in: model.CreateTaskInput{Title: "x", Description: strPtr(strings.Repeat("d", 2001))}, wantMsg: "Description must be less than 2000 characters"},
		{name: "unknown pattern", in: model.CreateTaskInput{Title: "x", RecurrencePattern: &bogus}, wantMsg: "Recurrence pattern must be one of DAILY, WEEKLY, MONTHLY"},
		{name: "end date without pattern", in: model.CreateTaskInput{Title: "x", RecurrenceEndDate: &end}, wantMsg: "Recurrence end date cannot be set without a recurrence pattern"},
		{name: "end date with pattern", in: model.CreateTaskInput{Title: "x", RecurrencePattern: &daily, RecurrenceEndDate: &end}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CreateTask(tt.in)
			if tt.wantMsg == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			verrs, ok := AsErrors(err)
			if !ok {
				t.Fatalf("expected validation errors, got %v", err)
			}
			if verrs[0].Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", verrs[0].Message, tt.wantMsg)
			}
		})
	}
}

func TestCreateTaskNormalizes(t *testing.T) {
	in, err := CreateTask(model.CreateTaskInput{Title: "  Buy milk ", Description: strPtr("   ")})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if in.Title != "Buy milk" {
		t.Errorf("title = %q", in.Title)
	}
	if in.Description != nil {
		t.Errorf("blank description should be nil, got %q", *in.Description)
	}
}

func TestUpdateTask(t *testing.T) {
	if _, err := UpdateTask(model.UpdateTaskInput{}); err != nil {
		t.Fatalf("empty update should be valid: %v", err)
	}

	_, err := UpdateTask(model.UpdateTaskInput{Title: strPtr(" ")})
	verrs, ok := AsErrors(err)
	if !ok || verrs[0].Field != "title" {
		t.Fatalf("expected title error, got %v", err)
	}

	in, err := UpdateTask(model.UpdateTaskInput{Description: strPtr("  ")})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if in.Description == nil || *in.Description != "" {
		t.Errorf("blank description should become empty string")
	}
}

func TestCredentials(t *testing.T) {
	tests := []struct {
		name    string
		creds   model.Credentials
		wantMsg string
	}{
		{name: "valid", creds: model.Credentials{Email: "a@example.com", Password: "password1"}},
		{name: "missing email", creds: model.Credentials{Password: "password1"}, wantMsg: "Email is required"},
		{name: "bad email", creds: model.Credentials{Email: "nope", Password: "password1"}, wantMsg: "Invalid email format"},
		{name: "short password", creds: model.Credentials{Email: "a@example.com", Password: "short"}, wantMsg: "Password must be at least 8 characters"},
		{name: "long password", creds: model.Credentials{Email: "a@example.com", Password: strings.Repeat("p", 129)}, wantMsg: "Password must be less than 128 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Credentials(tt.creds)
			if tt.wantMsg == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %v, want %q", err, tt.wantMsg)
			}
		})
	}
}

func TestConfirmPassword(t *testing.T) {
	if err := ConfirmPassword("password1", "password1"); err != nil {
		t.Errorf("matching passwords: %v", err)
	}
	if err := ConfirmPassword("password1", ""); err == nil || err.Error() != "Please confirm your password" {
		t.Errorf("empty confirm: %v", err)
	}
	if err := ConfirmPassword("password1", "password2"); err == nil || err.Error() != "Passwords do not match" {
		t.Errorf("mismatch: %v", err)
	}
}
