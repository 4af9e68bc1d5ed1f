package validate

import (
	"testing"

	"github.com/squarehq/square/pkg/domain"
)

func TestLoginInput(t *testing.T) {
	tests := []struct {
		name    string
		in      LoginInput
		wantMsg string
	}{
		{"valid", LoginInput{Email: "a@b.co", Password: "Str0ng!pass"}, ""},
		{"bad email", LoginInput{Email: "not-an-email", Password: "Str0ng!pass"}, "A valid email is required"},
		{"short password", LoginInput{Email: "a@b.co", Password: "S1!a"}, "Password must be at least 8 characters"},
		{"weak password", LoginInput{Email: "a@b.co", Password: "alllowercase"}, "Password must contain upper and lower case letters, a number, and a symbol"},
		{"empty", LoginInput{}, "A valid email is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if tt.wantMsg == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !IsValidation(err) {
				t.Errorf("IsValidation = false for %v", err)
			}
			if err.Error() != tt.wantMsg {
				t.Errorf("message = %q, want %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestRegisterInput_ConfirmMismatch(t *testing.T) {
	in := RegisterInput{
		Name:            "Ada",
		Email:           "ada@b.co",
		Password:        "Str0ng!pass",
		ConfirmPassword: "Different1!",
	}
	err := in.Validate()
	if err == nil {
		t.Fatal("expected confirm mismatch error")
	}
	if err.Error() != "Password confirmation does not match" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestRegisterInput_FirstErrorWins(t *testing.T) {
	// Every field is invalid; the reported message must be the first
	// field's in declaration order.
	err := RegisterInput{}.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "Name must be at least 3 characters" {
		t.Errorf("message = %q, want the Name message first", err.Error())
	}
}

func TestTaskInput(t *testing.T) {
	valid := TaskInput{
		Title:       "Ship the board",
		Description: "Drag and drop included",
		AssigneeID:  "u1",
		Status:      domain.StatusTodo,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}

	noAssignee := valid
	noAssignee.AssigneeID = ""
	if err := noAssignee.Validate(); err == nil || err.Error() != "An assignee is required" {
		t.Errorf("Validate() = %v, want assignee message", err)
	}

	badStatus := valid
	badStatus.Status = "archived"
	if err := badStatus.Validate(); err == nil || err.Error() != "Status must be one of todo, in-progress, done" {
		t.Errorf("Validate() = %v, want status message", err)
	}
}

func TestProjectInput(t *testing.T) {
	if err := (ProjectInput{Title: "ab"}).Validate(); err == nil {
		t.Error("two-rune title should fail")
	}
	if err := (ProjectInput{Title: "Roadmap"}).Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestPasswordRule(t *testing.T) {
	tests := []struct {
		password string
		ok       bool
	}{
		{"Str0ng!pass", true},
		{"NoDigits!here", false},
		{"nouppercase1!", false},
		{"NOLOWERCASE1!", false},
		{"NoSymbols1here", false},
	}
	for _, tt := range tests {
		in := LoginInput{Email: "a@b.co", Password: tt.password}
		err := in.Validate()
		if tt.ok && err != nil {
			t.Errorf("password %q rejected: %v", tt.password, err)
		}
		if !tt.ok && err == nil {
			t.Errorf("password %q accepted", tt.password)
		}
	}
}
