// Package forms validates user input before it is sent to the API. Every
// error returned here is a user-facing sentence.
package forms

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/nexa-tasks/nexa/internal/models"
)

// Error is a validation failure carrying a message for the user
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if label := f.Tag.Get("label"); label != "" {
			return label
		}
		return f.Name
	})

	v.RegisterValidation("priority", func(fl validator.FieldLevel) bool {
		_, err := models.ParsePriority(fl.Field().String())
		return err == nil
	})
	return v
}

// Login is the login form
type Login struct {
	Email    string `validate:"required,email" label:"Email"`
	Password string `validate:"required" label:"Password"`
}

// Validate checks the login form
func (f *Login) Validate() error {
	f.Email = strings.TrimSpace(f.Email)
	if f.Email == "" || f.Password == "" {
		return &Error{Message: "Please enter your email and password."}
	}
	return check(f)
}

// Signup is the registration form
type Signup struct {
	Name             string `validate:"required" label:"Full name"`
	Email            string `validate:"required,email" label:"Email"`
	Password         string `validate:"required,min=8" label:"Password"`
	AdminInviteToken string
	ProfileImagePath string `validate:"omitempty,file" label:"Profile image"`
}

// Validate checks the signup form
func (f *Signup) Validate() error {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	f.AdminInviteToken = strings.TrimSpace(f.AdminInviteToken)
	return check(f)
}

// ChangePassword is the change-password form
type ChangePassword struct {
	Current string `validate:"required" label:"Current password"`
	New     string `validate:"required,min=8" label:"New password"`
	Confirm string `validate:"required,eqfield=New" label:"Confirm password"`
}

// Validate checks the change-password form
func (f *ChangePassword) Validate() error {
	if f.Current == "" || f.New == "" || f.Confirm == "" {
		return &Error{Message: "Please fill in all password fields."}
	}
	return check(f)
}

// Avatar is the profile picture form
type Avatar struct {
	Path string `validate:"required,file" label:"Image"`
}

// Validate checks the avatar form
func (f *Avatar) Validate() error {
	f.Path = strings.TrimSpace(f.Path)
	if f.Path == "" {
		return &Error{Field: "Path", Message: "Please choose an image file."}
	}
	return check(f)
}

// Task is the create/update task form
type Task struct {
	Title       string     `validate:"required" label:"Title"`
	Description string     `validate:"required" label:"Description"`
	Priority    string     `validate:"required,priority" label:"Priority"`
	DueDate     *time.Time `validate:"required" label:"Due date"`
	AssignedTo  []string   `validate:"min=1,dive,required" label:"Assignee"`
	Checklist   []string   `validate:"dive,required" label:"Checklist item"`
	Attachments []string   `validate:"dive,url" label:"Attachment"`
}

// Validate checks the task form
func (f *Task) Validate() error {
	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)
	for i := range f.Checklist {
		f.Checklist[i] = strings.TrimSpace(f.Checklist[i])
	}
	return check(f)
}

// ChecklistItems converts the checklist texts, keeping the completion state of
// items that already existed with the same text
func (f *Task) ChecklistItems(existing []models.TodoItem) []models.TodoItem {
	done := make(map[string]bool, len(existing))
	for _, item := range existing {
		done[item.Text] = item.Completed
	}
	items := make([]models.TodoItem, 0, len(f.Checklist))
	for _, text := range f.Checklist {
		items = append(items, models.TodoItem{Text: text, Completed: done[text]})
	}
	return items
}

// ParseDueDate accepts YYYY-MM-DD or RFC 3339
func ParseDueDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, &Error{Field: "DueDate", Message: fmt.Sprintf("Invalid due date '%s', use YYYY-MM-DD.", s)}
}

// check runs struct validation and turns the first failure into an Error
func check(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	return translate(fieldErrs[0])
}

func translate(fe validator.FieldError) *Error {
	label := fe.Field()
	if i := strings.IndexByte(label, '['); i >= 0 {
		label = label[:i]
	}
	var msg string

	switch fe.Tag() {
	case "required":
		msg = fmt.Sprintf("%s is required.", label)
	case "email":
		msg = "Please enter a valid email address."
	case "min":
		if fe.Kind() == reflect.Slice {
			msg = fmt.Sprintf("Please select at least %s %s.", fe.Param(), strings.ToLower(label))
		} else {
			msg = fmt.Sprintf("%s must be at least %s characters.", label, fe.Param())
		}
	case "eqfield":
		msg = "New passwords do not match."
	case "priority":
		msg = "Priority must be one of: Low, Medium, High."
	case "url":
		msg = fmt.Sprintf("%s must be a valid URL.", label)
	case "file":
		msg = "Please choose an image file."
	default:
		msg = fmt.Sprintf("%s is invalid.", label)
	}
	field := fe.StructField()
	if i := strings.IndexByte(field, '['); i >= 0 {
		field = field[:i]
	}
	return &Error{Field: field, Message: msg}
}
