package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrMissingField is returned when a required inquiry field is blank
var ErrMissingField = errors.New("missing required field")

// Inquiry is a contact request left through the site
type Inquiry struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Message   string    `json:"message" db:"message"`
	CreatedAt time.Time `json:"timestamp" db:"created_at"`
}

// Validate performs presence checks only
func (i *Inquiry) Validate() error {
	i.Name = strings.TrimSpace(i.Name)
	i.Email = strings.TrimSpace(i.Email)
	i.Message = strings.TrimSpace(i.Message)

	var missing []string
	if i.Name == "" {
		missing = append(missing, "name")
	}
	if i.Email == "" {
		missing = append(missing, "email")
	}
	if i.Message == "" {
		missing = append(missing, "message")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingField, strings.Join(missing, ", "))
	}
	return nil
}

// InquiryCreated is the event published after an inquiry is stored
type InquiryCreated struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
