package event

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// titlePattern restricts event titles to alphanumerics plus a small
// punctuation set and whitespace.
var titlePattern = regexp.MustCompile(`^[A-Za-z0-9\-_.,!?() \t]*$`)

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("eventtitle", func(fl validator.FieldLevel) bool {
		return titlePattern.MatchString(fl.Field().String())
	})
	return v
}

// EventDraft is the input to CreateEvent, validated with struct tags
// via go-playground/validator.
type EventDraft struct {
	Title       string  `json:"title" validate:"required,max=500,eventtitle"`
	Description *string `json:"description" validate:"omitempty,max=10000"`
	Location    *string `json:"location" validate:"omitempty,max=500"`
	Capacity    int     `json:"capacity" validate:"required"`
	DateTime    string  `json:"date_time" validate:"required"` // RFC3339, parsed by the caller
}

// EventPatch is the input to UpdateEvent; all fields optional.
type EventPatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Location    *string `json:"location"`
	Capacity    *int    `json:"capacity"`
	DateTime    *string `json:"date_time"`
}
