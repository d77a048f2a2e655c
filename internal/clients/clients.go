// Package clients manages the named client dashboards and their YAML file.
package clients

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrDuplicate = errors.New("client already exists")
	ErrNotFound  = errors.New("client not found")
	ErrInvalid   = errors.New("invalid client")
)

type Client struct {
	ID    string `yaml:"id" json:"id"`
	Name  string `yaml:"name" json:"name" validate:"required,max=60"`
	Color string `yaml:"color" json:"color" validate:"required,hexcolor"`
}

// Defaults are used when no clients file exists yet.
var Defaults = []Client{
	{ID: "alimerka", Name: "ALIMERKA", Color: "#10b981"},
	{ID: "carrefour", Name: "CARREFOUR", Color: "#3b82f6"},
	{ID: "basicfit", Name: "BASIC-FIT", Color: "#ff7000"},
}

// DefaultColor is assigned when a client is created without one.
const DefaultColor = "#6366f1"

// NewClient normalises name and derives the ID.
func NewClient(name, color string) Client {
	name = strings.ToUpper(strings.TrimSpace(name))

	color = strings.TrimSpace(color)
	if color == "" {
		color = DefaultColor
	}

	return Client{ID: Slug(name), Name: name, Color: color}
}

// Slug lower-cases name and replaces everything outside [a-z0-9] with '-'.
func Slug(name string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}

		return '-'
	}, strings.ToLower(strings.TrimSpace(name)))
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks name and color and reports every failing field.
func (c Client) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", strings.ToLower(fe.Field()), fe.Tag()))
	}

	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, ", "))
}
