package api

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/JakeFAU/opportunity-discovery/internal/opportunity"
)

// customRules are the domain tags usable in validate struct tags.
var customRules = map[string]validator.Func{
	"category": func(fl validator.FieldLevel) bool {
		return opportunity.Category(fl.Field().String()).Valid()
	},
	"compensation": func(fl validator.FieldLevel) bool {
		return opportunity.Compensation(fl.Field().String()).Valid()
	},
}

// newValidator panics when a rule cannot be registered; that is a
// programming error caught at startup.
func newValidator() *validator.Validate {
	v := validator.New()
	if err := registerRules(v, customRules); err != nil {
		panic(err)
	}
	return v
}

func registerRules(v *validator.Validate, rules map[string]validator.Func) error {
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register validation %q: %w", tag, err)
		}
	}
	return nil
}

// validationMessage returns the first failing field and rule.
func validationMessage(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		return fmt.Sprintf("validation error: %s - %s", ve[0].Field(), ve[0].Tag())
	}
	return "validation error: invalid request"
}

type searchQuery struct {
	Keyword  string `validate:"max=200"`
	Location string `validate:"max=200"`
	Page     int    `validate:"gte=0,lte=100"`
	PageSize int    `validate:"gte=0,lte=50"`
}

type saveRequest struct {
	UserID        string `json:"-" validate:"required,max=128"`
	OpportunityID string `json:"-" validate:"required,max=128"`
	Note          string `json:"note" validate:"max=2000"`
}

// parseFilter reads the filter query parameters. Skills may repeat or be
// comma separated.
func parseFilter(q url.Values) (opportunity.Filter, error) {
	f := opportunity.Filter{
		Category:     opportunity.Category(strings.ToLower(strings.TrimSpace(q.Get("category")))),
		Location:     strings.TrimSpace(q.Get("location")),
		Compensation: opportunity.Compensation(strings.ToLower(strings.TrimSpace(q.Get("compensation")))),
		Keyword:      strings.TrimSpace(q.Get("keyword")),
	}
	for _, raw := range q["skills"] {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				f.Skills = append(f.Skills, s)
			}
		}
	}
	var err error
	if f.Limit, err = intParam(q, "limit"); err != nil {
		return f, err
	}
	if f.Offset, err = intParam(q, "offset"); err != nil {
		return f, err
	}
	if raw := q.Get("is_remote"); raw != "" {
		remote, err := strconv.ParseBool(raw)
		if err != nil {
			return f, fmt.Errorf("is_remote must be a boolean")
		}
		f.IsRemote = &remote
	}
	if raw := q.Get("shuffle"); raw != "" {
		if f.Shuffle, err = strconv.ParseBool(raw); err != nil {
			return f, fmt.Errorf("shuffle must be a boolean")
		}
	}
	return f, nil
}

func parseSearch(q url.Values) (searchQuery, error) {
	sq := searchQuery{
		Keyword:  strings.TrimSpace(q.Get("keyword")),
		Location: strings.TrimSpace(q.Get("location")),
	}
	var err error
	if sq.Page, err = intParam(q, "page"); err != nil {
		return sq, err
	}
	if sq.PageSize, err = intParam(q, "page_size"); err != nil {
		return sq, err
	}
	return sq, nil
}

func intParam(q url.Values, name string) (int, error) {
	raw := q.Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return n, nil
}
