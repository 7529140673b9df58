package market

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/reciloop/reciloop/internal/api"
)

var (
	// ErrRequired is returned when a required form field is blank.
	ErrRequired = errors.New("required field missing")
	// ErrInvalidNumber is returned when a required numeric field does not parse.
	ErrInvalidNumber = errors.New("invalid number")
)

// Messages shown to the user when form validation fails.
const (
	MsgLoginRequired = "Por favor, preencha todos os campos"
	MsgOfferRequired = "Por favor, preencha todos os campos obrigatórios"
)

// FormError carries the user-facing message for a validation failure.
type FormError struct {
	Field   string
	Message string
	Err     error
}

func (e *FormError) Error() string {
	return e.Message
}

func (e *FormError) Unwrap() error {
	return e.Err
}

// LoginForm is the login page input.
type LoginForm struct {
	Email    string
	Password string
}

// Validate rejects blank email or password.
func (f LoginForm) Validate() error {
	if strings.TrimSpace(f.Email) == "" {
		return &FormError{Field: "email", Message: MsgLoginRequired, Err: ErrRequired}
	}
	if f.Password == "" {
		return &FormError{Field: "password", Message: MsgLoginRequired, Err: ErrRequired}
	}
	return nil
}

// OfferForm is the raw text of the new-offer form.
type OfferForm struct {
	Name        string
	Category    string
	Description string
	Quantity    string
	Unit        string
	Price       string
	Urgency     string
}

// NewOfferForm returns a form with the default category, unit and urgency.
func NewOfferForm() OfferForm {
	return OfferForm{
		Category: Categories[0],
		Unit:     Units[0],
		Urgency:  string(UrgencyMedium),
	}
}

// Validate checks required fields and parses the numeric ones.
func (f OfferForm) Validate() (api.NewOffer, error) {
	required := []struct {
		field, value string
	}{
		{"name", f.Name},
		{"description", f.Description},
		{"quantity", f.Quantity},
		{"price", f.Price},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return api.NewOffer{}, &FormError{Field: r.field, Message: MsgOfferRequired, Err: ErrRequired}
		}
	}
	qty, err := parseDecimal(f.Quantity)
	if err != nil {
		return api.NewOffer{}, &FormError{Field: "quantity", Message: "Quantidade inválida", Err: err}
	}
	price, err := parseDecimal(f.Price)
	if err != nil {
		return api.NewOffer{}, &FormError{Field: "price", Message: "Preço inválido", Err: err}
	}

	out := api.NewOffer{
		Name:        strings.TrimSpace(f.Name),
		Category:    f.Category,
		Description: strings.TrimSpace(f.Description),
		Quantity:    qty,
		Unit:        f.Unit,
		Price:       price,
		Urgency:     f.Urgency,
	}
	if out.Category == "" {
		out.Category = Categories[0]
	}
	if out.Unit == "" {
		out.Unit = Units[0]
	}
	if out.Urgency == "" {
		out.Urgency = string(UrgencyMedium)
	}
	return out, nil
}

// ROIForm is the raw text of the ROI calculator.
type ROIForm struct {
	WasteType    string
	Volume       string
	DisposalCost string
	MarketPrice  string
}

// DefaultROIForm is the calculator's initial state.
func DefaultROIForm() ROIForm {
	return ROIForm{
		WasteType:    "Borra Oleosa",
		Volume:       "100",
		DisposalCost: "200",
		MarketPrice:  "150",
	}
}

// Input converts the form to an API request. Numbers that do not parse become 0.
func (f ROIForm) Input() api.ROIInput {
	return api.ROIInput{
		WasteType:    strings.TrimSpace(f.WasteType),
		Volume:       parseOrZero(f.Volume),
		DisposalCost: parseOrZero(f.DisposalCost),
		MarketPrice:  parseOrZero(f.MarketPrice),
	}
}

// parseDecimal accepts both "1234.5" and the pt-BR "1234,5".
func parseDecimal(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", s, ErrInvalidNumber)
	}
	return v, nil
}

func parseOrZero(s string) float64 {
	v, err := parseDecimal(s)
	if err != nil {
		return 0
	}
	return v
}
