package validator

import (
	"errors"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type sample struct {
	Amount   decimal.Decimal  `json:"amount" binding:"required,gt=0,decimal_scale=4"`
	Limit    *decimal.Decimal `json:"limit" binding:"omitempty,gt=0,decimal_scale=4"`
	Type     string           `json:"type" binding:"required,transaction_type"`
	Period   string           `json:"period" binding:"omitempty,budget_period"`
	Currency string           `json:"currency" binding:"omitempty,iso4217"`
	Theme    string           `json:"theme" binding:"omitempty,theme"`
}

func failedFields(t *testing.T, s sample) map[string]string {
	t.Helper()
	err := binding.Validator.ValidateStruct(&s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected validation errors, got %T: %v", err, err)
	}
	out := map[string]string{}
	for _, fe := range verrs {
		out[fe.Field()] = fe.Tag()
	}
	return out
}

func TestRegister(t *testing.T) {
	Register()

	valid := sample{Amount: decimal.RequireFromString("12.5"), Type: "expense", Period: "quarterly", Currency: "eur", Theme: "dark"}
	if got := failedFields(t, valid); got != nil {
		t.Fatalf("expected valid sample, got %v", got)
	}

	neg := decimal.NewFromInt(-1)
	got := failedFields(t, sample{Amount: decimal.Zero, Limit: &neg, Type: "transfer", Period: "daily", Currency: "XXX", Theme: "blue"})
	want := map[string]string{
		"amount":   "required",
		"limit":    "gt",
		"type":     "transaction_type",
		"period":   "budget_period",
		"currency": "iso4217",
		"theme":    "theme",
	}
	for field, tag := range want {
		if got[field] != tag {
			t.Errorf("field %s: expected %s failure, got %q", field, tag, got[field])
		}
	}
}

func TestRegister_DecimalScale(t *testing.T) {
	Register()

	tests := []struct {
		name   string
		amount string
		limit  string
		want   map[string]string
	}{
		{"four places", "0.0001", "12.3456", nil},
		{"trailing zeros", "1.500000", "2.10000", nil},
		{"amount too precise", "0.00001", "", map[string]string{"amount": "decimal_scale"}},
		{"limit too precise", "10", "9.99999", map[string]string{"limit": "decimal_scale"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := sample{Amount: decimal.RequireFromString(tt.amount), Type: "expense"}
			if tt.limit != "" {
				limit := decimal.RequireFromString(tt.limit)
				s.Limit = &limit
			}
			got := failedFields(t, s)
			if len(got) != len(tt.want) {
				t.Fatalf("expected failures %v, got %v", tt.want, got)
			}
			for field, tag := range tt.want {
				if got[field] != tag {
					t.Errorf("field %s: expected %s failure, got %q", field, tag, got[field])
				}
			}
		})
	}
}
