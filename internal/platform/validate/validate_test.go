package validate

import (
	"errors"
	"testing"

	perr "bothunt/internal/platform/errors"
)

func TestStructMapsToValidationError(t *testing.T) {
	type args struct {
		Detector string `json:"detector" validate:"required"`
		Workers  int    `json:"workers" validate:"min=1"`
	}

	if err := Struct(args{Detector: "single-pass", Workers: 4}); err != nil {
		t.Fatalf("valid struct should pass: %v", err)
	}

	err := Struct(args{Detector: "single-pass", Workers: 0})
	if err == nil {
		t.Fatalf("expected validation failure")
	}
	if !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("code = %v, want Validation", perr.CodeOf(err))
	}
	e, ok := perr.As(err)
	if !ok || e.Field() != "workers" {
		t.Fatalf("field = %q, want workers", e.Field())
	}
	if e.Error() != "workers must be at least 1" {
		t.Fatalf("unexpected min message: %q", e.Error())
	}
}

func TestFieldAndMessage_FallsBackToStructName(t *testing.T) {
	type s struct {
		Plain int `validate:"min=1"`
	}
	err := Get().Validator.Struct(s{Plain: 0})
	field, _ := FieldAndMessage(err)
	if field != "Plain" {
		t.Fatalf("expected field=Plain, got %s", field)
	}
}

func TestFieldAndMessage_GenericError(t *testing.T) {
	field, msg := FieldAndMessage(errors.New("boom"))
	if field != "" || msg != "boom" {
		t.Fatalf("expected generic passthrough, got field=%q msg=%q", field, msg)
	}
}

func TestCommaInts(t *testing.T) {
	type s struct {
		IDs string `json:"ids" validate:"comma_ints"`
	}

	ok := []string{"30", "30,31", " 30, 31 ,32 "}
	for _, in := range ok {
		if err := Struct(s{IDs: in}); err != nil {
			t.Fatalf("comma_ints rejected %q: %v", in, err)
		}
	}

	bad := []string{"", "  ", "30, x", "a,b", "30;31"}
	for _, in := range bad {
		err := Struct(s{IDs: in})
		if err == nil {
			t.Fatalf("comma_ints accepted %q", in)
		}
		if got := err.Error(); got != "ids must be a comma-separated list of integers" {
			t.Fatalf("unexpected comma_ints message for %q: %q", in, got)
		}
	}
}
