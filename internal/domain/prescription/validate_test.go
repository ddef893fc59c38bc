package prescription

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"
)

// validPrescription mirrors the accepted intake used across the package tests.
func validPrescription() *Prescription {
	p := New()
	p.SetFirstName("Himura")
	p.SetLastName("Kenshin")
	p.SetAddress("555 Swanston Street, Melbourne, VIC 3000, Australia")
	p.SetSphere(-5.0)
	p.SetCylinder(2.0)
	p.SetAxis(90)
	p.SetExaminationDate(time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC))
	p.SetOptometrist("Dr. Lisa Lucky")
	return p
}

func TestValidate_Valid(t *testing.T) {
	if err := Validate(validPrescription()); err != nil {
		t.Fatalf("expected valid prescription, got %v", err)
	}
}

func TestValidate_Bounds(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(p *Prescription)
		wantField string
	}{
		{"first name 4 chars", func(p *Prescription) { p.SetFirstName("Abcd") }, ""},
		{"first name 15 chars", func(p *Prescription) { p.SetFirstName(strings.Repeat("a", 15)) }, ""},
		{"first name 3 chars", func(p *Prescription) { p.SetFirstName("Abc") }, "first_name"},
		{"first name 16 chars", func(p *Prescription) { p.SetFirstName(strings.Repeat("a", 16)) }, "first_name"},
		{"first name empty", func(p *Prescription) { p.SetFirstName("") }, "first_name"},
		{"first name Hi", func(p *Prescription) { p.SetFirstName("Hi") }, "first_name"},
		{"last name 4 chars", func(p *Prescription) { p.SetLastName("Abcd") }, ""},
		{"last name 15 chars", func(p *Prescription) { p.SetLastName(strings.Repeat("b", 15)) }, ""},
		{"last name 3 chars", func(p *Prescription) { p.SetLastName("Abc") }, "last_name"},
		{"last name 16 chars", func(p *Prescription) { p.SetLastName(strings.Repeat("b", 16)) }, "last_name"},
		{"address 20 chars", func(p *Prescription) { p.SetAddress(strings.Repeat("x", 20)) }, ""},
		{"address 19 chars", func(p *Prescription) { p.SetAddress(strings.Repeat("x", 19)) }, "address"},
		{"address empty", func(p *Prescription) { p.SetAddress("") }, "address"},
		{"sphere -20.00", func(p *Prescription) { p.SetSphere(-20.00) }, ""},
		{"sphere 20.00", func(p *Prescription) { p.SetSphere(20.00) }, ""},
		{"sphere -20.01", func(p *Prescription) { p.SetSphere(-20.01) }, "sphere"},
		{"sphere 20.01", func(p *Prescription) { p.SetSphere(20.01) }, "sphere"},
		{"cylinder -4.00", func(p *Prescription) { p.SetCylinder(-4.00) }, ""},
		{"cylinder 4.00", func(p *Prescription) { p.SetCylinder(4.00) }, ""},
		{"cylinder -4.01", func(p *Prescription) { p.SetCylinder(-4.01) }, "cylinder"},
		{"cylinder 4.01", func(p *Prescription) { p.SetCylinder(4.01) }, "cylinder"},
		{"axis 0", func(p *Prescription) { p.SetAxis(0) }, ""},
		{"axis 180", func(p *Prescription) { p.SetAxis(180) }, ""},
		{"axis -1", func(p *Prescription) { p.SetAxis(-1) }, "axis"},
		{"axis 181", func(p *Prescription) { p.SetAxis(181) }, "axis"},
		{"sphere NaN", func(p *Prescription) { p.SetSphere(math.NaN()) }, "sphere"},
		{"cylinder +Inf", func(p *Prescription) { p.SetCylinder(math.Inf(1)) }, "cylinder"},
		{"axis NaN", func(p *Prescription) { p.SetAxis(math.NaN()) }, "axis"},
		{"optometrist 8 chars", func(p *Prescription) { p.SetOptometrist("Dr. Lisa") }, ""},
		{"optometrist 25 chars", func(p *Prescription) { p.SetOptometrist(strings.Repeat("o", 25)) }, ""},
		{"optometrist 7 chars", func(p *Prescription) { p.SetOptometrist("Dr. Liz") }, "optometrist"},
		{"optometrist 26 chars", func(p *Prescription) { p.SetOptometrist(strings.Repeat("o", 26)) }, "optometrist"},
		{"unset examination date", func(p *Prescription) { p.SetExaminationDate(time.Time{}) }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPrescription()
			tt.mutate(p)
			err := Validate(p)

			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("expected valid, got %v", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("expected field %s, got %s", tt.wantField, verr.Field)
			}
			if !errors.Is(err, ErrValidation) {
				t.Error("expected errors.Is(err, ErrValidation)")
			}
		})
	}
}

func TestValidate_CheckOrder(t *testing.T) {
	p := New()
	p.SetSphere(99)
	p.SetAxis(-1)

	var verr *ValidationError
	if !errors.As(Validate(p), &verr) || verr.Field != "first_name" {
		t.Fatalf("expected first_name to be reported first, got %v", verr)
	}

	p = validPrescription()
	p.SetSphere(25)
	p.SetCylinder(9)
	p.SetOptometrist("x")
	if !errors.As(Validate(p), &verr) || verr.Field != "sphere" {
		t.Fatalf("expected sphere to be reported before cylinder, got %v", verr)
	}
}

func TestValidate_CountsCharactersNotBytes(t *testing.T) {
	p := validPrescription()
	p.SetFirstName("Zoë") // 3 runes, 4 bytes
	if err := Validate(p); err == nil {
		t.Error("expected 3-character name to be rejected")
	}
	p.SetFirstName("Renée")
	if err := Validate(p); err != nil {
		t.Errorf("expected 5-character name to be accepted, got %v", err)
	}
}

func TestValidateRemark(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		category  string
		wantField string
	}{
		{"client 8 words", "This is a valid remark from the client.", CategoryClient, ""},
		{"optometrist 6 words", "Patient should return in six months", CategoryOptometrist, ""},
		{"exactly 20 words", "Word " + strings.Repeat("word ", 19), CategoryClient, ""},
		{"surrounding whitespace", "   Lenses fit well and vision is clear   ", CategoryClient, ""},
		{"tabs and newlines", "Lenses\tfit\nwell  and vision\r\nclear", CategoryClient, ""},
		{"5 words", "Too short to be valid", CategoryClient, "remark"},
		{"21 words", "Word " + strings.Repeat("word ", 20), CategoryClient, "remark"},
		{"empty", "", CategoryClient, "remark"},
		{"whitespace only", "   \t ", CategoryClient, "remark"},
		{"lowercase start", "this remark starts with a lowercase letter", CategoryClient, "remark"},
		{"leading digit", "3 pairs of lenses were ordered today", CategoryClient, "remark"},
		{"category Doctor", "This is a valid remark from the doctor.", "Doctor", "category"},
		{"category lowercase", "This is a valid remark from the client.", "client", "category"},
		{"category empty", "This is a valid remark from the client.", "", "category"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRemark(tt.text, tt.category)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("expected valid remark, got %v", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("expected field %s, got %s (%s)", tt.wantField, verr.Field, verr.Reason)
			}
		})
	}
}

func TestValidateRemark_LongButWithinWordCount(t *testing.T) {
	text := "Extraordinarily comprehensive recommendations regarding antireflective photochromatic polycarbonate lenses were thoroughly discussed"
	if n := WordCount(text); n > RemarkMaxWords {
		t.Fatalf("fixture has %d words", n)
	}
	if err := ValidateRemark(text, CategoryOptometrist); err != nil {
		t.Errorf("expected long remark within word bounds to be accepted, got %v", err)
	}
}

func TestValidCategory(t *testing.T) {
	for _, c := range []string{CategoryClient, CategoryOptometrist} {
		if !ValidCategory(c) {
			t.Errorf("expected %q to be valid", c)
		}
	}
	for _, c := range []string{"Doctor", "CLIENT", "optometrist", " Client"} {
		if ValidCategory(c) {
			t.Errorf("expected %q to be invalid", c)
		}
	}
}
