package prescription

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Intake is the document form of a prescription together with the remarks
// to attach to it.
type Intake struct {
	FirstName       string         `json:"first_name" yaml:"first_name" toml:"first_name"`
	LastName        string         `json:"last_name" yaml:"last_name" toml:"last_name"`
	Address         string         `json:"address" yaml:"address" toml:"address"`
	Sphere          float64        `json:"sphere" yaml:"sphere" toml:"sphere"`
	Cylinder        float64        `json:"cylinder" yaml:"cylinder" toml:"cylinder"`
	Axis            float64        `json:"axis" yaml:"axis" toml:"axis"`
	ExaminationDate string         `json:"examination_date,omitempty" yaml:"examination_date,omitempty" toml:"examination_date,omitempty"`
	Optometrist     string         `json:"optometrist" yaml:"optometrist" toml:"optometrist"`
	Remarks         []RemarkIntake `json:"remarks,omitempty" yaml:"remarks,omitempty" toml:"remarks,omitempty"`
}

type RemarkIntake struct {
	Text     string `json:"text" yaml:"text" toml:"text"`
	Category string `json:"category" yaml:"category" toml:"category"`
}

// Outcome reports what happened to an Intake.
type Outcome struct {
	Accepted bool            `json:"accepted"`
	Reason   string          `json:"reason,omitempty"`
	Remarks  []RemarkOutcome `json:"remarks,omitempty"`
}

// RemarkOutcome reports one remark. Failed is set when the remark was valid
// but its journal write did not succeed.
type RemarkOutcome struct {
	Accepted bool   `json:"accepted"`
	Failed   bool   `json:"failed,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// RemarkNotRecorded is the reason given for a remark whose write failed.
const RemarkNotRecorded = "failed to record remark"

// RemarksFailed reports whether any remark in o hit a journal failure.
func (o Outcome) RemarksFailed() bool {
	for _, r := range o.Remarks {
		if r.Failed {
			return true
		}
	}
	return false
}

// Format identifies an intake document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

var ErrUnknownFormat = errors.New("unknown intake format")

// FormatFromPath picks the decoder from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
}

func DecodeIntake(r io.Reader, format Format) (Intake, error) {
	var in Intake
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&in); err != nil {
			return Intake{}, fmt.Errorf("decode json intake: %w", err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&in); err != nil {
			return Intake{}, fmt.Errorf("decode yaml intake: %w", err)
		}
	case FormatTOML:
		if _, err := toml.NewDecoder(r).Decode(&in); err != nil {
			return Intake{}, fmt.Errorf("decode toml intake: %w", err)
		}
	default:
		return Intake{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return in, nil
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// Prescription builds a fresh record from the intake through the setters.
// An empty examination date leaves the date unset.
func (in Intake) Prescription() (*Prescription, error) {
	p := New()
	p.SetFirstName(in.FirstName)
	p.SetLastName(in.LastName)
	p.SetAddress(in.Address)
	p.SetSphere(in.Sphere)
	p.SetCylinder(in.Cylinder)
	p.SetAxis(in.Axis)
	p.SetOptometrist(in.Optometrist)

	if s := strings.TrimSpace(in.ExaminationDate); s != "" {
		t, err := parseDate(s)
		if err != nil {
			return nil, err
		}
		p.SetExaminationDate(t)
	}
	return p, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid examination_date %q", s)
}

// Process submits the prescription and then each remark in order. Remarks are
// attempted even when the prescription itself is rejected. An error is
// returned only when nothing has been written: a bad date or a failed
// prescription write. Remark write failures are reported per remark in the
// Outcome.
func (s *Service) Process(ctx context.Context, in Intake) (Outcome, error) {
	p, err := in.Prescription()
	if err != nil {
		return Outcome{}, err
	}

	var out Outcome
	if err := s.Submit(ctx, p); err != nil {
		if errors.Is(err, ErrPersistence) {
			return Outcome{}, err
		}
		out.Reason = err.Error()
	} else {
		out.Accepted = true
	}

	for _, r := range in.Remarks {
		ro := RemarkOutcome{Accepted: true}
		if err := s.SubmitRemark(ctx, p, r.Text, r.Category); err != nil {
			ro = RemarkOutcome{Reason: err.Error()}
			if errors.Is(err, ErrPersistence) {
				ro = RemarkOutcome{Failed: true, Reason: RemarkNotRecorded}
			}
		}
		out.Remarks = append(out.Remarks, ro)
	}
	return out, nil
}

// Check runs validation only; nothing is written. Remark capacity is applied
// against the remarks that precede each one in the intake.
func Check(in Intake) (Outcome, error) {
	p, err := in.Prescription()
	if err != nil {
		return Outcome{}, err
	}

	var out Outcome
	if err := Validate(p); err != nil {
		out.Reason = err.Error()
	} else {
		out.Accepted = true
	}

	for _, r := range in.Remarks {
		ro := RemarkOutcome{Accepted: true}
		err := ValidateRemark(r.Text, r.Category)
		if err == nil {
			err = p.acceptRemark(r.Text, func() error { return nil })
		}
		if err != nil {
			ro = RemarkOutcome{Reason: err.Error()}
		}
		out.Remarks = append(out.Remarks, ro)
	}
	return out, nil
}
