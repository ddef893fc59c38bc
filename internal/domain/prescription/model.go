package prescription

import "time"

// Remark categories accepted by AddRemark. Matching is exact and case-sensitive.
const (
	CategoryClient      = "Client"
	CategoryOptometrist = "Optometrist"
)

// MaxRemarks is the number of remarks a single prescription can carry.
const MaxRemarks = 2

// Prescription is an optical prescription record. Fields are populated through
// the setters and checked by Validate before anything is written.
//
// A Prescription is not safe for concurrent use.
type Prescription struct {
	firstName       string
	lastName        string
	address         string
	sphere          float64
	cylinder        float64
	axis            float64
	examinationDate time.Time
	optometrist     string
	remarks         []string
}

// New returns an empty prescription with no remarks.
func New() *Prescription {
	return &Prescription{remarks: make([]string, 0, MaxRemarks)}
}

func (p *Prescription) SetFirstName(s string)          { p.firstName = s }
func (p *Prescription) SetLastName(s string)           { p.lastName = s }
func (p *Prescription) SetAddress(s string)            { p.address = s }
func (p *Prescription) SetSphere(v float64)            { p.sphere = v }
func (p *Prescription) SetCylinder(v float64)          { p.cylinder = v }
func (p *Prescription) SetAxis(v float64)              { p.axis = v }
func (p *Prescription) SetExaminationDate(t time.Time) { p.examinationDate = t }
func (p *Prescription) SetOptometrist(s string)        { p.optometrist = s }

func (p *Prescription) FirstName() string          { return p.firstName }
func (p *Prescription) LastName() string           { return p.lastName }
func (p *Prescription) Address() string            { return p.address }
func (p *Prescription) Sphere() float64            { return p.sphere }
func (p *Prescription) Cylinder() float64          { return p.cylinder }
func (p *Prescription) Axis() float64              { return p.axis }
func (p *Prescription) ExaminationDate() time.Time { return p.examinationDate }
func (p *Prescription) Optometrist() string        { return p.optometrist }

// Remarks returns a copy of the accepted remarks in insertion order.
func (p *Prescription) Remarks() []string {
	out := make([]string, len(p.remarks))
	copy(out, p.remarks)
	return out
}

// RemarkCount returns the number of accepted remarks.
func (p *Prescription) RemarkCount() int { return len(p.remarks) }

// acceptRemark runs commit and records text only if commit succeeds. The
// capacity check happens here as well so that no write is attempted for a full
// record.
func (p *Prescription) acceptRemark(text string, commit func() error) error {
	if len(p.remarks) >= MaxRemarks {
		return &ValidationError{Field: "remarks", Reason: "remark limit reached"}
	}
	if err := commit(); err != nil {
		return err
	}
	p.remarks = append(p.remarks, text)
	return nil
}
