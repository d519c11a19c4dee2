// Package wizard models the four-step listing submission flow as an
// explicit state machine: Basic Info → Details → Images → Preview.
// Each step owns a tagged struct with a pure validation predicate;
// forward navigation is blocked exactly when the current step's
// predicate fails, and backward navigation always succeeds without
// validating anything.
package wizard

import (
	"fmt"
	"strings"

	"github.com/qmotor/car-marketplace/internal/model"
)

// Step identifies one of the four ordered wizard steps.
type Step int

const (
	StepBasicInfo Step = iota + 1
	StepDetails
	StepImages
	StepPreview
)

// FirstStep and LastStep bound navigation.
const (
	FirstStep = StepBasicInfo
	LastStep  = StepPreview
)

func (s Step) String() string {
	switch s {
	case StepBasicInfo:
		return "basic_info"
	case StepDetails:
		return "details"
	case StepImages:
		return "images"
	case StepPreview:
		return "preview"
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// Image count bounds enforced at the Images step.
const (
	MinImages = 1
	MaxImages = 10
)

// StepError reports why a step's validation predicate failed.
type StepError struct {
	Step    Step
	Reasons []string
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s invalid: %s", e.Step, strings.Join(e.Reasons, ", "))
}

// BasicInfo is the first step: brand, model, year and price must all
// be chosen. Zero values mean the field was left empty.
type BasicInfo struct {
	BrandID uint64
	ModelID uint64
	Year    int
	Price   int
}

// Validate returns nil when every required field is set.
func (b BasicInfo) Validate() error {
	var missing []string
	if b.BrandID == 0 {
		missing = append(missing, "brand required")
	}
	if b.ModelID == 0 {
		missing = append(missing, "model required")
	}
	if b.Year == 0 {
		missing = append(missing, "year required")
	}
	if b.Price <= 0 {
		missing = append(missing, "price required")
	}
	if missing != nil {
		return &StepError{Step: StepBasicInfo, Reasons: missing}
	}
	return nil
}

// Details is the second step. Mileage is a pointer so a genuine zero
// reading (a new car) is distinguishable from an empty field. The
// enumerated fields must also hold an allowed value; a select that was
// tampered with fails the step rather than the database insert.
type Details struct {
	Mileage     *int
	FuelType    string
	GearboxType string
	BodyType    string
	Condition   string
}

// Validate returns nil when every required field is set and every
// enumerated field holds an allowed value.
func (d Details) Validate() error {
	var reasons []string
	if d.Mileage == nil {
		reasons = append(reasons, "mileage required")
	} else if *d.Mileage < 0 {
		reasons = append(reasons, "mileage must not be negative")
	}
	reasons = appendEnumReason(reasons, "fuel_type", d.FuelType, model.FuelTypes)
	reasons = appendEnumReason(reasons, "gearbox_type", d.GearboxType, model.GearboxTypes)
	reasons = appendEnumReason(reasons, "body_type", d.BodyType, model.BodyTypes)
	reasons = appendEnumReason(reasons, "condition", d.Condition, model.Conditions)
	if reasons != nil {
		return &StepError{Step: StepDetails, Reasons: reasons}
	}
	return nil
}

func appendEnumReason(reasons []string, field, value string, allowed []string) []string {
	if value == "" {
		return append(reasons, field+" required")
	}
	if !model.ValidEnum(value, allowed) {
		return append(reasons, field+" invalid")
	}
	return reasons
}

// ImageCount is the third step's state: images already stored, images
// marked for deletion, and newly added files.
type ImageCount struct {
	Existing        int
	PendingDeletion int
	New             int
}

// Total is the image count the listing would end up with.
func (c ImageCount) Total() int { return c.Existing - c.PendingDeletion + c.New }

// Validate enforces 1 ≤ total ≤ 10.
func (c ImageCount) Validate() error {
	switch total := c.Total(); {
	case total < MinImages:
		return &StepError{Step: StepImages, Reasons: []string{"at least one image required"}}
	case total > MaxImages:
		return &StepError{Step: StepImages, Reasons: []string{fmt.Sprintf("maximum %d images allowed", MaxImages)}}
	}
	return nil
}

// Form is the wizard's full state. Preview has no predicate of its
// own; it is the submit step.
type Form struct {
	Basic   BasicInfo
	Details Details
	Images  ImageCount

	step Step
}

// NewForm returns a form positioned at the first step.
func NewForm() *Form { return &Form{step: FirstStep} }

// Step reports the current step.
func (f *Form) Step() Step { return f.step }

// validateStep runs the predicate of one step.
func (f *Form) validateStep(s Step) error {
	switch s {
	case StepBasicInfo:
		return f.Basic.Validate()
	case StepDetails:
		return f.Details.Validate()
	case StepImages:
		return f.Images.Validate()
	case StepPreview:
		return nil
	}
	return fmt.Errorf("unknown step %d", int(s))
}

// Next advances to the following step iff the current step's predicate
// holds. From the last step there is nowhere to go; the caller submits
// instead.
func (f *Form) Next() error {
	if err := f.validateStep(f.step); err != nil {
		return err
	}
	if f.step < LastStep {
		f.step++
	}
	return nil
}

// Back moves one step backwards. It never validates and never fails;
// at the first step it is a no-op.
func (f *Form) Back() {
	if f.step > FirstStep {
		f.step--
	}
}

// ValidateAll runs every gating predicate in order and returns the
// first failure. Submission uses it so a payload assembled in a single
// request passes exactly the checks stepwise navigation would have
// applied.
func (f *Form) ValidateAll() error {
	for s := FirstStep; s < LastStep; s++ {
		if err := f.validateStep(s); err != nil {
			return err
		}
	}
	return nil
}
