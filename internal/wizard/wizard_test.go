package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func completeForm() *Form {
	f := NewForm()
	f.Basic = BasicInfo{BrandID: 1, ModelID: 2, Year: 2020, Price: 85000}
	f.Details = Details{
		Mileage:     intPtr(50000),
		FuelType:    "Petrol",
		GearboxType: "Automatic",
		BodyType:    "Sedan",
		Condition:   "Good",
	}
	f.Images = ImageCount{New: 3}
	return f
}

func TestForwardBlockedUntilStepValid(t *testing.T) {
	f := NewForm()
	require.Equal(t, StepBasicInfo, f.Step())

	err := f.Next()
	require.Error(t, err)
	var se *StepError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StepBasicInfo, se.Step)
	assert.Equal(t, StepBasicInfo, f.Step(), "failed validation must not advance")

	f.Basic = BasicInfo{BrandID: 1, ModelID: 2, Year: 2020, Price: 85000}
	require.NoError(t, f.Next())
	assert.Equal(t, StepDetails, f.Step())
}

func TestBackNeverBlockedAndNeverValidates(t *testing.T) {
	f := completeForm()
	require.NoError(t, f.Next())
	require.NoError(t, f.Next())
	require.Equal(t, StepImages, f.Step())

	// Invalidate an earlier step, then walk back: no validation runs.
	f.Basic = BasicInfo{}
	f.Back()
	assert.Equal(t, StepDetails, f.Step())
	f.Back()
	assert.Equal(t, StepBasicInfo, f.Step())
	f.Back() // at first step Back is a no-op
	assert.Equal(t, StepBasicInfo, f.Step())
}

func TestWalkToPreview(t *testing.T) {
	f := completeForm()
	require.NoError(t, f.Next())
	require.NoError(t, f.Next())
	require.NoError(t, f.Next())
	assert.Equal(t, StepPreview, f.Step())
	// Preview is the submit step; Next stays put without error.
	require.NoError(t, f.Next())
	assert.Equal(t, StepPreview, f.Step())
}

func TestBasicInfoValidation(t *testing.T) {
	tests := []struct {
		name    string
		basic   BasicInfo
		reasons int
	}{
		{"all empty", BasicInfo{}, 4},
		{"missing model", BasicInfo{BrandID: 1, Year: 2020, Price: 1000}, 1},
		{"zero price", BasicInfo{BrandID: 1, ModelID: 2, Year: 2020}, 1},
		{"complete", BasicInfo{BrandID: 1, ModelID: 2, Year: 2020, Price: 1000}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.basic.Validate()
			if tt.reasons == 0 {
				assert.NoError(t, err)
				return
			}
			var se *StepError
			require.ErrorAs(t, err, &se)
			assert.Len(t, se.Reasons, tt.reasons)
		})
	}
}

func TestDetailsValidation(t *testing.T) {
	valid := Details{
		Mileage:     intPtr(0), // zero km is a legal reading
		FuelType:    "Diesel",
		GearboxType: "Manual",
		BodyType:    "SUV",
		Condition:   "New",
	}
	assert.NoError(t, valid.Validate())

	missingMileage := valid
	missingMileage.Mileage = nil
	assert.Error(t, missingMileage.Validate())

	negative := valid
	negative.Mileage = intPtr(-1)
	assert.Error(t, negative.Validate())

	badEnum := valid
	badEnum.FuelType = "Steam"
	assert.Error(t, badEnum.Validate())
}

func TestImageCountBoundaries(t *testing.T) {
	tests := []struct {
		name  string
		count ImageCount
		ok    bool
	}{
		{"zero images", ImageCount{}, false},
		{"exactly one", ImageCount{New: 1}, true},
		{"exactly ten", ImageCount{New: 10}, true},
		{"eleven", ImageCount{New: 11}, false},
		{"existing minus deletions hits zero", ImageCount{Existing: 3, PendingDeletion: 3}, false},
		{"existing minus deletions plus new", ImageCount{Existing: 5, PendingDeletion: 2, New: 7}, true},
		{"deletions push over limit anyway", ImageCount{Existing: 8, PendingDeletion: 1, New: 4}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.count.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidateAllStopsAtFirstFailure(t *testing.T) {
	f := completeForm()
	require.NoError(t, f.ValidateAll())

	f.Images = ImageCount{}
	err := f.ValidateAll()
	var se *StepError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StepImages, se.Step)

	f.Basic.Price = 0
	err = f.ValidateAll()
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StepBasicInfo, se.Step, "earliest failing step wins")
}
