package validation

import (
	"testing"

	"whvmatch/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRole(t *testing.T) {
	t.Parallel()
	r, err := ValidateRole(" Employer ")
	require.NoError(t, err)
	assert.Equal(t, models.RoleEmployer, r)

	r, err = ValidateRole("whv")
	require.NoError(t, err)
	assert.Equal(t, models.RoleWHV, r)

	_, err = ValidateRole("admin")
	assert.Error(t, err)
}

func TestValidateState(t *testing.T) {
	t.Parallel()
	assert.NoError(t, ValidateState(""))
	assert.NoError(t, ValidateState("qld"))
	assert.Error(t, ValidateState("CA"))
}

func TestValidateVisa(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		typ     models.VisaType
		stage   models.VisaStage
		wantErr bool
	}{
		{"Empty", "", "", false},
		{"417 First", models.VisaType417, models.VisaStageFirst, false},
		{"462 Third", models.VisaType462, models.VisaStageThird, false},
		{"Unknown Type", "500", models.VisaStageFirst, true},
		{"Unknown Stage", models.VisaType417, "fourth", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateVisa(tt.typ, tt.stage)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateNameAndPay(t *testing.T) {
	t.Parallel()
	assert.Error(t, ValidateName("title", "   ", 10))
	assert.Error(t, ValidateName("title", "abcdefghijk", 10))
	assert.NoError(t, ValidateName("title", "Picker", 10))

	assert.NoError(t, ValidatePayRange(25, 32))
	assert.NoError(t, ValidatePayRange(25, 0))
	assert.Error(t, ValidatePayRange(-1, 10))
	assert.Error(t, ValidatePayRange(40, 30))
}
