package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateStructured_CustomTags(t *testing.T) {
	v := New()

	type form struct {
		Name  string `validate:"required,applicant_name"`
		Phone string `validate:"required,kenyan_msisdn"`
		ID    string `validate:"required,kenyan_id"`
		Type  string `validate:"required,loan_type"`
	}

	errs := v.ValidateStructured(&form{
		Name:  "Jane Wanjiru",
		Phone: "0712345678",
		ID:    "12345678",
		Type:  "personal",
	})
	assert.Nil(t, errs)

	errs = v.ValidateStructured(&form{
		Name:  "J4ne",
		Phone: "0812345678",
		ID:    "123",
		Type:  "boat",
	})
	assert.Equal(t, "Please enter your full name (letters only)", errs["Name"])
	assert.Equal(t, "Please enter a valid Safaricom number (07XXXXXXXX)", errs["Phone"])
	assert.Equal(t, "Please enter a valid Kenyan ID (7-10 digits)", errs["ID"])
	assert.Equal(t, "Please select your loan purpose", errs["Type"])
}

func TestValidateStructured_Required(t *testing.T) {
	v := New()

	type form struct {
		Amount int64 `validate:"required,gt=0"`
	}

	errs := v.ValidateStructured(&form{})
	assert.Equal(t, "This field is required", errs["Amount"])

	errs = v.ValidateStructured(&form{Amount: 16800})
	assert.Nil(t, errs)
}
