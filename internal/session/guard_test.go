package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"okoa/internal/domain"
)

func TestCurrentStage_FunnelOrder(t *testing.T) {
	app := &domain.LoanApplication{}
	assert.Equal(t, domain.StageEligibility, CurrentStage(app))

	app.Name = "Jane Wanjiru"
	app.PhoneNumber = "0712345678"
	app.IDNumber = "12345678"
	app.LoanType = domain.LoanTypePersonal
	assert.Equal(t, domain.StageLoanSelection, CurrentStage(app))

	app.LoanAmount = 16800
	app.ProcessingFee = 200
	assert.Equal(t, domain.StagePayment, CurrentStage(app))

	app.PaymentConfirmed = true
	now := time.Now()
	app.ConfirmedAt = &now
	assert.Equal(t, domain.StageDashboard, CurrentStage(app))
}

func TestCurrentStage_IsStableAcrossRepeatedCalls(t *testing.T) {
	app := &domain.LoanApplication{PhoneNumber: "0712345678"}

	for i := 0; i < 3; i++ {
		assert.Equal(t, domain.StageLoanSelection, CurrentStage(app))
	}
}

func TestCanEnter(t *testing.T) {
	app := &domain.LoanApplication{
		PhoneNumber:   "0712345678",
		LoanAmount:    16800,
		ProcessingFee: 200,
	}

	// Current stage is payment; earlier stages stay reachable.
	assert.True(t, CanEnter(app, domain.StageEligibility))
	assert.True(t, CanEnter(app, domain.StageLoanSelection))
	assert.True(t, CanEnter(app, domain.StagePayment))
	assert.False(t, CanEnter(app, domain.StageDashboard))
}

func TestCanEnter_FreshSession(t *testing.T) {
	app := &domain.LoanApplication{}

	assert.True(t, CanEnter(app, domain.StageEligibility))
	assert.False(t, CanEnter(app, domain.StageLoanSelection))
	assert.False(t, CanEnter(app, domain.StagePayment))
	assert.False(t, CanEnter(app, domain.StageDashboard))
}
