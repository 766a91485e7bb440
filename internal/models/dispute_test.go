package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestDispute_CanBeResolved(t *testing.T) {
	cases := map[string]bool{
		DisputeStatusOpen:             true,
		DisputeStatusUnderReview:      true,
		DisputeStatusAwaitingResponse: true,
		DisputeStatusResolved:         false,
		DisputeStatusClosed:           false,
	}

	for status, want := range cases {
		d := &Dispute{Status: status}
		assert.Equal(t, want, d.CanBeResolved(), "статус %s", status)
	}
}

func TestDispute_CanBeClosed(t *testing.T) {
	assert.True(t, (&Dispute{Status: DisputeStatusResolved}).CanBeClosed())
	assert.False(t, (&Dispute{Status: DisputeStatusOpen}).CanBeClosed())
	assert.False(t, (&Dispute{Status: DisputeStatusUnderReview}).CanBeClosed())
	assert.False(t, (&Dispute{Status: DisputeStatusClosed}).CanBeClosed())
}

func TestDispute_IsTerminal(t *testing.T) {
	assert.True(t, (&Dispute{Status: DisputeStatusResolved}).IsTerminal())
	assert.True(t, (&Dispute{Status: DisputeStatusClosed}).IsTerminal())
	assert.False(t, (&Dispute{Status: DisputeStatusOpen}).IsTerminal())
	assert.False(t, (&Dispute{Status: DisputeStatusAwaitingResponse}).IsTerminal())
}

func TestDispute_ParticipantRole(t *testing.T) {
	customerID := uuid.New()
	sellerID := uuid.New()
	d := &Dispute{CustomerID: customerID, SellerID: sellerID}

	assert.Equal(t, DisputeRoleCustomer, d.ParticipantRole(customerID))
	assert.Equal(t, DisputeRoleSeller, d.ParticipantRole(sellerID))
	assert.Equal(t, DisputeRoleAdmin, d.ParticipantRole(uuid.New()))
}

func TestPriorityForReason(t *testing.T) {
	assert.Equal(t, DisputePriorityHigh, PriorityForReason(DisputeReasonProductNotReceived))
	assert.Equal(t, DisputePriorityHigh, PriorityForReason(DisputeReasonPaymentIssue))
	assert.Equal(t, DisputePriorityMedium, PriorityForReason(DisputeReasonProductDamaged))
	assert.Equal(t, DisputePriorityMedium, PriorityForReason(DisputeReasonOther))
}

func TestOrder_CanBeDisputed(t *testing.T) {
	for _, status := range []string{OrderStatusPaid, OrderStatusInProgress, OrderStatusCompleted} {
		o := &Order{Status: status}
		assert.True(t, o.CanBeDisputed(), "статус %s", status)
	}

	for _, status := range []string{OrderStatusPending, OrderStatusCancelled, OrderStatusRefunded} {
		o := &Order{Status: status}
		assert.False(t, o.CanBeDisputed(), "статус %s", status)
	}

	withDispute := &Order{Status: OrderStatusPaid, HasDispute: true}
	assert.False(t, withDispute.CanBeDisputed())
}

func TestOrder_IsParticipant(t *testing.T) {
	customerID := uuid.New()
	sellerID := uuid.New()
	o := &Order{CustomerID: customerID, SellerID: sellerID}

	assert.True(t, o.IsParticipant(customerID))
	assert.True(t, o.IsParticipant(sellerID))
	assert.False(t, o.IsParticipant(uuid.New()))
}
