package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmlyf_back_end/internal/models"
)

func TestParseReturnStatus(t *testing.T) {
	cases := []struct {
		in   string
		typ  models.ReturnType
		want models.ReturnStatus
	}{
		{"Pending", models.ReturnRefund, models.ReturnPending},
		{"picked up", models.ReturnRefund, models.ReturnPickedUp},
		{"  Picked   Up ", models.ReturnReplace, models.ReturnPickedUp},
		{"quality_check", models.ReturnRefund, models.ReturnQualityCheck},
		{"Completed", models.ReturnRefund, models.ReturnRefunded},
		{"completed", models.ReturnReplace, models.ReturnDelivered},
	}
	for _, tc := range cases {
		got, err := ParseReturnStatus(tc.typ, tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	_, err := ParseReturnStatus(models.ReturnRefund, "lost in transit")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestParseReturnType(t *testing.T) {
	typ, err := ParseReturnType("Replace")
	require.NoError(t, err)
	assert.Equal(t, models.ReturnReplace, typ)

	_, err = ParseReturnType("store-credit")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestStepIndex(t *testing.T) {
	assert.Equal(t, 0, StepIndex(models.ReturnRefund, models.ReturnPending))
	assert.Equal(t, 4, StepIndex(models.ReturnRefund, models.ReturnRefunded))
	assert.Equal(t, 5, StepIndex(models.ReturnReplace, models.ReturnDelivered))
	assert.Equal(t, -1, StepIndex(models.ReturnRefund, models.ReturnDispatched))
	assert.Equal(t, -1, StepIndex(models.ReturnReplace, models.ReturnRejected))
	assert.Equal(t, -1, StepIndex("store-credit", models.ReturnPending))
}

func TestStepsAreCopies(t *testing.T) {
	s := Steps(models.ReturnRefund)
	s[0] = models.ReturnRejected
	assert.Equal(t, models.ReturnPending, Steps(models.ReturnRefund)[0])
}

func TestRefundLifecycle(t *testing.T) {
	path := []models.ReturnStatus{
		models.ReturnPending,
		models.ReturnApproved,
		models.ReturnPickedUp,
		models.ReturnQualityCheck,
		models.ReturnRefunded,
	}
	for i := 1; i < len(path); i++ {
		changed, err := ApplyTransition(models.ReturnRefund, path[i-1], path[i])
		require.NoError(t, err, "%s → %s", path[i-1], path[i])
		assert.True(t, changed)
	}
	assert.True(t, IsTerminal(models.ReturnRefunded))
	assert.Empty(t, NextStatuses(models.ReturnRefund, models.ReturnRefunded))
}

func TestReplaceLifecycleSkippingQualityCheck(t *testing.T) {
	path := []models.ReturnStatus{
		models.ReturnPending,
		models.ReturnApproved,
		models.ReturnPickedUp,
		models.ReturnDispatched,
		models.ReturnDelivered,
	}
	for i := 1; i < len(path); i++ {
		_, err := ApplyTransition(models.ReturnReplace, path[i-1], path[i])
		require.NoError(t, err, "%s → %s", path[i-1], path[i])
	}
}

func TestInvalidTransitions(t *testing.T) {
	cases := []struct {
		typ      models.ReturnType
		from, to models.ReturnStatus
	}{
		{models.ReturnRefund, models.ReturnPending, models.ReturnRefunded},
		{models.ReturnRefund, models.ReturnPickedUp, models.ReturnDispatched},
		{models.ReturnReplace, models.ReturnQualityCheck, models.ReturnRefunded},
		{models.ReturnReplace, models.ReturnDispatched, models.ReturnRejected},
		{models.ReturnRefund, models.ReturnRejected, models.ReturnApproved},
		{models.ReturnRefund, models.ReturnRefunded, models.ReturnPending},
		{models.ReturnReplace, models.ReturnApproved, models.ReturnPending},
	}
	for _, tc := range cases {
		_, err := ApplyTransition(tc.typ, tc.from, tc.to)
		assert.ErrorIs(t, err, ErrInvalidTransition, "%s %s → %s", tc.typ, tc.from, tc.to)
	}
}

func TestRejectReachableBeforeCompletion(t *testing.T) {
	for _, from := range []models.ReturnStatus{models.ReturnPending, models.ReturnApproved, models.ReturnPickedUp, models.ReturnQualityCheck} {
		assert.True(t, CanTransition(models.ReturnRefund, from, models.ReturnRejected), from)
		assert.True(t, CanTransition(models.ReturnReplace, from, models.ReturnRejected), from)
	}
}

func TestSameStatusIsNoop(t *testing.T) {
	changed, err := ApplyTransition(models.ReturnRefund, models.ReturnApproved, models.ReturnApproved)
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = ApplyTransition(models.ReturnReplace, models.ReturnRejected, models.ReturnRejected)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestTimelineInProgress(t *testing.T) {
	tl := Timeline(models.ReturnReplace, models.ReturnPickedUp, nil)
	require.Len(t, tl, 6)
	assert.True(t, tl[0].Done)
	assert.True(t, tl[2].Done)
	assert.True(t, tl[2].Current)
	assert.False(t, tl[3].Done)
	assert.False(t, tl[5].Current)
}

func TestTimelineRejected(t *testing.T) {
	history := []models.StatusChange{
		{Status: models.ReturnPending},
		{Status: models.ReturnApproved},
		{Status: models.ReturnRejected},
	}
	tl := Timeline(models.ReturnRefund, models.ReturnRejected, history)
	require.Len(t, tl, 3)
	assert.Equal(t, models.ReturnPending, tl[0].Status)
	assert.Equal(t, models.ReturnApproved, tl[1].Status)
	assert.Equal(t, models.ReturnRejected, tl[2].Status)
	assert.True(t, tl[2].Current)
}

func TestTimelineUnknownStatus(t *testing.T) {
	tl := Timeline(models.ReturnRefund, "Lost", nil)
	require.Len(t, tl, 5)
	for _, s := range tl {
		assert.False(t, s.Done)
		assert.False(t, s.Current)
	}
}
