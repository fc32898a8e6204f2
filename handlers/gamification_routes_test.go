package handlers

import (
	"testing"

	"investlearn-gamification/models"
)

func TestEventLabel(t *testing.T) {
	cases := []struct {
		eventType models.EventType
		want      string
	}{
		{models.EventCompleteRiskAssessment, "Complete Risk Assessment"},
		{models.EventUseTool, "Use Tool"},
		{models.EventDailyLogin, "Daily Login"},
		{models.EventPointsAwarded, "Points Awarded"},
		{models.EventType("SOMETHING_ELSE"), "Something Else"},
	}
	for _, tc := range cases {
		if got := eventLabel(tc.eventType); got != tc.want {
			t.Errorf("eventLabel(%s) = %q, want %q", tc.eventType, got, tc.want)
		}
	}
}
