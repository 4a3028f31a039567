package track

import (
	"testing"

	"jobpilot-engine/internal/store"
)

func TestClassifyReply(t *testing.T) {
	tests := []struct {
		subject string
		want    string
	}{
		{"Your offer from Acme", store.StatusOffer},
		{"Interview invitation - Backend Engineer", store.StatusInterview},
		{"Next steps for your application", store.StatusInterview},
		{"Let's schedule a call", store.StatusInterview},
		{"Unfortunately we will not proceed", store.StatusRejected},
		{"We regret to inform you", store.StatusRejected},
		{"The position has been filled", store.StatusRejected},
		{"Re: your application", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := classifyReply(tt.subject); got != tt.want {
			t.Errorf("classifyReply(%q) = %q, want %q", tt.subject, got, tt.want)
		}
	}
}

func TestClassifyReplyOfferBeatsRejectionPhrases(t *testing.T) {
	// An offer keyword wins even when the body of the subject sounds
	// apologetic.
	if got := classifyReply("Offer update: unfortunately delayed"); got != store.StatusOffer {
		t.Errorf("got %q, want offer", got)
	}
}
