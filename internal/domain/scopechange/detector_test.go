package scopechange

import (
	"reflect"
	"strings"
	"testing"

	"github.com/hometrade/commsguard/internal/domain/classifier"
	"github.com/hometrade/commsguard/internal/domain/messages"
	"github.com/hometrade/commsguard/internal/domain/policy"
)

func scopeResult(labels ...string) classifier.Result {
	return classifier.Result{ScopeChangeLabels: labels}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name      string
		role      messages.SenderRole
		res       classifier.Result
		providers []string
		wantNil   bool
	}{
		{
			name:      "provider sender never triggers",
			role:      messages.RoleProvider,
			res:       scopeResult("size change"),
			providers: []string{"p2"},
			wantNil:   true,
		},
		{
			name:      "no labels never triggers",
			role:      messages.RoleOwner,
			res:       scopeResult(),
			providers: []string{"p2"},
			wantNil:   true,
		},
		{
			name:      "unmapped labels never trigger",
			role:      messages.RoleOwner,
			res:       scopeResult("casual chat"),
			providers: []string{"p2"},
			wantNil:   true,
		},
		{
			name:      "no other providers never triggers",
			role:      messages.RoleOwner,
			res:       scopeResult("size change"),
			providers: nil,
			wantNil:   true,
		},
		{
			name:      "owner with mapped label and providers triggers",
			role:      messages.RoleOwner,
			res:       scopeResult("size change"),
			providers: []string{"p2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Detect(tt.role, tt.res, tt.providers)
			if tt.wantNil {
				if got != nil {
					t.Errorf("Detect() = %+v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatal("Detect() = nil, want change")
			}
		})
	}
}

func TestDetectQuestionNamesProviders(t *testing.T) {
	res := scopeResult("material change", "timeline change")
	change := Detect(messages.RoleOwner, res, []string{"prov-b", "prov-a", "prov-b", ""})
	if change == nil {
		t.Fatal("Detect() = nil, want change")
	}

	// duplicates and empties dropped, ids sorted
	if !reflect.DeepEqual(change.OtherParticipantIDs, []string{"prov-a", "prov-b"}) {
		t.Errorf("participants = %v, want [prov-a prov-b]", change.OtherParticipantIDs)
	}
	if !reflect.DeepEqual(change.Categories, []policy.ScopeChangeCategory{policy.ScopeMaterialChange, policy.ScopeTimelineChange}) {
		t.Errorf("categories = %v", change.Categories)
	}

	for _, want := range []string{"2 other provider(s)", "prov-a", "prov-b", "a material change", "a timeline change"} {
		if !strings.Contains(change.Question, want) {
			t.Errorf("question %q missing %q", change.Question, want)
		}
	}
}
