package mail

import (
	"strings"
	"testing"

	"github.com/openhall/session-registration/internal/model"
)

func TestRenderReminderGeneral(t *testing.T) {
	reg := &model.Registration{
		Kind:        model.KindGeneral,
		FirstName:   "Pat",
		LastName:    "Jones",
		Email:       "pat@example.com",
		NumAdults:   2,
		NumChildren: 2,
		Children: []model.Child{
			{Name: "Alex", Age: 7},
			{Name: "Riley", Age: 9},
		},
	}
	session := &model.Session{Name: "Thursday Evening 6:00-8:30p"}

	subject, body := RenderReminder(reg, session)
	if subject != "Event Reminder - Your Registration Details" {
		t.Errorf("subject = %q", subject)
	}
	for _, want := range []string{"Pat Jones", "Thursday Evening 6:00-8:30p", "Alex (Age: 7)", "Riley (Age: 9)"} {
		if !strings.Contains(body, want) {
			t.Errorf("reminder body missing %q", want)
		}
	}
	if strings.Contains(body, "Member Name:") {
		t.Error("general reminder includes the member block")
	}
}

func TestRenderReminderMember(t *testing.T) {
	reg := &model.Registration{
		Kind:            model.KindMember,
		MemberFirstName: "Sam",
		MemberLastName:  "Lee",
		FirstName:       "Pat",
		LastName:        "Jones",
		Email:           "pat@example.com",
	}
	session := &model.Session{Name: "Saturday Morning"}

	subject, body := RenderReminder(reg, session)
	if subject != "Event Reminder - Your Member + Guest Registration" {
		t.Errorf("subject = %q", subject)
	}
	if !strings.Contains(body, "Sam Lee") {
		t.Error("member reminder missing the sponsoring member's name")
	}
}

func TestRenderConfirmation(t *testing.T) {
	reg := &model.Registration{
		Kind:        model.KindGeneral,
		FirstName:   "Pat",
		LastName:    "Jones",
		NumAdults:   1,
		NumChildren: 4,
	}
	session := &model.Session{Name: "Friday Evening"}

	subject, body := RenderConfirmation(reg, session)
	if subject != "Registration Confirmed" {
		t.Errorf("subject = %q", subject)
	}
	if !strings.Contains(body, "Friday Evening") {
		t.Error("confirmation body missing the session name")
	}
}

func TestRenderEscapesSubmitterInput(t *testing.T) {
	reg := &model.Registration{
		Kind:      model.KindGeneral,
		FirstName: "<script>alert(1)</script>",
		LastName:  "Jones",
	}
	_, body := RenderReminder(reg, &model.Session{Name: "Any"})
	if strings.Contains(body, "<script>") {
		t.Error("submitter input rendered unescaped")
	}
}
