package model

import "testing"

func validRegistration(kind string) Registration {
	r := Registration{
		Kind:        kind,
		FirstName:   "Pat",
		LastName:    "Jones",
		Email:       "pat@example.com",
		NumAdults:   2,
		NumChildren: 2,
		Children:    []Child{{Name: "Alex", Age: 7}, {Name: "Riley", Age: 9}},
		Session:     "Thursday Evening",
	}
	if kind == KindMember {
		r.MemberFirstName = "Sam"
		r.MemberLastName = "Lee"
	}
	return r
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Registration)
		wantErr bool
	}{
		{"valid general", func(r *Registration) {}, false},
		{"unknown kind", func(r *Registration) { r.Kind = "walk-in" }, true},
		{"missing session", func(r *Registration) { r.Session = "" }, true},
		{"missing name", func(r *Registration) { r.FirstName = "" }, true},
		{"missing email", func(r *Registration) { r.Email = "" }, true},
		{"negative adults", func(r *Registration) { r.NumAdults = -1 }, true},
		{"negative children", func(r *Registration) { r.NumChildren = -1; r.Children = nil }, true},
		{"roster shorter than count", func(r *Registration) { r.Children = r.Children[:1] }, true},
		{"empty roster with count", func(r *Registration) { r.Children = nil }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := validRegistration(KindGeneral)
			tc.mutate(&r)
			err := r.Validate()
			if tc.wantErr && err == nil {
				t.Error("expected an error")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateMemberRequiresMemberName(t *testing.T) {
	r := validRegistration(KindMember)
	if err := r.Validate(); err != nil {
		t.Fatalf("valid member registration rejected: %v", err)
	}
	r.MemberFirstName = ""
	if err := r.Validate(); err == nil {
		t.Error("member registration without a member name accepted")
	}
}

func TestOfferedTo(t *testing.T) {
	both := Session{Audience: AudienceBoth}
	general := Session{Audience: AudienceGeneral}
	member := Session{Audience: AudienceMember}

	if !both.OfferedTo(KindGeneral) || !both.OfferedTo(KindMember) {
		t.Error("both-audience session must accept both kinds")
	}
	if !general.OfferedTo(KindGeneral) || general.OfferedTo(KindMember) {
		t.Error("general session must accept only general registrations")
	}
	if member.OfferedTo(KindGeneral) || !member.OfferedTo(KindMember) {
		t.Error("member session must accept only member registrations")
	}
}
