package models

import "testing"

func TestChannelsByRole(t *testing.T) {
	c := Channels{DM: "control", Publish: "votes", Notifications: "log"}

	cases := []struct {
		role string
		want string
		ok   bool
	}{
		{RoleDM, "control", true},
		{RolePublish, "votes", true},
		{RoleNotifications, "log", true},
		{"bogus", "", false},
	}
	for _, tc := range cases {
		got, ok := c.ByRole(tc.role)
		if got != tc.want || ok != tc.ok {
			t.Errorf("ByRole(%q) = (%q, %v), want (%q, %v)", tc.role, got, ok, tc.want, tc.ok)
		}
	}
}

func TestChannelsSetRole(t *testing.T) {
	var c Channels
	if !c.SetRole(RolePublish, "votes") {
		t.Fatal("SetRole(publish) failed")
	}
	if c.Publish != "votes" {
		t.Errorf("expected publish channel %q, got %q", "votes", c.Publish)
	}
	if c.SetRole("bogus", "x") {
		t.Error("expected unknown role to be rejected")
	}
}
