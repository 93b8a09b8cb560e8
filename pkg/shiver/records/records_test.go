package records

import (
	"testing"
	"time"
)

func TestRouteFor(t *testing.T) {
	tests := []struct {
		name string
		id   int64
		want string
	}{
		{"Alexander Grey", 7, "alexander-grey"},
		{"  The Old Church!  ", 1, "the-old-church"},
		{"Case: Main street", 3, "case-main-street"},
		{"Ünïcode Ñame", 2, "ncode-ame"},
		{"", 42, "item-42"},
		{"!!!", 5, "item-5"},
		{"already-slugged-99", 8, "already-slugged-99"},
	}
	for _, tt := range tests {
		if got := RouteFor(tt.name, tt.id); got != tt.want {
			t.Errorf("RouteFor(%q, %d) = %q, want %q", tt.name, tt.id, got, tt.want)
		}
	}
}

func TestStampKeepsExistingRoute(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	c := &Character{Name: "Mira Vale"}
	Stamp(c, 10, now)
	if c.Info.ID != 10 || c.Info.Route != "mira-vale" {
		t.Errorf("unexpected meta after stamp: %+v", c.Info)
	}
	if !c.Info.CreatedAt.Equal(now) {
		t.Errorf("CreatedAt = %v, want %v", c.Info.CreatedAt, now)
	}

	edited := &Location{Name: "Harbor", Info: Meta{Route: "custom-route"}}
	Stamp(edited, 11, now)
	if edited.Info.Route != "custom-route" {
		t.Errorf("operator route overwritten: %q", edited.Info.Route)
	}
}

func TestCloneIsDeep(t *testing.T) {
	orig := &Character{Name: "Ana", Traits: []string{"brave"}}
	cp := orig.Clone().(*Character)
	cp.Traits[0] = "timid"
	cp.Name = "Other"
	if orig.Traits[0] != "brave" || orig.Name != "Ana" {
		t.Errorf("clone shares state with original: %+v", orig)
	}
}

func TestEnvelopeRoundTrip(t *testing.T) {
	for _, k := range Kinds() {
		rec, err := New(k)
		if err != nil {
			t.Fatalf("New(%s): %v", k, err)
		}
		env, err := Encode(rec)
		if err != nil {
			t.Fatalf("Encode(%s): %v", k, err)
		}
		back, err := Decode(env)
		if err != nil {
			t.Fatalf("Decode(%s): %v", k, err)
		}
		if back.Kind() != k {
			t.Errorf("kind changed: %s -> %s", k, back.Kind())
		}
	}

	if _, err := Decode(Envelope{Kind: "spaceship"}); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind(" Case ")
	if err != nil || k != KindCase {
		t.Errorf("ParseKind(Case) = %q, %v", k, err)
	}
	if _, err := ParseKind("novel"); err == nil {
		t.Error("expected error for unknown kind")
	}
}
