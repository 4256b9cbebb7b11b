package identity

import "testing"

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in    string
		valid bool
		key   string
	}{
		{"0812345678", true, "0812345678"},
		{"081-234-5678", true, "0812345678"},
		{"081 234 5678", true, "0812345678"},
		{"812345678", false, ""},
		{"1812345678", false, ""},
		{"08123456789", false, ""},
		{"081234567", false, ""},
		{"", false, ""},
	}

	for _, tc := range cases {
		id, err := Normalize(tc.in)
		if tc.valid {
			if err != nil {
				t.Fatalf("Normalize(%q): unexpected error %v", tc.in, err)
			}
			if id.Kind != KindPhone {
				t.Fatalf("Normalize(%q): expected phone kind, got %s", tc.in, id.Kind)
			}
			if id.Key != tc.key {
				t.Fatalf("Normalize(%q): expected key %q, got %q", tc.in, tc.key, id.Key)
			}
		} else if err == nil {
			t.Fatalf("Normalize(%q): expected rejection", tc.in)
		}
	}
}

func TestNormalizeEmail(t *testing.T) {
	valid := []string{"a@b.c", "Citizen@Example.COM", "x.y@mail.co.th"}
	for _, in := range valid {
		id, err := Normalize(in)
		if err != nil {
			t.Fatalf("Normalize(%q): unexpected error %v", in, err)
		}
		if id.Kind != KindEmail {
			t.Fatalf("Normalize(%q): expected email kind", in)
		}
	}

	id, _ := Normalize("Citizen@Example.COM")
	if id.Key != "citizen@example.com" {
		t.Fatalf("expected lower-cased key, got %q", id.Key)
	}

	invalid := []string{"@b.c", "a@.c", "a@b.", "a b@c.d", "a@b@c.d", "a@bc"}
	for _, in := range invalid {
		if _, err := Normalize(in); err == nil {
			t.Fatalf("Normalize(%q): expected rejection", in)
		}
	}
}

func TestMask(t *testing.T) {
	id, _ := Normalize("citizen@example.com")
	if got := id.Mask(); got != "cit***@example.com" {
		t.Fatalf("unexpected email mask %q", got)
	}

	short, _ := Normalize("ab@x.y")
	if got := short.Mask(); got != "ab***@x.y" {
		t.Fatalf("unexpected short email mask %q", got)
	}

	phone, _ := Normalize("0812345678")
	if got := phone.Mask(); got != "081****678" {
		t.Fatalf("unexpected phone mask %q", got)
	}
}

func TestLedgerKey(t *testing.T) {
	id, _ := Normalize("citizen@example.com")
	if got := id.LedgerKey(); got != "citizen_example_com" {
		t.Fatalf("unexpected ledger key %q", got)
	}
}
