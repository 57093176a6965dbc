package validate

import "testing"

func TestTitle(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"Morning notes", true},
		{"", false},
		{" padded", false},
		{"trailing ", false},
		{"tab\tinside", false},
		{string(make([]byte, 121)), false},
	}
	for _, c := range cases {
		err := Title(c.in)
		if c.ok && err != nil {
			t.Errorf("Title(%q) unexpected error: %v", c.in, err)
		}
		if !c.ok && err == nil {
			t.Errorf("Title(%q) expected error", c.in)
		}
	}
}

func TestDraftFormat(t *testing.T) {
	for _, ok := range []string{"tweet", "blog", "article"} {
		if err := DraftFormat(ok); err != nil {
			t.Errorf("DraftFormat(%q) unexpected error: %v", ok, err)
		}
	}
	if err := DraftFormat("haiku"); err == nil {
		t.Error("DraftFormat(haiku) expected error")
	}
}
