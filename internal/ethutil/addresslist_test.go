package ethutil

import "testing"

func TestParseAddressList(t *testing.T) {
	addrs, err := ParseAddressList([]string{
		"0x1111111111111111111111111111111111111111",
		" 0x2222222222222222222222222222222222222222 ",
		"0x1111111111111111111111111111111111111111", // duplicate
		"",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(addrs) != 2 {
		t.Fatalf("got %d addresses, want 2", len(addrs))
	}
}

func TestParseAddressList_Invalid(t *testing.T) {
	if _, err := ParseAddressList([]string{"nothex"}); err == nil {
		t.Fatal("expected error for invalid address")
	}
}

func TestEqual_IgnoresCase(t *testing.T) {
	a := "0xAbCd000000000000000000000000000000000001"
	b := "0xabcd000000000000000000000000000000000001"
	if !Equal(a, b) {
		t.Errorf("Equal(%q, %q) = false, want true", a, b)
	}
	if Equal(a, "0x0000000000000000000000000000000000000002") {
		t.Error("distinct addresses reported equal")
	}
}
