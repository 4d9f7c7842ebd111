package lang

import "testing"

func TestEveryLanguageHasEveryKey(t *testing.T) {
	for code, table := range messages {
		for key := range messages[En] {
			if _, ok := table[key]; !ok {
				t.Errorf("%s: missing key %q", code, key)
			}
		}
	}
}

func TestT(t *testing.T) {
	tests := []struct {
		lang, key string
		args      []interface{}
		want      string
	}{
		{En, "item_added", []interface{}{"Veg Thali"}, "Veg Thali added to cart!"},
		{"xx", "cart_empty", nil, "Your cart is empty"},
		{En, "no_such_key", nil, "no_such_key"},
		{En, "off", []interface{}{"20"}, "20% OFF"},
	}
	for _, tt := range tests {
		if got := T(tt.lang, tt.key, tt.args...); got != tt.want {
			t.Errorf("T(%q, %q) = %q, want %q", tt.lang, tt.key, got, tt.want)
		}
	}
}

func TestSupported(t *testing.T) {
	if !Supported(En) || !Supported(Hi) || Supported("uz") {
		t.Error("Supported mismatch")
	}
}
