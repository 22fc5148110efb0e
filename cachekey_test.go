package descarteslabs

import (
	"strings"
	"testing"
)

func TestFingerprintDeterministic(t *testing.T) {
	a := Fingerprint("find", []string{"morocco"}, map[string]string{"placetype": "country"})
	b := Fingerprint("find", []string{"morocco"}, map[string]string{"placetype": "country"})
	if a != b {
		t.Errorf("identical calls fingerprinted differently: %s vs %s", a, b)
	}
}

func TestFingerprintKeywordOrderIndependent(t *testing.T) {
	first := map[string]string{}
	first["placetype"] = "county"
	first["geom"] = "low"

	second := map[string]string{}
	second["geom"] = "low"
	second["placetype"] = "county"

	a := Fingerprint("prefix", []string{"kansas"}, first)
	b := Fingerprint("prefix", []string{"kansas"}, second)
	if a != b {
		t.Errorf("keyword order changed the fingerprint: %s vs %s", a, b)
	}
}

func TestFingerprintOperationNamespacing(t *testing.T) {
	a := Fingerprint("find", []string{"kansas"}, nil)
	b := Fingerprint("shape", []string{"kansas"}, nil)
	if a == b {
		t.Error("identical arguments to different operations must not collide")
	}
	if !strings.HasPrefix(a, "find:") || !strings.HasPrefix(b, "shape:") {
		t.Errorf("keys should carry the operation prefix: %s, %s", a, b)
	}
}

func TestFingerprintSensitivity(t *testing.T) {
	base := Fingerprint("find", []string{"kansas"}, map[string]string{"placetype": "county"})

	variants := []string{
		Fingerprint("find", []string{"kansas"}, nil),
		Fingerprint("find", []string{"kansas"}, map[string]string{"placetype": "region"}),
		Fingerprint("find", []string{"kansas"}, map[string]string{"geom": "county"}),
		Fingerprint("find", []string{"texas"}, map[string]string{"placetype": "county"}),
		Fingerprint("find", []string{"kansas", "county"}, nil),
	}
	for i, v := range variants {
		if v == base {
			t.Errorf("variant %d collided with the base fingerprint", i)
		}
	}
}

func TestFingerprintInjectiveEncoding(t *testing.T) {
	// Delimiter-like characters inside a component must not let two distinct
	// calls produce one byte stream.
	cases := []struct{ a, b string }{
		{
			Fingerprint("op", []string{"a\x1fb"}, nil),
			Fingerprint("op", []string{"a", "b"}, nil),
		},
		{
			Fingerprint("op", []string{"a", "b"}, nil),
			Fingerprint("op", []string{"a"}, map[string]string{"b": ""}),
		},
		{
			Fingerprint("op", []string{"ab"}, nil),
			Fingerprint("op", []string{"a", "b"}, nil),
		},
		{
			Fingerprint("op", nil, map[string]string{"k=x": "v"}),
			Fingerprint("op", nil, map[string]string{"k": "x=v"}),
		},
	}
	for i, c := range cases {
		if c.a == c.b {
			t.Errorf("case %d: distinct calls collided: %s", i, c.a)
		}
	}
}

func TestFingerprintPositionalOrderMatters(t *testing.T) {
	a := Fingerprint("op", []string{"x", "y"}, nil)
	b := Fingerprint("op", []string{"y", "x"}, nil)
	if a == b {
		t.Error("positional argument order must affect the fingerprint")
	}
}
