package sizes

import (
	"errors"
	"reflect"
	"testing"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Set
	}{
		{"defaults", "16,24,32,48,64,96,128,192,256", Default},
		{"duplicates", "16,16,32", Set{16, 32}},
		{"spaces unsorted", "32 16", Set{16, 32}},
		{"mixed separators", " 48,\t32  16,,", Set{16, 32, 48}},
		{"range edges", "15 16 1024 1025", Set{16, 1024}},
		{"non numeric", "abc 32 -48 +64 4.5 0x20 128px", Set{32}},
		{"empty", "", Set{}},
		{"whitespace only", "  \n ", Set{}},
		{"all invalid", "8 2048 foo", Set{}},
		{"huge digits", "99999999999999999999999 64", Set{64}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Resolve(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestResolveEquivalentForms(t *testing.T) {
	a := Resolve("16,16,32")
	b := Resolve("32 16")
	if !reflect.DeepEqual(a, b) || !reflect.DeepEqual(a, Set{16, 32}) {
		t.Errorf("got %v and %v, want [16 32] for both", a, b)
	}
}

func TestResolveStrictlyAscending(t *testing.T) {
	got := Resolve("1024 512 16 256 16 999 17 1000 3 20000")
	for i, v := range got {
		if v < Min || v > Max {
			t.Errorf("value %d out of range", v)
		}
		if i > 0 && got[i-1] >= v {
			t.Errorf("not strictly ascending at %d: %v", i, got)
		}
	}
}

func TestFromInts(t *testing.T) {
	got := FromInts([]int{256, 16, 8, 16, 2000, 48})
	want := Set{16, 48, 256}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FromInts = %v, want %v", got, want)
	}
}

func TestValidate(t *testing.T) {
	got, err := Validate([]int{48, 16, 48})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !reflect.DeepEqual(got, Set{16, 48}) {
		t.Errorf("got %v", got)
	}

	for _, in := range [][]int{nil, {}, {8}, {16, 4096}} {
		if _, err := Validate(in); !errors.Is(err, ErrInvalidSizes) {
			t.Errorf("Validate(%v): got %v, want ErrInvalidSizes", in, err)
		}
	}
}

func TestSetHelpers(t *testing.T) {
	if DefaultString != "16,24,32,48,64,96,128,192,256" {
		t.Errorf("DefaultString = %q", DefaultString)
	}
	if Default.Largest() != 256 {
		t.Errorf("Largest = %d", Default.Largest())
	}
	if (Set{}).Largest() != 0 {
		t.Error("empty set should have Largest 0")
	}
}

func TestPreset(t *testing.T) {
	p := Preset("favicon")
	if !reflect.DeepEqual(p.Sizes, Set{16, 32, 48}) {
		t.Errorf("favicon sizes = %v", p.Sizes)
	}

	unknown := Preset("does-not-exist")
	if unknown.Name != "does-not-exist" {
		t.Errorf("name not preserved: %q", unknown.Name)
	}
	if !reflect.DeepEqual(unknown.Sizes, Default) {
		t.Errorf("fallback sizes = %v", unknown.Sizes)
	}

	// Presets must not share backing arrays with callers.
	p.Sizes[0] = 999
	if Preset("favicon").Sizes[0] != 16 {
		t.Error("preset mutated through returned slice")
	}

	for _, name := range PresetNames() {
		s := Preset(name).Sizes
		if !reflect.DeepEqual(FromInts(s), s) {
			t.Errorf("preset %s is not normalized: %v", name, s)
		}
	}
}
