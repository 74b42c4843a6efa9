package model

import "testing"

func TestEdgeType_IsValid(t *testing.T) {
	for _, tc := range []struct {
		typ  EdgeType
		want bool
	}{
		{EdgePrerequisite, true},
		{EdgeSubTopic, true},
		{EdgeType(""), false},
		{EdgeType("related"), false},
		{EdgeType("PREREQUISITE"), false},
		{EdgeType("subtopic"), false},
	} {
		if got := tc.typ.IsValid(); got != tc.want {
			t.Errorf("EdgeType(%q).IsValid() = %v, want %v", tc.typ, got, tc.want)
		}
	}
}

func TestEdgeType_String(t *testing.T) {
	for _, tc := range []struct {
		typ  EdgeType
		want string
	}{
		{EdgePrerequisite, "prerequisite"},
		{EdgeSubTopic, "sub-topic"},
	} {
		if got := tc.typ.String(); got != tc.want {
			t.Errorf("EdgeType(%q).String() = %q, want %q", tc.typ, got, tc.want)
		}
	}
}

func TestEdgeTypes(t *testing.T) {
	types := EdgeTypes()
	if len(types) != 2 {
		t.Fatalf("EdgeTypes() returned %d types, want 2", len(types))
	}
	for _, et := range types {
		if !et.IsValid() {
			t.Errorf("EdgeTypes() contains invalid type %q", et)
		}
	}
}
