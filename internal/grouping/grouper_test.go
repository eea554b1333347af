package grouping_test

import (
	"testing"

	"shelver/internal/grouping"
)

func TestBaseKeyDerivation(t *testing.T) {
	cases := []struct {
		name  string
		entry grouping.Entry
		want  string
	}{
		{
			name:  "video file",
			entry: grouping.Entry{Name: "Home - S2021E01 - Birthday Party.mp4"},
			want:  "Home - S2021E01 - Birthday Party",
		},
		{
			name:  "poster image",
			entry: grouping.Entry{Name: "Home - S2021E01 - Birthday Party-poster.jpg"},
			want:  "Home - S2021E01 - Birthday Party",
		},
		{
			name:  "nfo sidecar",
			entry: grouping.Entry{Name: "Home - S2021E01 - Birthday Party.nfo"},
			want:  "Home - S2021E01 - Birthday Party",
		},
		{
			name:  "trickplay directory",
			entry: grouping.Entry{Name: "Home - S2021E01 - Birthday Party.trickplay", IsDir: true},
			want:  "Home - S2021E01 - Birthday Party",
		},
		{
			name:  "name without extension",
			entry: grouping.Entry{Name: "Home - S2021E01 - Plain"},
			want:  "Home - S2021E01 - Plain",
		},
		{
			name:  "title containing dots",
			entry: grouping.Entry{Name: "Home - S2021E01 - Trip v1.2.mp4"},
			want:  "Home - S2021E01 - Trip v1.2",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := grouping.BaseKey(tc.entry); got != tc.want {
				t.Fatalf("BaseKey(%q) = %q, want %q", tc.entry.Name, got, tc.want)
			}
		})
	}
}

func TestGroupBucketsSiblings(t *testing.T) {
	g := grouping.New("Home", "Videos")
	entries := []grouping.Entry{
		{Name: "Home - S2021E01 - Birthday Party.mp4"},
		{Name: "Home - S2021E01 - Birthday Party-poster.jpg"},
		{Name: "Home - S2021E01 - Birthday Party.nfo"},
		{Name: "Home - S2021E01 - Birthday Party.trickplay", IsDir: true},
		{Name: "Home - S2021E02 - Camping.mp4"},
		{Name: "Random - S2021E01 - Clip.mp4"},
		{Name: "notes.txt"},
	}

	groups := g.Group(entries, "source")
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d: %v", len(groups), groups)
	}
	party := groups["Home - S2021E01 - Birthday Party"]
	if len(party) != 4 {
		t.Fatalf("expected 4 members in party group, got %d", len(party))
	}
	if len(groups["Home - S2021E02 - Camping"]) != 1 {
		t.Fatalf("expected camping group with a single member")
	}

	for key, members := range groups {
		for _, member := range members {
			suffix, ok := grouping.Suffix(member, key)
			if !ok {
				t.Fatalf("Suffix(%q, %q): entry does not extend key", member.Name, key)
			}
			if key+suffix != member.Name {
				t.Fatalf("suffix round-trip broken: %q + %q != %q", key, suffix, member.Name)
			}
		}
	}
}

func TestGroupSkipsTargetSubdir(t *testing.T) {
	g := grouping.New("Home", "Videos")
	entries := []grouping.Entry{{Name: "Home - S2021E01 - Birthday Party.mp4"}}

	if groups := g.Group(entries, "Videos"); len(groups) != 0 {
		t.Fatalf("expected no groups inside the target subdir, got %v", groups)
	}
}

func TestGroupExcludesOtherPrefixes(t *testing.T) {
	g := grouping.New("Home", "Videos")
	entries := []grouping.Entry{
		{Name: "Random - S2021E01 - Clip.mp4"},
		{Name: "home - S2021E01 - lowercase.mp4"},
	}

	// Prefix filtering is exact and case-sensitive.
	if groups := g.Group(entries, "source"); len(groups) != 0 {
		t.Fatalf("expected prefix mismatches to be excluded, got %v", groups)
	}
}

func TestParse(t *testing.T) {
	g := grouping.New("Home", "Videos")

	cases := []struct {
		baseKey   string
		wantYear  string
		wantTitle string
		wantOK    bool
	}{
		{"Home - S2021E01 - Birthday Party", "2021", "Birthday Party", true},
		{"Home - S1989E12 -  Around the house ", "1989", "Around the house", true},
		{"Home - s2021e01 - Case Insensitive Marker", "2021", "Case Insensitive Marker", true},
		{"Home - ClipWithoutYear", "", "", false},
		{"Home - S21E01 - Two Digit Year", "", "", false},
		{"Home - S2021E - Missing Episode", "", "", false},
	}

	for _, tc := range cases {
		year, title, ok := g.Parse(tc.baseKey)
		if ok != tc.wantOK {
			t.Fatalf("Parse(%q) ok = %v, want %v", tc.baseKey, ok, tc.wantOK)
		}
		if !ok {
			continue
		}
		if year != tc.wantYear || title != tc.wantTitle {
			t.Fatalf("Parse(%q) = (%q, %q), want (%q, %q)", tc.baseKey, year, title, tc.wantYear, tc.wantTitle)
		}
		if len(year) != 4 {
			t.Fatalf("Parse(%q) year %q is not 4 digits", tc.baseKey, year)
		}
	}
}

func TestParseQuotesPrefixMetacharacters(t *testing.T) {
	g := grouping.New("Home (Raw)", "Videos")

	year, title, ok := g.Parse("Home (Raw) - S2020E03 - Garden")
	if !ok {
		t.Fatal("expected prefix with metacharacters to parse")
	}
	if year != "2020" || title != "Garden" {
		t.Fatalf("got (%q, %q)", year, title)
	}

	if _, _, ok := g.Parse("Home XRawX - S2020E03 - Garden"); ok {
		t.Fatal("prefix metacharacters must match literally")
	}
}
