package filter

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/hitboard/hitboard/internal/aggregate"
	"github.com/hitboard/hitboard/internal/record"
)

func testGraph() aggregate.Graph {
	table := aggregate.NewTable([]string{"Spotify", "TikTok"}, nil)
	for i := 0; i < 20; i++ {
		genre := fmt.Sprintf("g%02d", i)
		for j := 0; j <= i; j++ {
			table.Add([]string{"Spotify"}, []string{genre})
		}
		if i%2 == 0 {
			table.Add([]string{"TikTok"}, []string{genre})
		}
	}
	g, _ := table.Graph(1000, 5)
	return g
}

func TestApply_DefaultTopN(t *testing.T) {
	g := testGraph()
	got := Apply(g, Default())
	if len(got.Targets) != DefaultTopN {
		t.Fatalf("targets = %d, want %d", len(got.Targets), DefaultTopN)
	}
	if got.Targets[0].Name != "g18" {
		t.Errorf("first target = %s, want g18", got.Targets[0].Name)
	}
	for _, l := range got.Links {
		if _, ok := got.Entity(l.Target); !ok {
			t.Errorf("dangling link %v", l)
		}
	}
	if len(g.Targets) != 20 {
		t.Errorf("input graph mutated: %d targets", len(g.Targets))
	}
}

func TestApply_SourceSelection(t *testing.T) {
	s := Default()
	s.Source = "TikTok"
	got := Apply(testGraph(), s)
	if len(got.Targets) != 10 {
		t.Errorf("targets = %d, want 10 genres touching TikTok", len(got.Targets))
	}
	for _, l := range got.Links {
		if l.Source != "TikTok" {
			t.Errorf("link %v does not start at TikTok", l)
		}
	}
}

func TestApply_TargetSelectionAndMinWeight(t *testing.T) {
	s := Default()
	s.Target = "g05"
	s.MinWeight = 2
	got := Apply(testGraph(), s)
	want := []aggregate.Link{{Source: "Spotify", Target: "g05", Weight: 6}}
	if !reflect.DeepEqual(got.Links, want) {
		t.Errorf("links = %v, want %v", got.Links, want)
	}
	if len(got.Targets) != 20 {
		t.Errorf("targets = %d, want all 20", len(got.Targets))
	}
}

func TestApply_Idempotent(t *testing.T) {
	states := []State{Default(), {Source: "Spotify", TopN: 5}, {Target: "g10", MinWeight: 3}, {TopN: 3, MinWeight: 15}}
	for _, s := range states {
		once := Apply(testGraph(), s)
		twice := Apply(once, s)
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("state %+v: second application changed the graph", s)
		}
	}
}

func TestState_Reset(t *testing.T) {
	s := State{Source: "x", Country: "Norway", TopN: 3}
	if got := s.Reset(); !reflect.DeepEqual(got, Default()) {
		t.Errorf("Reset() = %+v", got)
	}
	if s.Source != "x" {
		t.Error("Reset modified the receiver")
	}
}

func happiness(countryName, region, year string) record.Record {
	return record.Record{Text: map[string]string{
		record.FieldCountry: countryName,
		record.FieldRegion:  region,
		record.FieldYear:    year,
	}}
}

func TestRecords(t *testing.T) {
	records := []record.Record{
		happiness("Norway", "Western Europe", "2015"),
		happiness("Norway", "Western Europe", "2016"),
		happiness("Chad", "Sub-Saharan Africa", "2016"),
	}

	tests := []struct {
		name    string
		state   State
		want    int
		message string
	}{
		{"all", Default(), 3, ""},
		{"year", State{Level: ByRegion, Year: "2016"}, 2, ""},
		{"region", State{Level: ByRegion, Year: All, Region: "Western Europe"}, 2, ""},
		{"country in year", State{Level: ByCountry, Year: "2015", Country: "Norway"}, 1, ""},
		{"missing year", State{Year: "1999"}, 0,
			"No data available for the year 1999. Please select a different year."},
		{"country not in year", State{Level: ByCountry, Year: "2015", Country: "Chad"}, 0,
			"No data available for Chad in 2015. Try selecting 'All' for year or choose a different country."},
		{"unknown country", State{Level: ByCountry, Year: All, Country: "Atlantis"}, 0,
			"No data available for Atlantis. Please select a different country."},
		{"unknown region", State{Level: ByRegion, Region: "Antarctica"}, 0,
			"No data available for the selected filters. Please try different filter options."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Records(records, tt.state)
			if tt.message != "" {
				var empty *EmptyResultError
				if !errors.As(err, &empty) || empty.Message != tt.message {
					t.Fatalf("error = %v, want %q", err, tt.message)
				}
				if !errors.Is(err, ErrEmptyResult) {
					t.Error("error does not wrap ErrEmptyResult")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d records, want %d", len(got), tt.want)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	if l, err := ParseLevel(""); err != nil || l != ByRegion {
		t.Errorf("ParseLevel(\"\") = %v, %v", l, err)
	}
	if _, err := ParseLevel("planet"); err == nil {
		t.Error("expected error for unknown level")
	}
}
