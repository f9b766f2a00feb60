package scene

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/hitboard/hitboard/internal/aggregate"
	"github.com/hitboard/hitboard/internal/filter"
	"github.com/hitboard/hitboard/internal/layout"
	"github.com/hitboard/hitboard/internal/record"
)

func song(genre string, platforms ...string) record.Record {
	r := record.Record{
		Text: map[string]string{record.FieldGenre: genre, record.FieldTrack: genre + " song"},
		Num:  map[string]float64{record.FieldPopularity: 50},
		Bool: map[string]bool{},
	}
	for _, p := range platforms {
		pl, _ := record.PlatformByName(p)
		r.Bool[pl.Column] = true
		r.HitCount++
	}
	return r
}

func country(name, region, year string, score float64) record.Record {
	r := record.Record{
		Text: map[string]string{
			record.FieldCountry: name,
			record.FieldRegion:  region,
			record.FieldYear:    year,
		},
		Num: map[string]float64{record.FieldHappiness: score},
	}
	for i, f := range record.FactorFields() {
		r.Num[f] = score * float64(i+1)
	}
	return r
}

func flowRecords() []record.Record {
	return []record.Record{
		song("Pop", "Spotify", "YouTube"),
		song("Pop", "Spotify"),
		song("Rock", "YouTube"),
		song("Jazz", "TikTok"),
		song("Jazz"),
	}
}

func TestFlow_Recompute(t *testing.T) {
	f, err := NewFlow(flowRecords(), DefaultFlowOptions())
	if err != nil {
		t.Fatalf("NewFlow: %v", err)
	}
	sc, err := f.Recompute(filter.Default())
	if err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	if got, want := sc.Count(KindPath, "ribbon"), len(f.Graph().Links); got != want {
		t.Errorf("ribbons = %d, want %d", got, want)
	}
	if got := sc.Count(KindRect, "genre genre-low"); got != 3 {
		t.Errorf("genre bars = %d, want 3", got)
	}
	if got := sc.Count(KindText, "note"); got != 1 {
		t.Errorf("notes = %d, want 1 without a selection", got)
	}
	summary, ok := sc.Data.(FlowSummary)
	if !ok {
		t.Fatalf("Data = %T, want FlowSummary", sc.Data)
	}
	if summary.Threshold != 1 {
		t.Errorf("threshold = %d, want 1", summary.Threshold)
	}
	if summary.Reach["Pop"] != 2 {
		t.Errorf("reach(Pop) = %d, want 2", summary.Reach["Pop"])
	}
}

func TestFlow_PlatformAxisSpansGenreGap(t *testing.T) {
	tests := []struct {
		name  string
		state filter.State
	}{
		{"all genres", filter.Default()},
		{"one platform", filter.State{TopN: filter.DefaultTopN, Source: "Spotify"}},
	}
	f, err := NewFlow(flowRecords(), DefaultFlowOptions())
	if err != nil {
		t.Fatalf("NewFlow: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc, err := f.Recompute(tt.state)
			if err != nil {
				t.Fatalf("Recompute: %v", err)
			}
			boxes := sc.Data.(FlowSummary).Boxes
			genresEnd := layout.End(boxes["genres"])
			// Genre gaps are at least 8 and platform gaps add to the extent.
			if got := layout.End(boxes["platforms"]); got < genresEnd+8 {
				t.Errorf("platform axis ends at %v, want at least %v", got, genresEnd+8)
			}
		})
	}
}

func TestFlow_SourceHighlight(t *testing.T) {
	f, err := NewFlow(flowRecords(), DefaultFlowOptions())
	if err != nil {
		t.Fatalf("NewFlow: %v", err)
	}
	s := filter.Default()
	s.Source = "Spotify"
	sc, err := f.Recompute(s)
	if err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	for _, sh := range sc.Shapes {
		if sh.Class != "ribbon" {
			continue
		}
		want := sh.Tooltip["platform"] == "Spotify"
		if sh.Highlighted != want {
			t.Errorf("ribbon %s highlighted = %v, want %v", sh.ID, sh.Highlighted, want)
		}
	}
	if sc.Count(KindText, "note") != 0 {
		t.Error("note shown with a selection")
	}
}

func TestFlow_UnknownSource(t *testing.T) {
	f, err := NewFlow(flowRecords(), DefaultFlowOptions())
	if err != nil {
		t.Fatalf("NewFlow: %v", err)
	}
	s := filter.Default()
	s.Source = "Nope"
	sc, err := Render(f, s)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if sc.Message != "No platform named Nope." {
		t.Errorf("message = %q", sc.Message)
	}
	if len(sc.Shapes) != 1 {
		t.Errorf("shapes = %d, want only the message", len(sc.Shapes))
	}
}

func TestNewFlow_UnknownPlatform(t *testing.T) {
	opts := DefaultFlowOptions()
	opts.Platforms = []string{"Spotify", "Napster"}
	if _, err := NewFlow(nil, opts); err == nil {
		t.Error("NewFlow accepted an unknown platform")
	}
}

func happinessRecords() []record.Record {
	return []record.Record{
		country("Denmark", "Western Europe", "2015", 7.5),
		country("Norway", "Western Europe", "2015", 7.4),
		country("Chad", "Sub-Saharan Africa", "2015", 3.5),
		country("Denmark", "Western Europe", "2016", 7.6),
		country("Chad", "Sub-Saharan Africa", "2016", 3.8),
	}
}

func TestRadar_Modes(t *testing.T) {
	r := NewRadar(happinessRecords(), DefaultRadarOptions())

	sc, err := r.Recompute(filter.Default())
	if err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	summary := sc.Data.(RadarSummary)
	if summary.Profile.Mode != aggregate.ModeCorrelation {
		t.Errorf("mode = %s, want correlation", summary.Profile.Mode)
	}
	if summary.Series != "All Regions" {
		t.Errorf("series = %q", summary.Series)
	}
	if sc.Count(KindPolygon, "radar-shape") != 1 {
		t.Error("want one radar polygon")
	}
	if got := sc.Count(KindCircle, "radar-point"); got != len(record.HappinessFactors) {
		t.Errorf("points = %d, want %d", got, len(record.HappinessFactors))
	}

	s := filter.Default()
	s.Level = filter.ByCountry
	s.Country = "Norway"
	sc, err = r.Recompute(s)
	if err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	summary = sc.Data.(RadarSummary)
	if summary.Profile.Mode != aggregate.ModeSinglePoint {
		t.Errorf("mode = %s, want single point", summary.Profile.Mode)
	}
	if summary.Series != "Norway" {
		t.Errorf("series = %q, want Norway", summary.Series)
	}
}

func TestRadar_EmptyMessages(t *testing.T) {
	r := NewRadar(happinessRecords(), DefaultRadarOptions())
	tests := []struct {
		name  string
		state func(filter.State) filter.State
		want  string
	}{
		{
			name:  "missing year",
			state: func(s filter.State) filter.State { s.Year = "1999"; return s },
			want:  "No data available for the year 1999. Please select a different year.",
		},
		{
			name: "country absent in year",
			state: func(s filter.State) filter.State {
				s.Year, s.Level, s.Country = "2016", filter.ByCountry, "Norway"
				return s
			},
			want: "No data available for Norway in 2016. Try selecting 'All' for year or choose a different country.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc, err := Render(r, tt.state(filter.Default()))
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			if sc.Message != tt.want {
				t.Errorf("message = %q, want %q", sc.Message, tt.want)
			}
		})
	}
}

func leaderboardRecords() []record.Record {
	var out []record.Record
	for _, year := range []string{"2016", "2015", "2017"} {
		for i := 0; i < 25; i++ {
			out = append(out, country(fmt.Sprintf("c%d", i), "Western Europe", year, 1+float64(i)*0.2))
		}
	}
	return out
}

func TestLeaderboard_Rows(t *testing.T) {
	lb := NewLeaderboard(leaderboardRecords(), DefaultLeaderboardOptions())

	if got, want := lb.Years(), []string{"2015", "2016", "2017"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Years() = %v, want %v", got, want)
	}
	if lb.StartIndex() != 0 {
		t.Errorf("StartIndex() = %d, want 0", lb.StartIndex())
	}

	rows := lb.Rows("2015", "")
	if len(rows) != 20 {
		t.Fatalf("rows = %d, want 20", len(rows))
	}
	if rows[0].Country != "c24" || rows[0].Rank != 1 {
		t.Errorf("first row = %+v, want c24 at rank 1", rows[0])
	}

	rows = lb.Rows("2015", "c0")
	if len(rows) != 20 {
		t.Fatalf("rows = %d, want 20", len(rows))
	}
	if !rows[0].Pinned || rows[0].Country != "c0" || rows[0].Rank != 25 {
		t.Errorf("pinned row = %+v, want c0 at rank 25", rows[0])
	}
	if rows[1].Country != "c24" {
		t.Errorf("second row = %s, want c24", rows[1].Country)
	}
}

func TestLeaderboard_Frame(t *testing.T) {
	lb := NewLeaderboard(leaderboardRecords(), DefaultLeaderboardOptions())
	s := filter.Default()
	s.Selected = "c24"

	sc, err := lb.Frame(s, 4)
	if err != nil {
		t.Fatalf("Frame: %v", err)
	}
	summary := sc.Data.(LeaderboardSummary)
	if summary.Year != "2016" || summary.YearIndex != 1 {
		t.Errorf("frame 4 = %s (%d), want 2016 (1)", summary.Year, summary.YearIndex)
	}
	if sc.Count(KindRect, "bar") != 20 {
		t.Errorf("bars = %d, want 20", sc.Count(KindRect, "bar"))
	}
	for _, sh := range sc.Shapes {
		if sh.Class != "bar" {
			continue
		}
		want := 0.5
		if sh.ID == "c24" {
			want = 1
		}
		if sh.Opacity != want {
			t.Errorf("bar %s opacity = %v, want %v", sh.ID, sh.Opacity, want)
		}
	}

	s.Year = "1990"
	if _, err := lb.Recompute(s); !errors.Is(err, filter.ErrEmptyResult) {
		t.Errorf("Recompute(1990) err = %v, want ErrEmptyResult", err)
	}
}

func TestLeaderboard_NoYears(t *testing.T) {
	lb := NewLeaderboard(nil, DefaultLeaderboardOptions())
	if _, err := lb.Frame(filter.Default(), 0); !errors.Is(err, filter.ErrEmptyResult) {
		t.Errorf("err = %v, want ErrEmptyResult", err)
	}
}

func hitSong(name string, hits int, energy, tempo, valence float64) record.Record {
	return record.Record{
		Text: map[string]string{record.FieldTrack: name},
		Num: map[string]float64{
			"energy": energy, "tempo_x": tempo, "valence": valence,
			record.FieldPopularity: 80,
		},
		HitCount: hits,
		IsHit:    hits >= 5,
	}
}

func parallelChart(records []record.Record) *Parallel {
	opts := DefaultParallelOptions()
	opts.Features = []string{"energy", "tempo_x", "valence"}
	return NewParallel(records, opts)
}

func TestParallel_Recompute(t *testing.T) {
	p := parallelChart([]record.Record{
		hitSong("a", 5, 0.0, 90, 0.1),
		hitSong("b", 6, 0.5, 120, 0.5),
		hitSong("c", 9, 1.0, 150, 0.9),
		hitSong("d", 2, 0.7, 100, 0.2),
	})

	s := filter.Default()
	s.Brushes = []filter.Brush{{Feature: "energy", Lo: 1, Hi: 0.5}}
	sc, err := p.Recompute(s)
	if err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	if got := sc.Count(KindPolyline, "line"); got != 3 {
		t.Errorf("lines = %d, want 3 hit songs", got)
	}
	summary := sc.Data.(ParallelSummary)
	if summary.Brushed != 2 {
		t.Errorf("brushed = %d, want 2", summary.Brushed)
	}
	if sc.Count(KindRect, "brush") != 1 {
		t.Error("want one brush rect")
	}
	for _, sh := range sc.Shapes {
		if sh.Class == "line" && sh.ID == "a" && sh.Opacity != 0.1 {
			t.Errorf("unbrushed line opacity = %v, want 0.1", sh.Opacity)
		}
	}
}

func TestParallel_Order(t *testing.T) {
	p := parallelChart([]record.Record{hitSong("a", 5, 0, 0, 0)})

	s := filter.Default()
	s.Order = []string{"valence"}
	got, err := p.Order(s)
	if err != nil {
		t.Fatalf("Order: %v", err)
	}
	if want := []string{"valence", "energy", "tempo_x"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Order = %v, want %v", got, want)
	}

	s.Order = []string{"bpm"}
	if _, err := p.Order(s); !errors.Is(err, ErrUnknownFeature) {
		t.Errorf("err = %v, want ErrUnknownFeature", err)
	}
}

func TestMoveAxis(t *testing.T) {
	order := []string{"a", "b", "c", "d"}
	tests := []struct {
		feature string
		to      int
		want    []string
	}{
		{"d", 0, []string{"d", "a", "b", "c"}},
		{"a", 3, []string{"b", "c", "d", "a"}},
		{"b", 99, []string{"a", "c", "d", "b"}},
		{"x", 1, []string{"a", "b", "c", "d"}},
	}
	for _, tt := range tests {
		if got := MoveAxis(order, tt.feature, tt.to); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("MoveAxis(%s, %d) = %v, want %v", tt.feature, tt.to, got, tt.want)
		}
	}
}

func TestParallel_NoHits(t *testing.T) {
	p := parallelChart([]record.Record{hitSong("a", 1, 0, 0, 0)})
	sc, err := Render(p, filter.Default())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if sc.Message != "No songs are hits on at least 5 platforms." {
		t.Errorf("message = %q", sc.Message)
	}
}

func TestColors(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"darker", Darker("#ffffff", 1), "#b3b3b3"},
		{"darker passthrough", Darker("steelblue", 1), "steelblue"},
		{"popularity low", PopularityColor(0), "#ff4444"},
		{"popularity high", PopularityColor(100), "#44ff44"},
		{"unknown region", RegionColor("Atlantis"), DefaultColor},
		{"platform", PlatformColor("Spotify"), "#1DB954"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %s, want %s", tt.name, tt.got, tt.want)
		}
	}
}
