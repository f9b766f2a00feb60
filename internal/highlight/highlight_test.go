package highlight

import (
	"reflect"
	"testing"

	"github.com/hitboard/hitboard/internal/aggregate"
	"github.com/hitboard/hitboard/internal/filter"
)

var links = []aggregate.Link{
	{Source: "Spotify", Target: "Jazz", Weight: 4},
	{Source: "Spotify", Target: "Pop", Weight: 9},
	{Source: "TikTok", Target: "Jazz", Weight: 1},
	{Source: "TikTok", Target: "Rock", Weight: 2},
}

func TestLinks(t *testing.T) {
	tests := []struct {
		name string
		sel  Selection
		want []bool
	}{
		{"none", Selection{}, []bool{true, true, true, true}},
		{"genre", Selection{Target: "Jazz"}, []bool{true, false, true, false}},
		{"platform", Selection{Source: "TikTok"}, []bool{false, false, true, true}},
		{"pair", Selection{Source: "Spotify", Target: "Jazz"}, []bool{true, false, false, false}},
		{"unknown", Selection{Target: "Polka"}, []bool{false, false, false, false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Links(links, tt.sel); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Links() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFromState(t *testing.T) {
	s := filter.Default()
	s.Target = "Jazz"
	if got := FromState(s); got != (Selection{Target: "Jazz"}) {
		t.Errorf("FromState() = %+v", got)
	}
}

func TestOpacity(t *testing.T) {
	if Ribbon(true) != 0.7 || Ribbon(false) != 0.15 {
		t.Error("ribbon opacity")
	}
	if Row("Norway", "") != 1 || Row("Norway", "Chad") != 0.5 || Row("Chad", "Chad") != 1 {
		t.Error("row opacity")
	}
	if EntityOpacity(Entity("Pop", "Jazz")) != 0.3 {
		t.Error("entity opacity")
	}
}

func TestBrushed(t *testing.T) {
	values := []map[string]float64{
		{"energy": 0.9, "valence": 0.2},
		{"energy": 0.4, "valence": 0.8},
	}
	brushes := []filter.Brush{{Feature: "energy", Lo: 1, Hi: 0.5}}
	if got := Brushed(values, brushes); !reflect.DeepEqual(got, []bool{true, false}) {
		t.Errorf("Brushed() = %v", got)
	}
	if got := Brushed(values, nil); !reflect.DeepEqual(got, []bool{true, true}) {
		t.Errorf("Brushed(no brushes) = %v", got)
	}
}
