package record

// DefaultTruthToken is the exact string that reads as boolean true.
const DefaultTruthToken = "True"

// Schema declares how raw columns are coerced.
type Schema struct {
	Name       string   `json:"name" yaml:"name"`
	Text       []string `json:"text" yaml:"text"`
	Numeric    []string `json:"numeric" yaml:"numeric"`
	Boolean    []string `json:"boolean" yaml:"boolean"`
	TruthToken string   `json:"truth_token,omitempty" yaml:"truth_token,omitempty"`

	// HitFields are the boolean columns counted into Record.HitCount.
	HitFields []string `json:"hit_fields,omitempty" yaml:"hit_fields,omitempty"`
	// HitThreshold is the minimum HitCount for Record.IsHit.
	HitThreshold int `json:"hit_threshold,omitempty" yaml:"hit_threshold,omitempty"`
}

// Platform is a streaming platform whose hit flag lives in a boolean column.
type Platform struct {
	Name   string
	Column string
	Color  string
}

// Platforms are the nine platforms of the song dataset, in display order.
var Platforms = []Platform{
	{Name: "Spotify", Column: "Spotify_Hit", Color: "#1DB954"},
	{Name: "YouTube", Column: "YouTube_Hit", Color: "#FF0000"},
	{Name: "TikTok", Column: "TikTok_Hit", Color: "#000000"},
	{Name: "Apple Music", Column: "Apple Music_Hit", Color: "#FC3C44"},
	{Name: "SiriusXM", Column: "SiriusXM_Hit", Color: "#0033A0"},
	{Name: "Deezer", Column: "Deezer_Hit", Color: "#FF0092"},
	{Name: "Amazon", Column: "Amazon_Hit", Color: "#00A8E1"},
	{Name: "Pandora", Column: "Pandora_Hit", Color: "#3668FF"},
	{Name: "Shazam", Column: "Shazam_Hit", Color: "#0088FF"},
}

// PlatformByName looks up a platform from Platforms.
func PlatformByName(name string) (Platform, bool) {
	for _, p := range Platforms {
		if p.Name == name {
			return p, true
		}
	}
	return Platform{}, false
}

// Field names shared across the code base.
const (
	FieldGenre      = "track_genre"
	FieldTrack      = "track_name"
	FieldArtists    = "artists"
	FieldPopularity = "popularity"

	FieldCountry   = "country"
	FieldRegion    = "region"
	FieldYear      = "year"
	FieldHappiness = "happiness_score"
)

// AudioFeatures are the features shown on the parallel coordinates chart.
var AudioFeatures = []string{
	"danceability", "energy", "key", "loudness", "mode",
	"speechiness", "acousticness", "instrumentalness",
	"liveness", "valence", "tempo_x", "time_signature",
	"spectral_centroid", "spectral_bandwidth", "spectral_rolloff",
	"zero_crossing_rate", "chroma_stft", "beat_strength",
	"harmonic_to_percussive_ratio", "speech_to_music_ratio",
}

// MFCCFeatures are the thirteen MFCC coefficients of the song dataset.
var MFCCFeatures = []string{
	"mfcc_1", "mfcc_2", "mfcc_3", "mfcc_4", "mfcc_5", "mfcc_6", "mfcc_7",
	"mfcc_8", "mfcc_9", "mfcc_10", "mfcc_11", "mfcc_12", "mfcc_13",
}

// Factor is one happiness factor with its display label.
type Factor struct {
	Field string
	Label string
}

// HappinessFactors are the radar chart axes, in axis order.
var HappinessFactors = []Factor{
	{Field: "gdp_per_capita", Label: "GDP"},
	{Field: "social_support", Label: "Social\nSupport"},
	{Field: "healthy_life_expectancy", Label: "Life\nExpectancy"},
	{Field: "freedom_to_make_life_choices", Label: "Freedom"},
	{Field: "generosity", Label: "Generosity"},
	{Field: "perceptions_of_corruption", Label: "Corruption"},
}

// FactorFields returns the field names of HappinessFactors.
func FactorFields() []string {
	out := make([]string, len(HappinessFactors))
	for i, f := range HappinessFactors {
		out[i] = f.Field
	}
	return out
}

// SongSchema describes the song/platform dataset.
func SongSchema() Schema {
	hitCols := make([]string, len(Platforms))
	for i, p := range Platforms {
		hitCols[i] = p.Column
	}
	numeric := []string{FieldPopularity}
	numeric = append(numeric, AudioFeatures...)
	numeric = append(numeric, MFCCFeatures...)
	return Schema{
		Name:         "songs",
		Text:         []string{FieldTrack, FieldArtists, FieldGenre},
		Numeric:      numeric,
		Boolean:      hitCols,
		TruthToken:   DefaultTruthToken,
		HitFields:    hitCols,
		HitThreshold: 5,
	}
}

// HappinessSchema describes the world happiness dataset.
func HappinessSchema() Schema {
	numeric := []string{FieldHappiness}
	numeric = append(numeric, FactorFields()...)
	return Schema{
		Name:    "happiness",
		Text:    []string{FieldCountry, FieldRegion, FieldYear},
		Numeric: numeric,
	}
}
