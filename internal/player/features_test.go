package player

import (
	"math/rand"
	"testing"
)

func TestDeriveFeaturesBase(t *testing.T) {
	caps := map[Capability]binding{
		CapState: {},
		CapTitle: {},
	}
	got := deriveFeatures(caps)
	want := FeatureTurnOn | FeatureTurnOff | FeaturePlay | FeaturePause | FeatureStop
	if got != want {
		t.Errorf("deriveFeatures() = %d, want %d", got, want)
	}
}

func TestDeriveFeaturesPerCapability(t *testing.T) {
	tests := []struct {
		capability Capability
		want       Feature
	}{
		{CapVolume, FeatureVolumeSet},
		{CapMute, FeatureVolumeMute},
		{CapVolumeUp, FeatureVolumeStep},
		{CapVolumeDown, FeatureVolumeStep},
		{CapNext, FeatureNextTrack},
		{CapPrev, FeaturePreviousTrack},
		{CapSource, FeatureSelectSource},
		{CapSeek, FeatureSeek},
	}

	for _, tt := range tests {
		t.Run(string(tt.capability), func(t *testing.T) {
			caps := map[Capability]binding{
				CapState:      {},
				CapTitle:      {},
				tt.capability: {},
			}
			got := deriveFeatures(caps)
			if !got.Has(tt.want) {
				t.Errorf("deriveFeatures() = %d, missing bit %d", got, tt.want)
			}
			if got&^(baseFeatures|tt.want) != 0 {
				t.Errorf("deriveFeatures() = %d, has bits beyond base and %d", got, tt.want)
			}
		})
	}
}

// The mask must not depend on the order capabilities are considered in.
// Maps iterate in random order already; building from shuffled slices makes
// the property explicit.
func TestDeriveFeaturesOrderIndependent(t *testing.T) {
	all := []Capability{
		CapState, CapTitle, CapVolume, CapMute, CapVolumeUp, CapVolumeDown,
		CapNext, CapPrev, CapSource, CapSeek, CapStop, CapCover,
	}

	caps := make(map[Capability]binding, len(all))
	for _, c := range all {
		caps[c] = binding{}
	}
	want := deriveFeatures(caps)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		shuffled := append([]Capability(nil), all...)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		rebuilt := make(map[Capability]binding, len(shuffled))
		for _, c := range shuffled {
			rebuilt[c] = binding{}
		}
		if got := deriveFeatures(rebuilt); got != want {
			t.Fatalf("deriveFeatures() = %d after shuffle %d, want %d", got, i, want)
		}
	}
}

func TestFeatureHas(t *testing.T) {
	mask := FeaturePlay | FeatureVolumeSet
	if !mask.Has(FeaturePlay) {
		t.Error("Has(FeaturePlay) = false")
	}
	if mask.Has(FeatureSeek) {
		t.Error("Has(FeatureSeek) = true")
	}
}
