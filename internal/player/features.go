package player

// Feature is a bitmask advertising which commands the player supports.
//
// Bit values follow the upstream media player controller convention so the
// features status topic can override the mask with a wire-compatible integer.
type Feature uint32

const (
	FeaturePause         Feature = 1
	FeatureSeek          Feature = 2
	FeatureVolumeSet     Feature = 4
	FeatureVolumeMute    Feature = 8
	FeaturePreviousTrack Feature = 16
	FeatureNextTrack     Feature = 32
	FeatureTurnOn        Feature = 128
	FeatureTurnOff       Feature = 256
	FeatureVolumeStep    Feature = 1024
	FeatureSelectSource  Feature = 2048
	FeatureStop          Feature = 4096
	FeaturePlay          Feature = 16384
)

// baseFeatures are always advertised regardless of configuration.
const baseFeatures = FeatureTurnOn | FeatureTurnOff | FeaturePlay | FeaturePause | FeatureStop

// Has reports whether the mask includes the given feature.
func (f Feature) Has(feature Feature) bool {
	return f&feature != 0
}

// deriveFeatures computes the feature mask from the configured capabilities.
//
// Runs once at construction; the result is independent of map iteration
// order because the derivation is a pure bitwise OR.
func deriveFeatures(caps map[Capability]binding) Feature {
	features := baseFeatures

	for capability := range caps {
		switch capability {
		case CapVolume:
			features |= FeatureVolumeSet
		case CapMute:
			features |= FeatureVolumeMute
		case CapVolumeUp, CapVolumeDown:
			features |= FeatureVolumeStep
		case CapNext:
			features |= FeatureNextTrack
		case CapPrev:
			features |= FeaturePreviousTrack
		case CapSource:
			features |= FeatureSelectSource
		case CapSeek:
			features |= FeatureSeek
		}
	}

	return features
}
