package analysis

// AudioDescription is the per-file numeric descriptor handed to the
// recommendation collaborator. It is produced once per file and never
// mutated afterwards.
type AudioDescription struct {
	SampleRate   uint32       `json:"sample_rate"`
	Duration     float64      `json:"duration"` // seconds
	TotalSamples uint64       `json:"total_samples"`
	Spectrum     []complex128 `json:"-"` // averaged complex spectrum, length = frame size
	RMS          float32      `json:"rms"`
	ZCR          uint64       `json:"zcr"`
	Energy       float32      `json:"energy"`
}
