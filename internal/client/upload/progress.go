package upload

import "sync"

type Step string

const (
	StepMetadata    Step = "metadata"
	StepPresign     Step = "presign"
	StepUpload      Step = "upload"
	StepAsset       Step = "asset"
	StepTranscoding Step = "transcoding"
	StepCompleted   Step = "completed"
)

// Percent at which each step is done.
const (
	metadataDone    = 20
	presignDone     = 30
	uploadDone      = 80
	assetDone       = 85
	transcodingDone = 90
	completedDone   = 100
)

// Progress is one observation of a running upload.
type Progress struct {
	Step     Step
	Percent  int
	Degraded bool
	Message  string
}

// Observer receives progress. Calls are serialized and arrive in
// non-decreasing percent order; the observer must not block for long.
type Observer func(Progress)

type tracker struct {
	mu       sync.Mutex
	observer Observer
	step     Step
	percent  int
	degraded bool
}

func newTracker(o Observer) *tracker {
	if o == nil {
		o = func(Progress) {}
	}
	return &tracker{observer: o}
}

// stepOrder ranks steps; a run only moves forward through it.
var stepOrder = map[Step]int{
	StepMetadata:    1,
	StepPresign:     2,
	StepUpload:      3,
	StepAsset:       4,
	StepTranscoding: 5,
	StepCompleted:   6,
}

// report moves to step and raises percent. Lower percents are clamped to
// the current value; reports for a step before the current one are dropped.
func (t *tracker) report(step Step, percent int, msg string) {
	t.mu.Lock()
	if stepOrder[step] < stepOrder[t.step] {
		t.mu.Unlock()
		return
	}
	if percent > completedDone {
		percent = completedDone
	}
	if percent > t.percent {
		t.percent = percent
	}
	t.step = step
	defer t.mu.Unlock()

	t.observer(Progress{Step: step, Percent: t.percent, Degraded: t.degraded, Message: msg})
}

func (t *tracker) degrade() {
	t.mu.Lock()
	t.degraded = true
	t.mu.Unlock()
}

func (t *tracker) current() (Step, int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.step, t.percent, t.degraded
}

// transferPercent maps sent bytes onto the upload window.
func transferPercent(sent, total int64) int {
	if total <= 0 {
		return presignDone
	}
	if sent > total {
		sent = total
	}
	return presignDone + int(int64(uploadDone-presignDone)*sent/total)
}
