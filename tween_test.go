package tether

import (
	"math"
	"testing"

	"github.com/tanema/gween/ease"
)

func TestTweenOffsetReachesTarget(t *testing.T) {
	_, card, in := newTestRig(Config{})

	tw := TweenOffset(in, 100, 50, 1.0, ease.Linear)

	// Run for full duration using exact halves to avoid float32
	// accumulation drift.
	tw.Update(0.5)
	if tw.Done {
		t.Fatal("should not be done at halfway")
	}
	half := in.Offset()
	if math.Abs(half.X-50) > 0.5 || math.Abs(half.Y-25) > 0.5 {
		t.Errorf("halfway Offset = %v, want ~(50, 25)", half)
	}

	tw.Update(0.5)
	if !tw.Done {
		t.Fatal("expected Done after full duration")
	}
	got := in.Offset()
	if math.Abs(got.X-100) > 0.5 || math.Abs(got.Y-50) > 0.5 {
		t.Errorf("Offset = %v, want ~(100, 50)", got)
	}
	if math.Abs(card.TranslateX-100) > 0.5 {
		t.Errorf("TranslateX = %v, want ~100; the transform plugin should track the tween", card.TranslateX)
	}
}

func TestTweenOffsetStartsFromCurrent(t *testing.T) {
	_, _, in := newTestRig(Config{})
	in.SetOffset(20, 10)

	tw := TweenOffset(in, 120, 10, 1.0, ease.Linear)
	tw.Update(0.5)
	got := in.Offset()
	if math.Abs(got.X-70) > 0.5 || math.Abs(got.Y-10) > 0.5 {
		t.Errorf("halfway Offset = %v, want ~(70, 10)", got)
	}
}

func TestTweenOffsetNormalizedByGrid(t *testing.T) {
	_, _, in := newTestRig(Config{}, Grid(30, 30))

	tw := TweenOffset(in, 100, 0, 1.0, ease.Linear)
	tw.Update(0.5)
	if off := in.Offset(); snapToStep(off.X, 30) != off.X {
		t.Errorf("mid-tween Offset.X = %v, not on the 30-step lattice", off.X)
	}
	tw.Update(0.5)
	if !tw.Done {
		t.Fatal("expected Done after full duration")
	}
	if in.Offset() != (Vec2{X: 90}) {
		t.Errorf("Offset = %v, want the snapped (90, 0)", in.Offset())
	}
}

func TestTweenOffsetAbandonsOnInteraction(t *testing.T) {
	_, _, in := newTestRig(Config{})

	tw := TweenOffset(in, 100, 100, 1.0, ease.Linear)
	tw.Update(0.25)
	before := in.Offset()

	in.handlePress(pressEvent(50, 50), nil)
	tw.Update(0.25)
	if !tw.Done {
		t.Error("tween should abandon once a pointer interaction begins")
	}
	if in.Offset() != before {
		t.Errorf("Offset = %v, want untouched %v", in.Offset(), before)
	}
	in.handleRelease(releaseEvent(50, 50))
}

func TestTweenOffsetAbandonsOnDestroy(t *testing.T) {
	_, _, in := newTestRig(Config{})

	tw := TweenOffset(in, 100, 100, 1.0, ease.Linear)
	in.Destroy()
	tw.Update(0.5)
	if !tw.Done {
		t.Error("tween should abandon when the instance is destroyed")
	}
}

func TestTweenOffsetUpdateAfterDone(t *testing.T) {
	_, _, in := newTestRig(Config{})

	tw := TweenOffset(in, 40, 0, 0.5, ease.Linear)
	tw.Update(0.25)
	tw.Update(0.25)
	if !tw.Done {
		t.Fatal("expected Done")
	}

	in.SetOffset(0, 0)
	tw.Update(1.0)
	if in.Offset() != (Vec2{}) {
		t.Errorf("Offset = %v, want unchanged zero after Done", in.Offset())
	}
}

func TestTweenOffsetNilInstancePanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic, got none")
		}
	}()
	TweenOffset(nil, 10, 10, 1.0, ease.Linear)
}

func TestTweenOffsetEased(t *testing.T) {
	_, _, in := newTestRig(Config{})

	// An out-quad curve front-loads the motion: past half the distance at
	// half the time, still landing exactly on the target.
	tw := TweenOffset(in, 100, 0, 1.0, ease.OutQuad)
	tw.Update(0.5)
	if in.Offset().X <= 50 {
		t.Errorf("Offset.X = %v, want > 50 at halfway for an eased curve", in.Offset().X)
	}
	tw.Update(0.5)
	if !tw.Done {
		t.Fatal("expected Done after full duration")
	}
	if math.Abs(in.Offset().X-100) > 0.5 {
		t.Errorf("Offset.X = %v, want ~100", in.Offset().X)
	}
}
