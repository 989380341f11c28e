//go:build integration

package steps

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/cucumber/godog"

	"reelcut/application/editor"
	"reelcut/domain/media"
	"reelcut/domain/timeline"
)

// stubProber returns configurable fixed durations
type stubProber struct {
	videoSeconds float64
	audioSeconds float64
}

func (p *stubProber) Probe(ctx context.Context, sourceRef string, kind media.Kind) float64 {
	if kind == media.KindAudio {
		return p.audioSeconds
	}
	return p.videoSeconds
}

// editingContext holds test state for editing scenarios
type editingContext struct {
	prober *stubProber
	editor *editor.Editor
	err    error
}

// SharedEditingContext is reset before each scenario via Before hook
var SharedEditingContext *editingContext

func getEditingContext() *editingContext {
	return SharedEditingContext
}

func InitializeEditingScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		prober := &stubProber{videoSeconds: 5, audioSeconds: 10}
		SharedEditingContext = &editingContext{
			prober: prober,
			editor: editor.New(prober),
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		SharedEditingContext = nil
		return c, nil
	})

	ctx.Step(`^a media library where every video lasts "([^"]*)" seconds$`, everyVideoLasts)
	ctx.Step(`^every audio file lasts "([^"]*)" seconds$`, everyAudioLasts)
	ctx.Step(`^I add the clips "([^"]*)"$`, iAddTheClips)
	ctx.Step(`^I add the audio track "([^"]*)"$`, iAddTheAudioTrack)
	ctx.Step(`^I set a "([^"]*)" transition of "([^"]*)" seconds after clip (\d+)$`, iSetATransition)
	ctx.Step(`^I move the playhead to "([^"]*)" seconds and split$`, iMoveThePlayheadAndSplit)
	ctx.Step(`^I delete clip (\d+)$`, iDeleteClip)
	ctx.Step(`^the timeline should contain (\d+) clips$`, theTimelineShouldContainClips)
	ctx.Step(`^the total duration should be "([^"]*)" seconds$`, theTotalDurationShouldBe)
	ctx.Step(`^the clip lengths should be "([^"]*)"$`, theClipLengthsShouldBe)
	ctx.Step(`^the edit should be rejected$`, theEditShouldBeRejected)
}

func everyVideoLasts(seconds string) error {
	v, err := strconv.ParseFloat(seconds, 64)
	if err != nil {
		return err
	}
	getEditingContext().prober.videoSeconds = v
	return nil
}

func everyAudioLasts(seconds string) error {
	v, err := strconv.ParseFloat(seconds, 64)
	if err != nil {
		return err
	}
	getEditingContext().prober.audioSeconds = v
	return nil
}

func iAddTheClips(list string) error {
	e := getEditingContext()
	for _, ref := range strings.Split(list, ",") {
		if _, err := e.editor.AddClip(context.Background(), strings.TrimSpace(ref)); err != nil {
			return err
		}
	}
	return nil
}

func iAddTheAudioTrack(ref string) error {
	e := getEditingContext()
	_, err := e.editor.AddAudioTrack(context.Background(), ref)
	return err
}

func iSetATransition(typName, duration string, seam int) error {
	e := getEditingContext()
	typ, err := timeline.ParseTransitionType(typName)
	if err != nil {
		return err
	}
	d, err := strconv.ParseFloat(duration, 64)
	if err != nil {
		return err
	}
	return e.editor.SetTransition(seam, typ, d)
}

func iMoveThePlayheadAndSplit(seconds string) error {
	e := getEditingContext()
	to, err := strconv.ParseFloat(seconds, 64)
	if err != nil {
		return err
	}
	e.editor.Scrub(to)
	e.err = e.editor.SplitAtPlayhead()
	return nil
}

func iDeleteClip(index int) error {
	e := getEditingContext()
	var id string
	e.editor.Update(func(s *timeline.State) {
		if index < len(s.Clips) {
			id = s.Clips[index].ID
		}
	})
	if id == "" {
		return fmt.Errorf("no clip %d", index)
	}
	e.err = e.editor.DeleteClip(id)
	return nil
}

func theTimelineShouldContainClips(want int) error {
	e := getEditingContext()
	var got int
	e.editor.Update(func(s *timeline.State) { got = len(s.Clips) })
	if got != want {
		return fmt.Errorf("timeline has %d clips, want %d", got, want)
	}
	return nil
}

func theTotalDurationShouldBe(seconds string) error {
	want, err := strconv.ParseFloat(seconds, 64)
	if err != nil {
		return err
	}
	e := getEditingContext()
	var got float64
	e.editor.Update(func(s *timeline.State) { got = s.TotalDuration() })
	if diff := got - want; diff > 1e-9 || diff < -1e-9 {
		return fmt.Errorf("total duration is %v, want %v", got, want)
	}
	return nil
}

func theClipLengthsShouldBe(list string) error {
	e := getEditingContext()
	var got []float64
	e.editor.Update(func(s *timeline.State) {
		for _, c := range s.Clips {
			got = append(got, c.Seconds())
		}
	})

	parts := strings.Split(list, ",")
	if len(parts) != len(got) {
		return fmt.Errorf("timeline has %d clips, want %d", len(got), len(parts))
	}
	for i, p := range parts {
		want, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return err
		}
		if diff := got[i] - want; diff > 1e-9 || diff < -1e-9 {
			return fmt.Errorf("clip %d lasts %v, want %v", i, got[i], want)
		}
	}
	return nil
}

func theEditShouldBeRejected() error {
	e := getEditingContext()
	if e.err == nil {
		return fmt.Errorf("expected the edit to be rejected")
	}
	e.err = nil
	return nil
}
