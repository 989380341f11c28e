//go:build integration

package steps

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cucumber/godog"
	"github.com/rs/zerolog"

	"reelcut/application/export"
	"reelcut/domain/draft"
	"reelcut/domain/render"
	"reelcut/domain/timeline"
)

// stubEngine renders a canned blob or fails in a given phase
type stubEngine struct {
	failPhase render.Phase
	requests  []render.Request
}

func (e *stubEngine) Render(ctx context.Context, req render.Request, progress render.ProgressFunc) (*render.Output, error) {
	if e.failPhase != "" {
		return nil, &render.EngineError{Phase: e.failPhase, Message: "render aborted"}
	}
	e.requests = append(e.requests, req)
	var total float64
	for _, v := range req.Videos {
		total += v.Duration
	}
	return &render.Output{Data: []byte("rendered"), DurationSeconds: total}, nil
}

// stubRegistrar records stored compositions and registered assets
type stubRegistrar struct {
	stored []string
	assets []render.ComposedAsset
}

func (r *stubRegistrar) StoreComposition(ctx context.Context, filename string, data []byte) (string, error) {
	r.stored = append(r.stored, filename)
	return "https://gallery.example/" + filename, nil
}

func (r *stubRegistrar) RegisterAsset(ctx context.Context, asset render.ComposedAsset) error {
	r.assets = append(r.assets, asset)
	return nil
}

// memoryDraftStore is an in-memory draft.Store
type memoryDraftStore struct {
	drafts map[string]*draft.Draft
}

func (s *memoryDraftStore) Save(ctx context.Context, projectID string, d *draft.Draft) error {
	s.drafts[projectID] = d
	return nil
}

func (s *memoryDraftStore) Load(ctx context.Context, projectID string) (*draft.Draft, error) {
	d, ok := s.drafts[projectID]
	if !ok {
		return nil, draft.ErrNotFound
	}
	return d, nil
}

func (s *memoryDraftStore) Delete(ctx context.Context, projectID string) error {
	delete(s.drafts, projectID)
	return nil
}

func (s *memoryDraftStore) List(ctx context.Context) ([]string, error) {
	var ids []string
	for id := range s.drafts {
		ids = append(ids, id)
	}
	return ids, nil
}

// exportContext holds test state for export scenarios
type exportContext struct {
	engine    *stubEngine
	registrar *stubRegistrar
	store     *memoryDraftStore
	output    *bytes.Buffer
	result    *export.Result
	err       error
}

// SharedExportContext is reset before each scenario via Before hook
var SharedExportContext *exportContext

func getExportContext() *exportContext {
	return SharedExportContext
}

func InitializeExportScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		SharedExportContext = &exportContext{
			engine:    &stubEngine{},
			registrar: &stubRegistrar{},
			store:     &memoryDraftStore{drafts: make(map[string]*draft.Draft)},
			output:    &bytes.Buffer{},
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		SharedExportContext = nil
		return c, nil
	})

	ctx.Step(`^a saved draft for "([^"]*)" containing the clips "([^"]*)"$`, aSavedDraftContaining)
	ctx.Step(`^a saved draft for "([^"]*)" containing no clips$`, aSavedDraftContainingNoClips)
	ctx.Step(`^the render engine fails during processing$`, theRenderEngineFailsDuringProcessing)
	ctx.Step(`^I export the project "([^"]*)" at aspect "([^"]*)"$`, iExportTheProject)
	ctx.Step(`^the composition should be uploaded to the gallery$`, theCompositionShouldBeUploaded)
	ctx.Step(`^the registered asset should have aspect "([^"]*)"$`, theRegisteredAssetShouldHaveAspect)
	ctx.Step(`^the draft should be cleared$`, theDraftShouldBeCleared)
	ctx.Step(`^the draft should remain$`, theDraftShouldRemain)
	ctx.Step(`^the export should fail$`, theExportShouldFail)
}

func aSavedDraftContaining(projectID, list string) error {
	e := getExportContext()
	d := &draft.Draft{SavedAt: time.Now().UTC()}
	for _, ref := range strings.Split(list, ",") {
		clip, err := timeline.NewClip(strings.TrimSpace(ref), 5)
		if err != nil {
			return err
		}
		d.Clips = append(d.Clips, clip)
	}
	return e.store.Save(context.Background(), projectID, d)
}

func aSavedDraftContainingNoClips(projectID string) error {
	e := getExportContext()
	return e.store.Save(context.Background(), projectID, &draft.Draft{SavedAt: time.Now().UTC()})
}

func theRenderEngineFailsDuringProcessing() error {
	getExportContext().engine.failPhase = render.PhaseProcessing
	return nil
}

func iExportTheProject(projectID, aspect string) error {
	e := getExportContext()
	d, err := e.store.Load(context.Background(), projectID)
	if err != nil {
		return err
	}

	svc := export.NewService(e.engine, e.registrar, e.store, e.output, zerolog.Nop())
	e.result, e.err = svc.Export(context.Background(), d.Restore(), export.Input{
		ProjectID:   projectID,
		AspectRatio: aspect,
	})
	return nil
}

func theCompositionShouldBeUploaded() error {
	e := getExportContext()
	if e.err != nil {
		return fmt.Errorf("export failed: %v", e.err)
	}
	if len(e.registrar.stored) != 1 {
		return fmt.Errorf("stored %d compositions, want 1", len(e.registrar.stored))
	}
	return nil
}

func theRegisteredAssetShouldHaveAspect(aspect string) error {
	e := getExportContext()
	if len(e.registrar.assets) != 1 {
		return fmt.Errorf("registered %d assets, want 1", len(e.registrar.assets))
	}
	if got := e.registrar.assets[0].AspectRatio; got != aspect {
		return fmt.Errorf("asset aspect is %q, want %q", got, aspect)
	}
	return nil
}

func theDraftShouldBeCleared() error {
	e := getExportContext()
	if len(e.store.drafts) != 0 {
		return fmt.Errorf("store still holds %d drafts", len(e.store.drafts))
	}
	return nil
}

func theDraftShouldRemain() error {
	e := getExportContext()
	if len(e.store.drafts) == 0 {
		return fmt.Errorf("draft was cleared")
	}
	return nil
}

func theExportShouldFail() error {
	e := getExportContext()
	if e.err == nil {
		return fmt.Errorf("expected the export to fail")
	}
	e.err = nil
	return nil
}
