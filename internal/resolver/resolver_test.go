package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/scanvault/internal/domain"
	"github.com/MrSnakeDoc/scanvault/internal/recognition"
)

var image = recognition.Image{Base64: strings.Repeat("Q", 256)}

// fakeCaller answers each endpoint with a canned body or error and records
// the calls it received.
type fakeCaller struct {
	mu        sync.Mutex
	responses map[recognition.Endpoint]string
	errs      map[recognition.Endpoint]error
	calls     []recognition.Endpoint
	opts      map[recognition.Endpoint]recognition.Options
	images    map[recognition.Endpoint][]recognition.Image
}

func newFakeCaller() *fakeCaller {
	return &fakeCaller{
		responses: map[recognition.Endpoint]string{},
		errs:      map[recognition.Endpoint]error{},
		opts:      map[recognition.Endpoint]recognition.Options{},
		images:    map[recognition.Endpoint][]recognition.Image{},
	}
}

func (f *fakeCaller) Call(_ context.Context, endpoint recognition.Endpoint, images []recognition.Image, opts recognition.Options) (*recognition.Response, error) {
	f.mu.Lock()
	f.calls = append(f.calls, endpoint)
	f.opts[endpoint] = opts
	f.images[endpoint] = images
	body, hasBody := f.responses[endpoint]
	err := f.errs[endpoint]
	f.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if !hasBody {
		return nil, &recognition.TransportError{Endpoint: endpoint, StatusCode: http.StatusBadGateway, Reason: "unexpected call"}
	}
	return recognition.Parse([]byte(body))
}

func (f *fakeCaller) called() []recognition.Endpoint {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recognition.Endpoint(nil), f.calls...)
}

func objects(objs ...string) string {
	return `{"records":[{"_status":{"code":200},"_objects":[` + strings.Join(objs, ",") + `]}]}`
}

const (
	emptyRecord = `{"records":[{"_status":{"code":200},"_objects":[]}]}`
	comicObject = `{"name":"Comics","_tags":{"Subcategory":[{"name":"Marvel"}]}}`
	cardObject  = `{"name":"Card"}`
)

func identified(name string, extra string) string {
	return fmt.Sprintf(`{"name":"Card","_identification":{"best_match":{"name":%q%s}}}`, name, extra)
}

func TestIdentifyComicPathSkipsCardStrategies(t *testing.T) {
	caller := newFakeCaller()
	caller.responses[recognition.EndpointOCR] = emptyRecord
	caller.responses[recognition.EndpointDetect] = objects(comicObject)
	caller.responses[recognition.EndpointProcess] = objects(comicObject)
	caller.responses[recognition.EndpointComics] = objects(
		`{"name":"Comics","_identification":{"best_match":{"title":"Amazing Fantasy","name":"Amazing Fantasy #15","publisher":"Marvel","pricing":{"avg":"$1000"}}}}`)

	res := New(caller)
	out, err := res.Identify(context.Background(), image)
	require.NoError(t, err)
	require.True(t, out.Identified())

	assert.Equal(t, recognition.EndpointComics, out.Strategy)
	assert.Equal(t, "Amazing Fantasy #15", out.Card.Name)
	assert.Equal(t, "Marvel", out.Card.Publisher)
	require.NotNil(t, out.Card.Price)
	assert.Equal(t, 1000.0, *out.Card.Price)

	assert.Equal(t, []recognition.Endpoint{
		recognition.EndpointOCR,
		recognition.EndpointDetect,
		recognition.EndpointProcess,
		recognition.EndpointComics,
	}, caller.called())
	assert.True(t, caller.opts[recognition.EndpointComics].Pricing)
}

func TestIdentifyComicMissFallsToAnalyze(t *testing.T) {
	caller := newFakeCaller()
	caller.responses[recognition.EndpointOCR] = emptyRecord
	caller.responses[recognition.EndpointDetect] = objects(comicObject)
	caller.responses[recognition.EndpointProcess] = objects(comicObject)
	caller.responses[recognition.EndpointComics] = emptyRecord
	caller.responses[recognition.EndpointAnalyze] = objects(identified("X-Men #1", ""))

	out, err := New(caller).Identify(context.Background(), image)
	require.NoError(t, err)
	require.True(t, out.Identified())
	assert.Equal(t, recognition.EndpointAnalyze, out.Strategy)

	called := caller.called()
	assert.NotContains(t, called, recognition.EndpointSport)
	assert.NotContains(t, called, recognition.EndpointTCG)
	assert.Equal(t, recognition.EndpointAnalyze, called[len(called)-1])
}

func TestIdentifyPokemonTagRoutesToTCG(t *testing.T) {
	caller := newFakeCaller()
	caller.responses[recognition.EndpointOCR] = emptyRecord
	caller.responses[recognition.EndpointDetect] = objects(cardObject, cardObject)
	caller.responses[recognition.EndpointProcess] = objects(`{"name":"Card","_tags":{"Subcategory":[{"name":"Pokemon"}]}}`)
	caller.responses[recognition.EndpointTCG] = objects(identified("Charizard", `,"subcategory":"Pokemon","year":1999`))

	out, err := New(caller).Identify(context.Background(), image)
	require.NoError(t, err)
	require.True(t, out.Identified())
	assert.Equal(t, recognition.EndpointTCG, out.Strategy)
	assert.Equal(t, "1999", out.Card.Year)
	assert.NotContains(t, caller.called(), recognition.EndpointSport)

	opts := caller.opts[recognition.EndpointTCG]
	assert.True(t, opts.Pricing)
	assert.True(t, opts.SlabGrade)
	assert.True(t, opts.AnalyzeAll, "two cards detected")
}

func TestIdentifySportsCard(t *testing.T) {
	caller := newFakeCaller()
	caller.responses[recognition.EndpointOCR] = emptyRecord
	caller.responses[recognition.EndpointDetect] = objects(cardObject)
	caller.responses[recognition.EndpointProcess] = objects(`{"name":"Card","_tags":{"Subcategory":[{"name":"Baseball"}]}}`)
	caller.responses[recognition.EndpointSport] = objects(identified("Mike Trout", ""))

	out, err := New(caller).Identify(context.Background(), image)
	require.NoError(t, err)
	assert.Equal(t, recognition.EndpointSport, out.Strategy)
	assert.NotContains(t, caller.called(), recognition.EndpointTCG)
	assert.False(t, caller.opts[recognition.EndpointSport].AnalyzeAll)
}

func TestIdentifyAllTransportFailures(t *testing.T) {
	caller := newFakeCaller() // no canned bodies: every call is a transport failure

	out, err := New(caller).Identify(context.Background(), image)
	require.NoError(t, err)
	assert.False(t, out.Identified())
	assert.Empty(t, out.Strategy)

	// Without a category the card branch still runs.
	assert.Equal(t, []recognition.Endpoint{
		recognition.EndpointOCR,
		recognition.EndpointDetect,
		recognition.EndpointProcess,
		recognition.EndpointSport,
		recognition.EndpointAnalyze,
		recognition.EndpointSlab,
	}, caller.called())
	require.Len(t, out.Steps, 7)
	assert.Equal(t, "ocr_fallback", out.Steps[6].Step)
	assert.False(t, out.Steps[6].Called)
	for _, st := range out.Steps[:6] {
		assert.NotEmpty(t, st.Error)
	}
}

func TestIdentifyCategorizeFailureStillTriesSport(t *testing.T) {
	caller := newFakeCaller()
	caller.responses[recognition.EndpointOCR] = emptyRecord
	caller.responses[recognition.EndpointDetect] = objects(cardObject)
	caller.responses[recognition.EndpointSport] = objects(identified("Michael Jordan", `,"year":1986`))

	out, err := New(caller).Identify(context.Background(), image)
	require.NoError(t, err)
	require.True(t, out.Identified())
	assert.Equal(t, recognition.EndpointSport, out.Strategy)
	assert.Equal(t, "Michael Jordan", out.Card.Name)
	assert.Equal(t, []recognition.Endpoint{
		recognition.EndpointOCR,
		recognition.EndpointDetect,
		recognition.EndpointProcess,
		recognition.EndpointSport,
	}, caller.called())
	assert.NotEmpty(t, out.Steps[2].Error)
}

func TestIdentifyUnknownKindWithTCGTagRoutesToTCG(t *testing.T) {
	caller := newFakeCaller()
	caller.responses[recognition.EndpointOCR] = emptyRecord
	caller.responses[recognition.EndpointDetect] = emptyRecord
	caller.responses[recognition.EndpointProcess] = objects(`{"name":"Sticker","_tags":{"Subcategory":[{"name":"Pokemon"}]}}`)
	caller.responses[recognition.EndpointTCG] = objects(identified("Mewtwo", ""))

	out, err := New(caller).Identify(context.Background(), image)
	require.NoError(t, err)
	require.True(t, out.Identified())
	assert.Equal(t, recognition.EndpointTCG, out.Strategy)
	assert.NotContains(t, caller.called(), recognition.EndpointSport)
}

func TestIdentifyFailedStatusTreatedAsFailure(t *testing.T) {
	caller := newFakeCaller()
	caller.responses[recognition.EndpointOCR] = emptyRecord
	caller.responses[recognition.EndpointDetect] = emptyRecord
	caller.responses[recognition.EndpointProcess] = emptyRecord
	caller.responses[recognition.EndpointAnalyze] = `{"records":[{"_status":{"code":500,"text":"boom"},"_objects":[` + identified("Ignored", "") + `]}]}`
	caller.responses[recognition.EndpointSlab] = objects(identified("Slabbed", ""))

	out, err := New(caller).Identify(context.Background(), image)
	require.NoError(t, err)
	assert.Equal(t, recognition.EndpointSlab, out.Strategy)
	assert.Equal(t, "Slabbed", out.Card.Name)
}

func TestIdentifyOCRFallback(t *testing.T) {
	caller := newFakeCaller()
	caller.responses[recognition.EndpointOCR] = objects(`{"name":"Card","_identification":{"alternatives":[{"name":"Ken Griffey Jr."},{"name":"Other"}]}}`)

	out, err := New(caller).Identify(context.Background(), image)
	require.NoError(t, err)
	require.True(t, out.Identified())
	assert.Equal(t, recognition.EndpointOCR, out.Strategy)
	assert.Equal(t, "Ken Griffey Jr.", out.Card.Name)
}

func TestIdentifyOCRKeywordsSteerPick(t *testing.T) {
	caller := newFakeCaller()
	caller.responses[recognition.EndpointOCR] = objects(`{"name":"Card","text":"Griffey"}`)
	caller.responses[recognition.EndpointDetect] = emptyRecord
	caller.responses[recognition.EndpointProcess] = emptyRecord
	caller.responses[recognition.EndpointAnalyze] = objects(`{"name":"Card","_identification":{
		"best_match":{"name":"Random Player","year":1989,"set":"Upper Deck","card_number":"1"},
		"alternatives":[{"name":"Ken Griffey Jr.","year":1989}]}}`)

	out, err := New(caller).Identify(context.Background(), image)
	require.NoError(t, err)
	require.True(t, out.Identified())
	assert.Equal(t, "Ken Griffey Jr.", out.Card.Name)
}

func TestIdentifyConfigurationErrorAborts(t *testing.T) {
	caller := newFakeCaller()
	caller.errs[recognition.EndpointOCR] = fmt.Errorf("%w: recognition token is not set", domain.ErrConfiguration)

	_, err := New(caller).Identify(context.Background(), image)
	require.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Len(t, caller.called(), 1)
}

func TestIdentifyRejectsShortImage(t *testing.T) {
	caller := newFakeCaller()

	_, err := New(caller).Identify(context.Background(), recognition.Image{Base64: "abc"})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = New(caller).Identify(context.Background(), recognition.Image{})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, caller.called())
}

func TestIdentifyAcceptsShortURL(t *testing.T) {
	caller := newFakeCaller()
	caller.responses[recognition.EndpointOCR] = objects(identified("From URL", ""))

	out, err := New(caller).Identify(context.Background(), recognition.Image{URL: "https://x/y.jpg"})
	require.NoError(t, err)
	assert.True(t, out.Identified())
}

func TestIdentifyCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(newFakeCaller()).Identify(ctx, image)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSetTuningReroutes(t *testing.T) {
	caller := newFakeCaller()
	caller.responses[recognition.EndpointOCR] = emptyRecord
	caller.responses[recognition.EndpointDetect] = emptyRecord
	caller.responses[recognition.EndpointProcess] = objects(`{"name":"Card","_tags":{"Subcategory":[{"name":"Garbage Pail Kids"}]}}`)
	caller.responses[recognition.EndpointTCG] = objects(identified("Adam Bomb", ""))

	res := New(caller)
	tuning := res.Tuning()
	tuning.TCGKeywords = []string{"garbage pail"}
	res.SetTuning(tuning)

	out, err := res.Identify(context.Background(), image)
	require.NoError(t, err)
	assert.Equal(t, recognition.EndpointTCG, out.Strategy)
}

func TestNextTransitions(t *testing.T) {
	a := &attempt{}
	assert.Equal(t, StepDetect, next(StepOCR, a))
	assert.Equal(t, StepCategorize, next(StepDetect, a))
	assert.Equal(t, StepCategory, next(StepCategorize, a))
	a.category.Kind = recognition.KindCard
	assert.Equal(t, StepCategory, next(StepCategorize, a))
	assert.Equal(t, StepAnalyze, next(StepCategory, a))
	assert.Equal(t, StepSlab, next(StepAnalyze, a))
	assert.Equal(t, StepOCRFallback, next(StepSlab, a))
	assert.Equal(t, StepDone, next(StepOCRFallback, a))

	a.card = &domain.Card{Name: "done"}
	assert.Equal(t, StepDone, next(StepDetect, a))
}

func TestTuningIsTCG(t *testing.T) {
	tuning := DefaultTuning()
	assert.True(t, tuning.IsTCG("Pokemon"))
	assert.True(t, tuning.IsTCG("Magic: The Gathering"))
	assert.True(t, tuning.IsTCG("YU-GI-OH!"))
	assert.False(t, tuning.IsTCG("Basketball"))
	assert.False(t, tuning.IsTCG(""))
}

// TestIdentifyOverHTTP runs the sequence against a fake service through the real client.
func TestIdentifyOverHTTP(t *testing.T) {
	var mu sync.Mutex
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()

		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)

		switch r.URL.Path {
		case "/collectibles/v2/process":
			_, _ = w.Write([]byte(objects(`{"name":"Card","_tags":{"Subcategory":[{"name":"Pokemon"}]}}`)))
		case "/collectibles/v2/tcg_id":
			assert.Equal(t, true, body["pricing"])
			_, _ = w.Write([]byte(objects(identified("Pikachu", `,"pricing":{"list":[{"price":10},{"price":20},{"price":30}]}`))))
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer server.Close()

	client, err := recognition.New(server.URL, recognition.StaticToken("test"))
	require.NoError(t, err)

	out, err := New(client).Identify(context.Background(), image)
	require.NoError(t, err)
	require.True(t, out.Identified())
	assert.Equal(t, "Pikachu", out.Card.Name)
	require.NotNil(t, out.Card.Price)
	assert.Equal(t, 20.0, *out.Card.Price)
	require.Len(t, out.Card.Listings, 3)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{
		"/collectibles/v2/card_ocr_id",
		"/collectibles/v2/detect",
		"/collectibles/v2/process",
		"/collectibles/v2/tcg_id",
	}, paths)
}

func TestOutcomeIdentifiedNil(t *testing.T) {
	var out *Outcome
	assert.False(t, out.Identified())
}
