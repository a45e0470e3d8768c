package pipeline

import (
	"archive/zip"
	"bytes"
	"context"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/decksmith/pkg/compose"
	"github.com/matzehuels/decksmith/pkg/deck"
	"github.com/matzehuels/decksmith/pkg/document"
	"github.com/matzehuels/decksmith/pkg/errors"
	"github.com/matzehuels/decksmith/pkg/observability"
	"github.com/matzehuels/decksmith/pkg/progress"
)

// cardServer serves a small PNG for every path except /missing/*.
type cardServer struct {
	*httptest.Server
	mu   sync.Mutex
	hits map[string]int
}

func newCardServer(t *testing.T) *cardServer {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, imaging.New(60, 84, color.NRGBA{G: 200, A: 255})); err != nil {
		t.Fatal(err)
	}
	s := &cardServer{hits: make(map[string]int)}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[r.URL.Path]++
		s.mu.Unlock()
		if strings.HasPrefix(r.URL.Path, "/missing/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(buf.Bytes())
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *cardServer) hitCount(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

func testRunner() *Runner {
	acq := compose.NewAcquirer(compose.NewRaster(compose.NewLoader()), nil)
	r := NewRunner(acq, nil, nil)
	r.Now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	return r
}

// sampleDeck has one single-faced card x3 and one dual-faced card x1 that
// creates a token.
func sampleDeck(base string) *deck.Deck {
	bolt := deck.LineItem{
		Printing: deck.Printing{ID: "bolt", Name: "Lightning Bolt", Layout: "normal", ImageURI: base + "/bolt.png"},
		Quantity: 3,
	}
	delver := deck.LineItem{
		Printing: deck.Printing{
			ID:     "delver",
			Name:   "Delver of Secrets // Insectile Aberration",
			Layout: "transform",
			Faces: []deck.Face{
				{Name: "Delver of Secrets", ImageURI: base + "/delver-front.png"},
				{Name: "Insectile Aberration", ImageURI: base + "/delver-back.png"},
			},
		},
		Quantity: 1,
		Tokens: []deck.Token{
			{Printing: deck.Printing{ID: "treasure", Name: "Treasure", Layout: "token", ImageURI: base + "/treasure.png"}},
		},
	}
	return deck.New("Izzet Tempo", []deck.LineItem{bolt, delver}, nil)
}

func zipNames(t *testing.T, data []byte) []string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("zip.NewReader() error: %v", err)
	}
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	return names
}

func TestExportArchiveEndToEnd(t *testing.T) {
	srv := newCardServer(t)
	var snaps []progress.Progress
	res, err := testRunner().Export(context.Background(), sampleDeck(srv.URL), Options{
		Format:   FormatArchive,
		Progress: func(p progress.Progress) { snaps = append(snaps, p) },
	})
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}

	want := []string{
		"_token_treasure.jpg",
		"delver_of_secrets_insectile_aberration.jpg",
		"delver_of_secrets_insectile_aberration_back.jpg",
		"lightning_bolt.jpg",
		"lightning_bolt_copy_2.jpg",
		"lightning_bolt_copy_3.jpg",
	}
	got := zipNames(t, res.Data)
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("archive entries = %v, want %v", got, want)
	}
	if res.Name != "izzet_tempo_deck.zip" {
		t.Errorf("Name = %q, want izzet_tempo_deck.zip", res.Name)
	}
	if res.Stats.Units != 6 || res.Stats.Acquired != 6 || len(res.Failures) != 0 {
		t.Errorf("Stats = %+v, Failures = %v", res.Stats, res.Failures)
	}
	if n := srv.hitCount("/bolt.png"); n != 1 {
		t.Errorf("bolt fetched %d times, want 1", n)
	}

	if len(snaps) != 6 {
		t.Fatalf("progress emitted %d times, want 6", len(snaps))
	}
	last := snaps[len(snaps)-1]
	if last.Current != last.Total || last.Label != "Token: Treasure" {
		t.Errorf("last progress = %+v", last)
	}
	if snaps[4].Label != "Delver of Secrets // Insectile Aberration (back)" {
		t.Errorf("back label = %q", snaps[4].Label)
	}
}

func TestExportArchiveUnique(t *testing.T) {
	srv := newCardServer(t)
	res, err := testRunner().ExportArchive(context.Background(), sampleDeck(srv.URL), Options{Format: FormatArchive, Unique: true})
	if err != nil {
		t.Fatalf("ExportArchive() error: %v", err)
	}
	if got := len(zipNames(t, res.Data)); got != 4 {
		t.Errorf("unique archive has %d entries, want 4", got)
	}
}

func TestExportArchivePartialFailure(t *testing.T) {
	srv := newCardServer(t)
	d := sampleDeck(srv.URL)
	d.Cards[1].Printing.Faces[0].ImageURI = srv.URL + "/missing/delver.png"

	res, err := testRunner().ExportArchive(context.Background(), d, Options{Format: FormatArchive})
	if err != nil {
		t.Fatalf("ExportArchive() error: %v", err)
	}
	if len(res.Failures) != 1 || res.Failures[0] != "Delver of Secrets // Insectile Aberration" {
		t.Errorf("Failures = %v", res.Failures)
	}
	// the back face of a failed front is skipped
	if n := srv.hitCount("/delver-back.png"); n != 0 {
		t.Errorf("back face fetched %d times, want 0", n)
	}
	if got := len(zipNames(t, res.Data)); got != 4 {
		t.Errorf("archive has %d entries, want 4", got)
	}
}

func TestExportAllFailed(t *testing.T) {
	srv := newCardServer(t)
	d := deck.New("Broken", []deck.LineItem{{
		Printing: deck.Printing{ID: "x", Name: "Opt", ImageURI: srv.URL + "/missing/opt.png"},
		Quantity: 2,
	}}, nil)

	for _, format := range []string{FormatArchive, "3x3"} {
		_, err := testRunner().Export(context.Background(), d, Options{Format: format})
		var empty *errors.EmptyArtifactError
		if !errors.As(err, &empty) {
			t.Fatalf("Export(%s) error = %v, want EmptyArtifactError", format, err)
		}
		if len(empty.Failures) != 1 || empty.Failures[0] != "Opt" {
			t.Errorf("Export(%s) failures = %v, want [Opt]", format, empty.Failures)
		}
	}
}

func TestExportArchiveReportsSharedFailureOnce(t *testing.T) {
	srv := newCardServer(t)
	d := deck.New("Mixed", []deck.LineItem{
		{Printing: deck.Printing{ID: "x", Name: "Opt", ImageURI: srv.URL + "/missing/opt.png"}, Quantity: 3},
		{Printing: deck.Printing{ID: "b", Name: "Lightning Bolt", ImageURI: srv.URL + "/bolt.png"}, Quantity: 1},
	}, nil)

	res, err := testRunner().ExportArchive(context.Background(), d, Options{Format: FormatArchive})
	if err != nil {
		t.Fatalf("ExportArchive() error: %v", err)
	}
	if len(res.Failures) != 1 || res.Failures[0] != "Opt" {
		t.Errorf("Failures = %v, want [Opt]", res.Failures)
	}
	if res.Stats.Failed != 1 || res.Stats.Acquired != 1 || res.Stats.Units != 4 {
		t.Errorf("Stats = %+v, want 4 units, 1 acquired, 1 failed", res.Stats)
	}
	if n := srv.hitCount("/missing/opt.png"); n != 1 {
		t.Errorf("broken image fetched %d times, want 1", n)
	}
}

func TestExportArchiveCollidingNames(t *testing.T) {
	srv := newCardServer(t)
	d := deck.New("Blanks", []deck.LineItem{
		{Printing: deck.Printing{ID: "u1", Name: "_____", ImageURI: srv.URL + "/bolt.png"}, Quantity: 1},
		{Printing: deck.Printing{ID: "u2", Name: "?????", ImageURI: srv.URL + "/bolt.png"}, Quantity: 1},
	}, nil)

	res, err := testRunner().ExportArchive(context.Background(), d, Options{Format: FormatArchive})
	if err != nil {
		t.Fatalf("ExportArchive() error: %v", err)
	}
	names := zipNames(t, res.Data)
	if len(names) != 2 || names[0] != "card.jpg" || names[1] != "card_2.jpg" {
		t.Errorf("entries = %v, want [card.jpg card_2.jpg]", names)
	}
}

func TestExportDocument(t *testing.T) {
	tests := []struct {
		format    string
		wantPages int
	}{
		{"3x3", 1},
		{"4x4", 1},
		{"3x6", 1},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			srv := newCardServer(t)
			res, err := testRunner().Export(context.Background(), sampleDeck(srv.URL), Options{Format: tt.format})
			if err != nil {
				t.Fatalf("Export() error: %v", err)
			}
			if res.ContentType != document.ContentType {
				t.Errorf("ContentType = %q", res.ContentType)
			}
			if res.Name != "izzet_tempo_deck_"+tt.format+"_a4.pdf" {
				t.Errorf("Name = %q", res.Name)
			}
			// bolt, delver composite and the token
			if res.Stats.Units != 3 || res.Stats.Acquired != 3 {
				t.Errorf("Stats = %+v", res.Stats)
			}
			info, err := document.Inspect(bytes.NewReader(res.Data))
			if err != nil {
				t.Fatalf("Inspect() error: %v", err)
			}
			if info.Pages != tt.wantPages || res.Stats.Pages != tt.wantPages {
				t.Errorf("pages = %d (stats %d), want %d", info.Pages, res.Stats.Pages, tt.wantPages)
			}
		})
	}
}

func TestExportDocumentPagination(t *testing.T) {
	srv := newCardServer(t)
	d := deck.New("Big", []deck.LineItem{{
		Printing: deck.Printing{ID: "island", Name: "Island", ImageURI: srv.URL + "/island.png"},
		Quantity: 10,
	}}, nil)
	res, err := testRunner().ExportDocument(context.Background(), d, "3x3", Options{})
	if err != nil {
		t.Fatalf("ExportDocument() error: %v", err)
	}
	if res.Stats.Pages != 2 {
		t.Errorf("Pages = %d, want 2", res.Stats.Pages)
	}
	if n := srv.hitCount("/island.png"); n != 1 {
		t.Errorf("island fetched %d times, want 1", n)
	}
}

func TestExportInvalidFormat(t *testing.T) {
	_, err := testRunner().Export(context.Background(), deck.New("x", nil, nil), Options{Format: "5x5"})
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Export() error = %v, want INVALID_FORMAT", err)
	}
}

func TestExportCanceled(t *testing.T) {
	srv := newCardServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := testRunner().Export(ctx, sampleDeck(srv.URL), Options{Format: FormatArchive})
	if err != context.Canceled {
		t.Errorf("Export() error = %v, want context.Canceled", err)
	}
}

type memorySink struct {
	name, contentType string
	data              []byte
}

func (m *memorySink) Put(_ context.Context, name, contentType string, data []byte) (string, error) {
	m.name, m.contentType, m.data = name, contentType, data
	return "mem://" + name, nil
}

func TestExportUpload(t *testing.T) {
	srv := newCardServer(t)
	s := &memorySink{}
	res, err := testRunner().WithSink(s).Export(context.Background(), sampleDeck(srv.URL), Options{Format: FormatArchive, Upload: true})
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	if res.Location != "mem://izzet_tempo_deck.zip" || s.contentType != "application/zip" || len(s.data) == 0 {
		t.Errorf("upload = %q %q %d bytes", res.Location, s.contentType, len(s.data))
	}

	if _, err := testRunner().Export(context.Background(), sampleDeck(srv.URL), Options{Format: FormatArchive, Upload: true}); err == nil {
		t.Error("Export() with upload and no sink should fail")
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	mu       sync.Mutex
	started  []string
	failed   []string
	acquired int
}

func (h *recordingHooks) OnExportStart(_ context.Context, kind string, _ int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.started = append(h.started, kind)
}

func (h *recordingHooks) OnUnitFailed(_ context.Context, label string, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failed = append(h.failed, label)
}

func (h *recordingHooks) OnExportComplete(_ context.Context, _ string, acquired int, _ time.Duration, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.acquired = acquired
}

func TestExportHooks(t *testing.T) {
	h := &recordingHooks{}
	observability.SetPipelineHooks(h)
	t.Cleanup(observability.Reset)

	srv := newCardServer(t)
	d := sampleDeck(srv.URL)
	d.Cards[0].Printing.ImageURI = srv.URL + "/missing/bolt.png"
	if _, err := testRunner().Export(context.Background(), d, Options{Format: "4x4"}); err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	if len(h.started) != 1 || h.started[0] != "4x4" {
		t.Errorf("started = %v", h.started)
	}
	if len(h.failed) != 1 || h.failed[0] != "Lightning Bolt" {
		t.Errorf("failed = %v", h.failed)
	}
	if h.acquired != 2 {
		t.Errorf("acquired = %d, want 2", h.acquired)
	}
}
