package scryfall

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/decksmith/pkg/cache"
	"github.com/matzehuels/decksmith/pkg/errors"
)

type fakeAPI struct {
	hits  int32
	cards map[string]Card // by lowercased name
	sets  []Set
}

func (f *fakeAPI) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	notFound := func(w http.ResponseWriter) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(APIError{Object: "error", Code: "not_found", Status: 404, Details: "No cards found matching the query"})
	}
	mux.HandleFunc("/cards/named", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.hits, 1)
		if ua := r.Header.Get("User-Agent"); ua == "" {
			t.Error("missing User-Agent")
		}
		q := r.URL.Query()
		if exact := q.Get("exact"); exact != "" {
			for _, c := range f.cards {
				if strings.HasPrefix(strings.ToLower(c.Name), strings.ToLower(exact)) && c.SetCode == q.Get("set") {
					json.NewEncoder(w).Encode(c)
					return
				}
			}
			notFound(w)
			return
		}
		c, ok := f.cards[strings.ToLower(q.Get("fuzzy"))]
		if !ok {
			notFound(w)
			return
		}
		json.NewEncoder(w).Encode(c)
	})
	mux.HandleFunc("/cards/search", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("q") == "nothing" {
			notFound(w)
			return
		}
		json.NewEncoder(w).Encode(CardList{Object: "list", TotalCards: 1, Data: []Card{{ID: q.Get("unique") + "|" + q.Get("order") + "|" + q.Get("q")}}})
	})
	mux.HandleFunc("/cards/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/cards/")
		for _, c := range f.cards {
			if c.ID == id {
				json.NewEncoder(w).Encode(c)
				return
			}
		}
		notFound(w)
	})
	mux.HandleFunc("/sets", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(SetList{Object: "list", Data: f.sets})
	})
	return mux
}

func newTestClient(t *testing.T, f *fakeAPI, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)
	opts = append([]Option{WithBaseURL(srv.URL), WithInterval(0)}, opts...)
	return NewClient(opts...)
}

func fixture() *fakeAPI {
	return &fakeAPI{cards: map[string]Card{
		"opt": {ID: "opt-1", OracleID: "o-opt", Name: "Opt", SetCode: "xln", Layout: "normal", ImageURIs: &ImageURIs{Normal: "https://img/opt.jpg"}},
		"delver of secrets": {
			ID: "dlv-1", OracleID: "o-dlv", Name: "Delver of Secrets // Insectile Aberration", SetCode: "isd", Layout: "transform",
			CardFaces: []CardFace{
				{Name: "Delver of Secrets", ImageURIs: &ImageURIs{Normal: "https://img/dlv-f.jpg"}},
				{Name: "Insectile Aberration", ImageURIs: &ImageURIs{Normal: "https://img/dlv-b.jpg"}},
			},
		},
		"opt m21": {ID: "opt-2", Name: "Optimistic", SetCode: "m21"},
	}}
}

func TestCardByName(t *testing.T) {
	c := newTestClient(t, fixture())
	card, err := c.CardByName(context.Background(), "Delver of Secrets")
	if err != nil {
		t.Fatalf("CardByName() error: %v", err)
	}
	p := card.Printing()
	if p.ID != "dlv-1" || len(p.Faces) != 2 || p.Faces[1].ImageURI != "https://img/dlv-b.jpg" {
		t.Errorf("Printing() = %+v", p)
	}

	_, err = c.CardByName(context.Background(), "Nonexistent")
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("CardByName(missing) error = %v, want NOT_FOUND", err)
	}
	if !strings.Contains(errors.UserMessage(err), "No cards found") {
		t.Errorf("UserMessage() = %q, want API details", errors.UserMessage(err))
	}
}

func TestCardByNameInSetMismatch(t *testing.T) {
	c := newTestClient(t, fixture())

	_, err := c.CardByNameInSet(context.Background(), "Opt", "M21")
	var mm *errors.NameMismatchError
	if !errors.As(err, &mm) {
		t.Fatalf("CardByNameInSet() error = %v, want *NameMismatchError", err)
	}
	if mm.Want != "Opt" || mm.Got != "Optimistic" {
		t.Errorf("mismatch = %+v", mm)
	}

	card, err := c.CardByNameInSet(context.Background(), "opt", "XLN")
	if err != nil || card.ID != "opt-1" {
		t.Errorf("CardByNameInSet(opt, XLN) = %v, %v", card, err)
	}
}

func TestMemoAvoidsRepeatRequests(t *testing.T) {
	f := fixture()
	c := newTestClient(t, f)
	for i := 0; i < 3; i++ {
		if _, err := c.CardByName(context.Background(), "opt"); err != nil {
			t.Fatal(err)
		}
	}
	if n := atomic.LoadInt32(&f.hits); n != 1 {
		t.Errorf("requests = %d, want 1", n)
	}
}

func TestSharedCache(t *testing.T) {
	f := fixture()
	mem, _ := cache.NewMemoryCache(16)
	a := newTestClient(t, f, WithCache(mem, time.Hour), WithMemoSize(0))
	if _, err := a.CardByName(context.Background(), "opt"); err != nil {
		t.Fatal(err)
	}
	if _, err := a.CardByName(context.Background(), "opt"); err != nil {
		t.Fatal(err)
	}
	if n := atomic.LoadInt32(&f.hits); n != 1 {
		t.Errorf("requests = %d, want 1", n)
	}
}

func TestSearchAndVariations(t *testing.T) {
	c := newTestClient(t, fixture())
	ctx := context.Background()

	list, err := c.CardVariations(ctx, "o-opt", "", 1)
	if err != nil {
		t.Fatal(err)
	}
	if got := list.Data[0].ID; got != "art|name|oracleid:o-opt" {
		t.Errorf("CardVariations query = %q", got)
	}

	list, err = c.CardVariationsInSet(ctx, "M21", "", "Opt", 2)
	if err != nil {
		t.Fatal(err)
	}
	if got := list.Data[0].ID; got != `prints|set|!"Opt" set:m21` {
		t.Errorf("CardVariationsInSet query = %q", got)
	}

	list, err = c.Search(ctx, SearchParams{Query: "nothing"})
	if err != nil || len(list.Data) != 0 {
		t.Errorf("Search(no matches) = %v, %v; want empty list", list, err)
	}
}

func TestByID(t *testing.T) {
	c := newTestClient(t, fixture())
	p, err := c.ByID(context.Background(), "opt-1")
	if err != nil || p.Name != "Opt" || p.SetCode != "xln" {
		t.Errorf("ByID() = %+v, %v", p, err)
	}
}

func TestCanceled(t *testing.T) {
	c := newTestClient(t, fixture(), WithInterval(time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.CardByName(ctx, "opt"); err != context.Canceled {
		t.Errorf("CardByName() error = %v, want context.Canceled", err)
	}
}
