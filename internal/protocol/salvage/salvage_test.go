package salvage

import (
	"errors"
	"testing"
)

func TestRecoverStripsTrailingCharacter(t *testing.T) {
	got, err := RecoverEmbeddedJSON(`{"success":false,"message":"ERP11260"}X`)
	if err != nil {
		t.Fatalf("recover: %v", err)
	}
	if got != `{"success":false,"message":"ERP11260"}` {
		t.Fatalf("unexpected body %q", got)
	}
}

func TestRecoverSkipsLeadingNoise(t *testing.T) {
	text := `Http failure response for http://host/Call: 404 Not Found {"success":false,"message":"ERP1"}"`
	got, err := RecoverEmbeddedJSON(text)
	if err != nil {
		t.Fatalf("recover: %v", err)
	}
	if got != `{"success":false,"message":"ERP1"}` {
		t.Fatalf("unexpected body %q", got)
	}
}

func TestRecoverDropsTrailerEvenFromValidJSON(t *testing.T) {
	got, err := RecoverEmbeddedJSON(`{"success":false}`)
	if err != nil {
		t.Fatalf("recover: %v", err)
	}
	if got != `{"success":false` {
		t.Fatalf("one trailing character must always be dropped, got %q", got)
	}
}

func TestRecoverDropsMultibyteTrailer(t *testing.T) {
	got, err := RecoverEmbeddedJSON(`{"success":true}€`)
	if err != nil {
		t.Fatalf("recover: %v", err)
	}
	if got != `{"success":true}` {
		t.Fatalf("unexpected body %q", got)
	}
}

func TestRecoverMarkerMissing(t *testing.T) {
	for _, text := range []string{"", "Bad Gateway", `{"error":"x"}`} {
		got, err := RecoverEmbeddedJSON(text)
		if !errors.Is(err, ErrMarkerNotFound) {
			t.Fatalf("%q: expected ErrMarkerNotFound, got %v", text, err)
		}
		if got != "" {
			t.Fatalf("%q: expected empty result, got %q", text, got)
		}
	}
}
