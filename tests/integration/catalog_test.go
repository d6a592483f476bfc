//go:build integration

package integration

import (
	"net/http"
	"strings"
	"testing"
)

func TestGetPrompt(t *testing.T) {
	resp := doGet(t, "/api/prompts/verification")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	p := decodeJSON[promptResponse](t, resp)
	if p.Name != "verification" {
		t.Errorf("name: got %q, want verification", p.Name)
	}
	if p.Version < 1 {
		t.Errorf("version: got %d, want >= 1", p.Version)
	}
	for _, want := range []string{"PRODUCT FIDELITY", "{orientation}", "{text_check}", "{text_field}"} {
		if !strings.Contains(p.Content, want) {
			t.Errorf("content does not contain %q", want)
		}
	}
}

func TestGetPrompt_AllSeeded(t *testing.T) {
	names := []string{
		"analysis_metadata",
		"composition_flat_lay",
		"composition_standing",
		"composition_angled",
		"verification",
	}
	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			resp := doGet(t, "/api/prompts/"+name)
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				t.Fatalf("expected 200, got %d", resp.StatusCode)
			}
			if p := decodeJSON[promptResponse](t, resp); p.Content == "" {
				t.Error("empty content")
			}
		})
	}
}

func TestGetPrompt_NotFound(t *testing.T) {
	resp := doGet(t, "/api/prompts/nonexistent")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	body := decodeJSON[errorResponse](t, resp)
	if body.Code != http.StatusNotFound {
		t.Errorf("code: got %d, want 404", body.Code)
	}
}

func TestListLightingSchemes(t *testing.T) {
	resp := doGet(t, "/api/lighting-schemes")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	schemes := decodeJSON[[]catalogEntry](t, resp)
	if len(schemes) != seededLightingSchemes {
		t.Fatalf("expected %d schemes, got %d", seededLightingSchemes, len(schemes))
	}
	if schemes[0].ID != "highkey" {
		t.Errorf("first scheme: got %q, want highkey", schemes[0].ID)
	}
	for i := 1; i < len(schemes); i++ {
		if schemes[i-1].SortOrder > schemes[i].SortOrder {
			t.Errorf("schemes out of order at %d: %d > %d", i, schemes[i-1].SortOrder, schemes[i].SortOrder)
		}
	}
}

func TestGetLightingScheme(t *testing.T) {
	resp := doGet(t, "/api/lighting-schemes/rim")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	s := decodeJSON[catalogEntry](t, resp)
	if s.SortOrder != 8 {
		t.Errorf("rim sort_order: got %d, want 8", s.SortOrder)
	}
	if s.PromptText == "" {
		t.Error("empty prompt_text")
	}

	missing := doGet(t, "/api/lighting-schemes/neon")
	defer missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Errorf("unknown scheme: expected 404, got %d", missing.StatusCode)
	}
}

func TestListBackgrounds(t *testing.T) {
	resp := doGet(t, "/api/backgrounds")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	bgs := decodeJSON[[]catalogEntry](t, resp)
	want := []string{"white", "gray", "black"}
	if len(bgs) != len(want) {
		t.Fatalf("expected %d backgrounds, got %d", len(want), len(bgs))
	}
	for i, id := range want {
		if bgs[i].ID != id {
			t.Errorf("background %d: got %q, want %q", i, bgs[i].ID, id)
		}
		if bgs[i].IsDefault == nil || !*bgs[i].IsDefault {
			t.Errorf("background %q should be a default", id)
		}
	}
}

func TestGetBackground_NotFound(t *testing.T) {
	resp := doGet(t, "/api/backgrounds/purple")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}
