// Reelay - Short-Video Feed and Engagement Backend
// Copyright 2026 Arlo H. (arlo-hs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/arlo-hs/reelay

package validation

import (
	"strings"
	"testing"
)

type pageRequest struct {
	Limit    int    `validate:"omitempty,gte=1,lte=100"`
	Language string `validate:"omitempty,bcp47_language_tag"`
}

type interactionRequest struct {
	ContentID string `validate:"required,uuid4"`
}

func TestValidateStructPasses(t *testing.T) {
	tests := []struct {
		name string
		v    interface{}
	}{
		{"empty page request", &pageRequest{}},
		{"full page request", &pageRequest{Limit: 50, Language: "de"}},
		{"valid content id", &interactionRequest{ContentID: "4f8b9a52-3c1d-4e8f-9a6b-2d7c8e1f0a3b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateStruct(tt.v); err != nil {
				t.Errorf("expected valid, got: %v", err)
			}
		})
	}
}

func TestValidateStructFails(t *testing.T) {
	tests := []struct {
		name      string
		v         interface{}
		wantField string
	}{
		{"limit too large", &pageRequest{Limit: 1000}, "Limit"},
		{"negative limit", &pageRequest{Limit: -1}, "Limit"},
		{"bad language tag", &pageRequest{Language: "not a language"}, "Language"},
		{"missing content id", &interactionRequest{}, "ContentID"},
		{"malformed content id", &interactionRequest{ContentID: "1234"}, "ContentID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr := ValidateStruct(tt.v)
			if verr == nil {
				t.Fatal("expected validation failure")
			}
			if got := verr.Errors()[0].Field(); got != tt.wantField {
				t.Errorf("failed field = %q, want %q", got, tt.wantField)
			}
		})
	}
}

func TestToAPIErrorSingleFailure(t *testing.T) {
	verr := ValidateStruct(&interactionRequest{})
	if verr == nil {
		t.Fatal("expected validation failure")
	}

	apiErr := verr.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("code = %q", apiErr.Code)
	}
	if apiErr.Details["field"] != "ContentID" {
		t.Errorf("details = %v", apiErr.Details)
	}
	if !strings.Contains(apiErr.Message, "required") {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestToAPIErrorMultipleFailures(t *testing.T) {
	verr := ValidateStruct(&pageRequest{Limit: -1, Language: "zz-invalid-tag-##"})
	if verr == nil {
		t.Fatal("expected validation failure")
	}
	if len(verr.Errors()) != 2 {
		t.Fatalf("got %d errors, want 2", len(verr.Errors()))
	}

	apiErr := verr.ToAPIError()
	if _, ok := apiErr.Details["fields"]; !ok {
		t.Errorf("details = %v, want fields list", apiErr.Details)
	}
	if !strings.Contains(apiErr.Message, ";") {
		t.Errorf("message = %q, want combined messages", apiErr.Message)
	}
}
