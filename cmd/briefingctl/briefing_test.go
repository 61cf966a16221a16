package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

func TestBriefCommand_Exists(t *testing.T) {
	rootCmd := NewRootCmd()
	briefCmd, _, err := rootCmd.Find([]string{"brief"})
	if err != nil {
		t.Fatalf("brief command not found: %v", err)
	}
	if briefCmd == nil {
		t.Fatal("expected brief command to exist")
	}
}

func TestBriefCommand_RequiresUserID(t *testing.T) {
	tmpDir := t.TempDir()
	originalHome := os.Getenv("HOME")
	os.Setenv("HOME", tmpDir)
	defer os.Setenv("HOME", originalHome)

	rootCmd := NewRootCmd()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"brief"})

	if err := rootCmd.Execute(); err == nil {
		t.Error("expected error when brief is called without a user-id")
	}
}

func TestBriefCommand_PrintsReport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/briefings" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var body briefingRequestBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode request body: %v", err)
		}
		if body.UserID != "alex" {
			t.Errorf("expected user_id alex, got %s", body.UserID)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"items":[],"metadata":{"request_id":"req-1"}}}`))
	}))
	defer server.Close()

	rootCmd := NewRootCmd()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"brief", "--user-id", "alex", "--api-url", server.URL + "/v1"})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(buf.String(), "request_id") {
		t.Errorf("expected output to contain the report payload, got: %s", buf.String())
	}
}

func TestBriefCommand_ReturnsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"code":"PIPELINE_ERROR","message":"boom"}}`))
	}))
	defer server.Close()

	rootCmd := NewRootCmd()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"brief", "--user-id", "alex", "--api-url", server.URL + "/v1"})

	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected error from API error response")
	}
	if !strings.Contains(err.Error(), "PIPELINE_ERROR") {
		t.Errorf("expected error to mention PIPELINE_ERROR, got: %v", err)
	}
}
