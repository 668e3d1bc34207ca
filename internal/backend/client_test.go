package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"parley/internal/types"
)

func TestClientSendsAuthAndPrincipal(t *testing.T) {
	var gotAuth, gotPrincipal string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPrincipal = r.Header.Get("X-Parley-Principal")
		_ = json.NewEncoder(w).Encode(ProfileResponse{Profile: &types.UserProfile{Name: "Alice"}})
	}))
	defer server.Close()

	client := NewWithBaseURL(server.URL, "secret", "alice@example.com")
	profile, err := client.GetCallerUserProfile(context.Background())
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if profile == nil || profile.Name != "Alice" {
		t.Fatalf("unexpected profile: %+v", profile)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
	if gotPrincipal != "alice@example.com" {
		t.Fatalf("unexpected principal header %q", gotPrincipal)
	}
}

func TestClientNullProfile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ProfileResponse{Profile: nil})
	}))
	defer server.Close()

	client := NewWithBaseURL(server.URL, "secret", "alice@example.com")
	profile, err := client.GetCallerUserProfile(context.Background())
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if profile != nil {
		t.Fatalf("expected nil profile for unregistered caller, got %+v", profile)
	}
}

func missingEndpointServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "not found"})
	}))
}

func TestClientMissingEndpointsDegradeToEmpty(t *testing.T) {
	server := missingEndpointServer(t)
	defer server.Close()
	client := NewWithBaseURL(server.URL, "secret", "alice@example.com")
	ctx := context.Background()

	users, err := client.ListUsers(ctx)
	if err != nil || len(users) != 0 {
		t.Fatalf("expected empty directory, got %v %v", users, err)
	}
	conversations, err := client.ListConversations(ctx)
	if err != nil || len(conversations) != 0 {
		t.Fatalf("expected empty conversations, got %v %v", conversations, err)
	}
	messages, err := client.GetConversation(ctx, "bob@example.com")
	if err != nil || len(messages) != 0 {
		t.Fatalf("expected empty thread, got %v %v", messages, err)
	}
	if err := client.MarkConversationRead(ctx, "bob@example.com"); err != nil {
		t.Fatalf("mark read should be a no-op, got %v", err)
	}
}

func TestClientPlainText404DegradesToEmpty(t *testing.T) {
	// A backend built on a bare mux 404s with a text/plain body, not our
	// JSON error shape; the degrade path must still trigger.
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {})
	server := httptest.NewServer(mux)
	defer server.Close()
	client := NewWithBaseURL(server.URL, "secret", "alice@example.com")
	ctx := context.Background()

	conversations, err := client.ListConversations(ctx)
	if err != nil || len(conversations) != 0 {
		t.Fatalf("expected empty conversations, got %v %v", conversations, err)
	}
	messages, err := client.GetConversation(ctx, "bob@example.com")
	if err != nil || len(messages) != 0 {
		t.Fatalf("expected empty thread, got %v %v", messages, err)
	}
}

func TestClientEscapesPeerInPath(t *testing.T) {
	var gotPaths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPaths = append(gotPaths, r.URL.EscapedPath())
		_ = json.NewEncoder(w).Encode(MessagesResponse{})
	}))
	defer server.Close()
	client := NewWithBaseURL(server.URL, "secret", "alice@example.com")
	ctx := context.Background()

	peer := "bob/../admin?x=1"
	if _, err := client.GetConversation(ctx, peer); err != nil {
		t.Fatalf("get conversation: %v", err)
	}
	if err := client.MarkConversationRead(ctx, peer); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	want := "/v1/conversations/" + "bob%2F..%2Fadmin%3Fx=1"
	if len(gotPaths) != 2 || gotPaths[0] != want || gotPaths[1] != want+"/read" {
		t.Fatalf("peer not escaped in paths: %v", gotPaths)
	}
}

func TestClientSendMessageOnMissingBackendIsNotReady(t *testing.T) {
	server := missingEndpointServer(t)
	defer server.Close()
	client := NewWithBaseURL(server.URL, "secret", "alice@example.com")

	_, err := client.SendMessage(context.Background(), "bob@example.com", "hi")
	var backendErr *Error
	if !errors.As(err, &backendErr) || backendErr.Kind != KindNotReady {
		t.Fatalf("expected not_ready error, got %v", err)
	}
}

func TestClientGetProjectNotFoundIsNil(t *testing.T) {
	server := missingEndpointServer(t)
	defer server.Close()
	client := NewWithBaseURL(server.URL, "secret", "alice@example.com")

	project, err := client.GetProject(context.Background(), 7)
	if err != nil {
		t.Fatalf("expected nil error for missing project, got %v", err)
	}
	if project != nil {
		t.Fatalf("expected nil project, got %+v", project)
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"bad request", &APIError{StatusCode: http.StatusBadRequest, Message: "display name must be 2-32 characters"}, KindValidation},
		{"unprocessable", &APIError{StatusCode: http.StatusUnprocessableEntity, Message: "bad"}, KindValidation},
		{"unauthorized", &APIError{StatusCode: http.StatusUnauthorized, Message: "unauthorized"}, KindAuthorization},
		{"forbidden", &APIError{StatusCode: http.StatusForbidden, Message: "anonymous callers are not allowed"}, KindAuthorization},
		{"conflict", &APIError{StatusCode: http.StatusConflict, Message: "already registered"}, KindConflict},
		{"unavailable", &APIError{StatusCode: http.StatusServiceUnavailable, Message: "starting"}, KindNotReady},
		{"server error", &APIError{StatusCode: http.StatusInternalServerError, Message: "boom"}, KindUnknown},
		{"message already registered", errors.New("name already registered"), KindConflict},
		{"message anonymous", errors.New("anonymous callers are not allowed"), KindAuthorization},
		{"message not initialized", errors.New("store not initialized"), KindNotReady},
		{"message invalid", errors.New("invalid recipient"), KindValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.err)
			if got.Kind != tc.want {
				t.Fatalf("Classify(%v) = %v, want %v", tc.err, got.Kind, tc.want)
			}
		})
	}
}

func TestClassifyConnectivity(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewWithBaseURL(server.URL, "secret", "alice@example.com")
	_, err := client.Health(context.Background())
	if err == nil {
		t.Fatalf("expected connection failure")
	}
	if got := Classify(err); got.Kind != KindConnectivity {
		t.Fatalf("expected connectivity kind, got %v", got.Kind)
	}
}

func TestErrorUserMessages(t *testing.T) {
	validation := &Error{Kind: KindValidation, Msg: "Display name must be at least 2 characters."}
	if got := validation.UserMessage(); got != validation.Msg {
		t.Fatalf("validation messages pass through, got %q", got)
	}
	connectivity := &Error{Kind: KindConnectivity, Msg: "dial tcp: refused"}
	if got := connectivity.UserMessage(); got == connectivity.Msg {
		t.Fatalf("connectivity detail must not leak to users")
	}
}
