package brokerapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "http" || u.Host != "127.0.0.1:8000" {
		t.Fatalf("default url = %q, want http://127.0.0.1:8000", u.String())
	}

	u, err = parseBaseURL("https://api.example.com:8443/v1?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Path != "/v1" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}

	u, err = parseBaseURL("http://example.com/backend/")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if got := u.String(); got != "http://example.com/backend" {
		t.Fatalf("prefixed url = %q, want trailing slash trimmed", got)
	}

	u, err = parseBaseURL("10.0.0.5:9000")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "http" || u.Host != "10.0.0.5:9000" {
		t.Fatalf("bare host url = %q, want http://10.0.0.5:9000", u.String())
	}
}

func TestClient_KeepsBasePathPrefix(t *testing.T) {
	t.Parallel()

	var gotPaths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPaths = append(gotPaths, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"property":[{"id":"p1"}]}`))
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL + "/backend/")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if got, want := c.BaseURL(), server.URL+"/backend"; got != want {
		t.Fatalf("BaseURL() = %q, want %q", got, want)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	items, err := c.FetchCollection(ctx, "tok-123", "/api/property", "property")
	if err != nil {
		t.Fatalf("FetchCollection returned error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("FetchCollection items = %#v, want one property", items)
	}
	if len(gotPaths) != 1 || gotPaths[0] != "/backend/api/property" {
		t.Fatalf("server saw paths %v, want [/backend/api/property]", gotPaths)
	}
}

func TestClient_FetchCollectionExtractsEnvelope(t *testing.T) {
	t.Parallel()

	var gotAuth, gotUserAgent, gotRequestID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotUserAgent = r.Header.Get("User-Agent")
		gotRequestID = r.Header.Get("X-Request-ID")
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/admin/pending":
			_, _ = w.Write([]byte(`{"pendingAgents":[{"id":7,"firstName":"Aldin","lastName":"Tagolimot"},{"id":8,"firstName":"Venus"}]}`))
		case "/api/property":
			_, _ = w.Write([]byte(`{"property":null}`))
		case "/api/wrong":
			_, _ = w.Write([]byte(`{"items":[]}`))
		case "/api/notalist":
			_, _ = w.Write([]byte(`{"items":{"id":1}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	items, err := c.FetchCollection(ctx, "tok-123", "/api/admin/pending", "pendingAgents")
	if err != nil {
		t.Fatalf("FetchCollection returned error: %v", err)
	}
	if len(items) != 2 || items[0].ID() != "7" || items[0].String("lastName") != "Tagolimot" {
		t.Fatalf("FetchCollection items = %#v, want two agents", items)
	}
	if gotAuth != "Bearer tok-123" {
		t.Fatalf("Authorization = %q, want Bearer tok-123", gotAuth)
	}
	if !strings.HasPrefix(gotUserAgent, "brokerdesk/") {
		t.Fatalf("User-Agent = %q, want brokerdesk/*", gotUserAgent)
	}
	if gotRequestID == "" {
		t.Fatalf("X-Request-ID header missing")
	}

	items, err = c.FetchCollection(ctx, "tok", "/api/property", "property")
	if err != nil {
		t.Fatalf("FetchCollection(null) returned error: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Fatalf("FetchCollection(null) = %#v, want empty non-nil", items)
	}

	_, err = c.FetchCollection(ctx, "tok", "/api/wrong", "property")
	if kind, ok := KindOf(err); !ok || kind != KindDecode {
		t.Fatalf("missing key error = %v, want decode kind", err)
	}

	_, err = c.FetchCollection(ctx, "tok", "/api/notalist", "items")
	if kind, ok := KindOf(err); !ok || kind != KindDecode {
		t.Fatalf("non-list error = %v, want decode kind", err)
	}
}

func TestClient_ErrorClassification(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/unauthorized":
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"jwt expired"}`))
		case "/forbidden":
			w.WriteHeader(http.StatusForbidden)
		case "/server":
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"db down"}`))
		case "/validation":
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"message":"License number already exists"}`))
		case "/garbage":
			_, _ = w.Write([]byte(`{not-json`))
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	tests := []struct {
		path      string
		kind      Kind
		retryable bool
		message   string
	}{
		{"/unauthorized", KindUnauthorized, false, "jwt expired"},
		{"/forbidden", KindUnauthorized, false, ""},
		{"/server", KindServer, true, "db down"},
		{"/validation", KindClient, false, "License number already exists"},
		{"/garbage", KindDecode, false, "decode response"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			_, err := c.FetchCollection(context.Background(), "tok", tt.path, "items")
			var apiErr *Error
			if !errors.As(err, &apiErr) {
				t.Fatalf("error = %v, want *Error", err)
			}
			if apiErr.Kind != tt.kind {
				t.Fatalf("kind = %v, want %v", apiErr.Kind, tt.kind)
			}
			if apiErr.Message != tt.message {
				t.Fatalf("message = %q, want %q", apiErr.Message, tt.message)
			}
			if IsRetryable(err) != tt.retryable {
				t.Fatalf("IsRetryable = %v, want %v", IsRetryable(err), tt.retryable)
			}
			if IsUnauthorized(err) != (tt.kind == KindUnauthorized) {
				t.Fatalf("IsUnauthorized = %v for kind %v", IsUnauthorized(err), tt.kind)
			}
		})
	}
}

func TestClient_NetworkFailureIsRetryable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	c, err := NewClient(url, WithTimeout(500*time.Millisecond))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	_, err = c.FetchCollection(context.Background(), "tok", "/api/property", "property")
	if kind, ok := KindOf(err); !ok || kind != KindNetwork {
		t.Fatalf("error = %v, want network kind", err)
	}
	if !IsRetryable(err) || IsUnauthorized(err) {
		t.Fatalf("network error should be retryable and not unauthorized")
	}
}

func TestClient_CanceledContextIsNotNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.FetchCollection(ctx, "tok", "/api/property", "property")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if _, ok := KindOf(err); ok {
		t.Fatalf("canceled request should not be tagged as an API error")
	}
}

func TestClient_MutationsUseJSONOrMultipart(t *testing.T) {
	t.Parallel()

	type seen struct {
		method      string
		path        string
		contentType string
		fields      map[string]string
		files       map[string]string
	}
	var calls []seen

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call := seen{method: r.Method, path: r.URL.Path, fields: map[string]string{}, files: map[string]string{}}
		mediaType, params, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
		call.contentType = mediaType
		switch mediaType {
		case "application/json":
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			for k, v := range body {
				call.fields[k], _ = v.(string)
			}
		case "multipart/form-data":
			reader := multipart.NewReader(r.Body, params["boundary"])
			for {
				part, err := reader.NextPart()
				if err != nil {
					break
				}
				data, _ := io.ReadAll(part)
				if part.FileName() != "" {
					call.files[part.FormName()] = part.FileName() + ":" + string(data)
				} else {
					call.fields[part.FormName()] = string(data)
				}
			}
		}
		calls = append(calls, call)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"ok"}`))
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	ctx := context.Background()

	msg, err := c.Create(ctx, "tok", "/api/developer", Payload{Fields: map[string]any{"name": "Ayala Land"}})
	if err != nil || msg != "ok" {
		t.Fatalf("Create = %q, %v; want ok", msg, err)
	}

	withFile := Payload{
		Fields: map[string]any{"title": "Lot 4"},
		Files:  []Attachment{{Field: "image", FileName: "lot4.jpg", Content: strings.NewReader("jpegdata")}},
	}
	if _, err := c.Update(ctx, "tok", "/api/property", "42", withFile); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if _, err := c.Delete(ctx, "tok", "/api/property", "42"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := c.Action(ctx, "tok", "/api/admin/pending", "7", "approve"); err != nil {
		t.Fatalf("Action returned error: %v", err)
	}

	if len(calls) != 4 {
		t.Fatalf("calls = %d, want 4", len(calls))
	}
	if calls[0].method != http.MethodPost || calls[0].contentType != "application/json" || calls[0].fields["name"] != "Ayala Land" {
		t.Fatalf("create call = %#v", calls[0])
	}
	if calls[1].method != http.MethodPut || calls[1].path != "/api/property/42" || calls[1].contentType != "multipart/form-data" {
		t.Fatalf("update call = %#v", calls[1])
	}
	if calls[1].fields["title"] != "Lot 4" || calls[1].files["image"] != "lot4.jpg:jpegdata" {
		t.Fatalf("update multipart body = %#v", calls[1])
	}
	if calls[2].method != http.MethodDelete || calls[2].path != "/api/property/42" {
		t.Fatalf("delete call = %#v", calls[2])
	}
	if calls[3].method != http.MethodPut || calls[3].path != "/api/admin/pending/7/approve" {
		t.Fatalf("action call = %#v", calls[3])
	}
}

func TestClient_MutationsRequireID(t *testing.T) {
	c, err := NewClient("127.0.0.1:1")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if _, err := c.Update(context.Background(), "tok", "/api/property", " ", Payload{}); err == nil {
		t.Fatalf("Update with blank id returned nil error")
	}
	if _, err := c.Delete(context.Background(), "tok", "/api/property", ""); err == nil {
		t.Fatalf("Delete with blank id returned nil error")
	}
}

func TestClient_Login(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		if body["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Invalid credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"token":"abc","role":2,"name":"Ricky Roa"}`))
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	res, err := c.Login(context.Background(), " ricky@example.com ", "secret")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if res.Token != "abc" || res.Role != 2 || res.Name != "Ricky Roa" {
		t.Fatalf("Login = %#v", res)
	}
	_, err = c.Login(context.Background(), "ricky@example.com", "wrong")
	if IsUnauthorized(err) || Message(err) != "Invalid credentials" {
		t.Fatalf("bad login error = %v", err)
	}
}
