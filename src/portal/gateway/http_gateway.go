package gateway

import (
	"Backend-NetZero/src/models"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	defaultBaseURL  = "http://localhost:8000"
	defaultMediaURL = "http://localhost:8000/media"

	// requestTimeout caps every call so a hung backend surfaces as a
	// network-class error instead of blocking the caller forever.
	requestTimeout = 15 * time.Second
)

// HTTPGateway implements SubmissionGateway and MessagingGateway over the
// backend's REST API.
type HTTPGateway struct {
	baseURL  string
	mediaURL string
	client   *http.Client
}

// NewHTTPGateway reads API_BASE_URL / MEDIA_BASE_URL from the environment and
// falls back to the local dev backend.
func NewHTTPGateway() *HTTPGateway {
	base := os.Getenv("API_BASE_URL")
	if base == "" {
		base = defaultBaseURL
	}
	media := os.Getenv("MEDIA_BASE_URL")
	if media == "" {
		media = defaultMediaURL
	}
	return &HTTPGateway{
		baseURL:  strings.TrimRight(base, "/"),
		mediaURL: strings.TrimRight(media, "/"),
		client:   &http.Client{Timeout: requestTimeout},
	}
}

// MediaURL resolves a stored certificate path to an absolute URL.
// Absolute URLs pass through unchanged.
func (g *HTTPGateway) MediaURL(path string) string {
	if path == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return g.mediaURL + "/" + strings.TrimLeft(path, "/")
}

// do sends one request and decodes the JSON response into out (if non-nil).
// Transport failures become KindNetwork, HTTP statuses map onto the taxonomy.
func (g *HTTPGateway) do(ctx context.Context, s Session, op, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, body)
	if err != nil {
		return &Error{Kind: KindValidation, Op: op, Err: err}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if s.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		// timeout, refused connection, DNS ฯลฯ → network-class
		return &Error{Kind: KindNetwork, Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return classifyStatus(op, resp)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &Error{Kind: KindServerRejected, Op: op, Message: "malformed response", Err: err}
		}
	}
	return nil
}

func (g *HTTPGateway) doJSON(ctx context.Context, s Session, op, method, path string, payload, out any) error {
	var body io.Reader
	contentType := ""
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return &Error{Kind: KindValidation, Op: op, Err: err}
		}
		body = bytes.NewReader(buf)
		contentType = "application/json"
	}
	return g.do(ctx, s, op, method, path, body, contentType, out)
}

func classifyStatus(op string, resp *http.Response) error {
	var er models.ErrorResponse
	_ = json.NewDecoder(resp.Body).Decode(&er)
	msg := er.Message
	if msg == "" {
		msg = resp.Status
	}

	kind := KindServerRejected
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		kind = KindUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		kind = KindNotFound
	case resp.StatusCode == http.StatusBadGateway,
		resp.StatusCode == http.StatusServiceUnavailable,
		resp.StatusCode == http.StatusGatewayTimeout:
		// backend เอื้อมไม่ถึง → ปฏิบัติเหมือน network ขาด
		kind = KindNetwork
	}
	return &Error{Kind: kind, Op: op, Message: msg}
}

// --- SubmissionGateway ---

func (g *HTTPGateway) FetchSubmission(ctx context.Context, s Session) (*models.Submission, error) {
	var sub models.Submission
	if err := g.doJSON(ctx, s, "fetch submission", http.MethodGet, "/submissions/me", nil, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

func (g *HTTPGateway) UploadCertificate(ctx context.Context, s Session, category, sectionKey string, file LocalFile) (string, error) {
	op := "upload certificate"

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("certificate", file.Name)
	if err != nil {
		return "", &Error{Kind: KindValidation, Op: op, Err: err}
	}
	if _, err := part.Write(file.Content); err != nil {
		return "", &Error{Kind: KindValidation, Op: op, Err: err}
	}
	if err := w.Close(); err != nil {
		return "", &Error{Kind: KindValidation, Op: op, Err: err}
	}

	var out struct {
		Path string `json:"path"`
	}
	path := fmt.Sprintf("/submissions/me/%s/%s/certificate", category, sectionKey)
	if err := g.do(ctx, s, op, http.MethodPost, path, &buf, w.FormDataContentType(), &out); err != nil {
		return "", err
	}
	return out.Path, nil
}

func (g *HTTPGateway) UpdateSection(ctx context.Context, s Session, category, sectionKey string, update SectionUpdate) error {
	path := fmt.Sprintf("/submissions/me/%s/%s", category, sectionKey)
	return g.doJSON(ctx, s, "save section", http.MethodPut, path, update, nil)
}

func (g *HTTPGateway) Submit(ctx context.Context, s Session) error {
	return g.doJSON(ctx, s, "submit", http.MethodPost, "/submissions/me/submit", nil, nil)
}

func (g *HTTPGateway) ListSubmissions(ctx context.Context, s Session) ([]models.Submission, error) {
	var subs []models.Submission
	if err := g.doJSON(ctx, s, "list submissions", http.MethodGet, "/admin/submissions", nil, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

func (g *HTTPGateway) RateSection(ctx context.Context, s Session, submissionID, category, sectionKey string, points float64, remarks string) (*models.Submission, error) {
	payload := map[string]any{"points": points, "remarks": remarks}
	path := fmt.Sprintf("/admin/submissions/%s/%s/%s/rating", submissionID, category, sectionKey)

	var sub models.Submission
	if err := g.doJSON(ctx, s, "rate section", http.MethodPut, path, payload, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

func (g *HTTPGateway) SetStatus(ctx context.Context, s Session, submissionID, status string) error {
	payload := map[string]string{"status": status}
	return g.doJSON(ctx, s, "set status", http.MethodPut, "/admin/submissions/"+submissionID+"/status", payload, nil)
}

// --- MessagingGateway ---

func (g *HTTPGateway) ListConversations(ctx context.Context, s Session) ([]models.Conversation, error) {
	var out struct {
		Conversations []models.Conversation `json:"conversations"`
	}
	if err := g.doJSON(ctx, s, "list conversations", http.MethodGet, "/chats", nil, &out); err != nil {
		return nil, err
	}
	return out.Conversations, nil
}

func (g *HTTPGateway) GetConversation(ctx context.Context, s Session, conversationID string) (*models.Conversation, error) {
	var conv models.Conversation
	if err := g.doJSON(ctx, s, "get conversation", http.MethodGet, "/chats/"+conversationID, nil, &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

func (g *HTTPGateway) CreateConversation(ctx context.Context, s Session, counterpartID string) (*models.Conversation, error) {
	payload := map[string]string{"counterpartId": counterpartID}
	var out struct {
		Conversation models.Conversation `json:"conversation"`
	}
	if err := g.doJSON(ctx, s, "create conversation", http.MethodPost, "/chats", payload, &out); err != nil {
		return nil, err
	}
	return &out.Conversation, nil
}

func (g *HTTPGateway) SendMessage(ctx context.Context, s Session, conversationID, content string) error {
	payload := map[string]string{"content": content}
	return g.doJSON(ctx, s, "send message", http.MethodPost, "/chats/"+conversationID+"/messages", payload, nil)
}

func (g *HTTPGateway) ListCounterparts(ctx context.Context, s Session) ([]models.User, error) {
	var users []models.User
	if err := g.doJSON(ctx, s, "list counterparts", http.MethodGet, "/chats/counterparts", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

var (
	_ SubmissionGateway = (*HTTPGateway)(nil)
	_ MessagingGateway  = (*HTTPGateway)(nil)
)
